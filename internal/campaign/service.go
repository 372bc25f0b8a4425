package campaign

import (
	"context"
	"time"

	"trace-fund-go/internal/models"
	"trace-fund-go/internal/rent"
	"trace-fund-go/internal/store"
)

// DefaultMinDonation is the smallest accepted donation in lamports (0.001 SOL).
const DefaultMinDonation uint64 = 1_000_000

// DefaultMaxReasonLen bounds the free-text reason attached to a withdrawal.
const DefaultMaxReasonLen = 256

// Operations is the full campaign surface: the four state transitions plus
// read-side queries.
type Operations interface {
	InitializeCampaign(ctx context.Context, creator models.Address, name, description string, targetAmount uint64, imageURL string) (*models.Campaign, error)
	Donate(ctx context.Context, donor, campaign models.Address, amount uint64) error
	Withdraw(ctx context.Context, admin, campaign models.Address, amount uint64, reason string) error
	CloseCampaign(ctx context.Context, admin, campaign models.Address) (uint64, error)

	GetCampaign(ctx context.Context, campaign models.Address) (*models.Campaign, error)
	FindCampaign(ctx context.Context, admin models.Address, name string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, admin *models.Address) ([]models.Campaign, error)
	Funds(ctx context.Context, campaign models.Address) (models.Funds, error)
}

// Clock supplies the timestamp for start_time and event payloads.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Dispatcher receives committed events. Delivery is best-effort and never
// reports failure back to the operation.
type Dispatcher interface {
	Deliver(ctx context.Context, events []models.Event)
}

type nopDispatcher struct{}

func (nopDispatcher) Deliver(context.Context, []models.Event) {}

// Policy holds the campaign rules that are configuration rather than code.
type Policy struct {
	MinDonation  uint64
	RecordSpace  int
	MaxReasonLen int
}

func DefaultPolicy() Policy {
	return Policy{
		MinDonation:  DefaultMinDonation,
		RecordSpace:  rent.DefaultRecordSpace,
		MaxReasonLen: DefaultMaxReasonLen,
	}
}

// NewPolicy builds a Policy from configuration, falling back to defaults
// for unset values.
func NewPolicy(cfg models.PolicyConfig) Policy {
	p := DefaultPolicy()
	if cfg.MinDonation > 0 {
		p.MinDonation = cfg.MinDonation
	}
	if cfg.RecordSpace > 0 {
		p.RecordSpace = cfg.RecordSpace
	}
	if cfg.MaxReasonLen > 0 {
		p.MaxReasonLen = cfg.MaxReasonLen
	}
	return p
}

// NewCalculator builds the rent calculator from configuration, keeping the
// default for any unset parameter.
func NewCalculator(cfg models.PolicyConfig) rent.Calculator {
	c := rent.DefaultCalculator()
	if cfg.LamportsPerByteYear > 0 {
		c.LamportsPerByteYear = cfg.LamportsPerByteYear
	}
	if cfg.ExemptionThreshold > 0 {
		c.ExemptionThreshold = cfg.ExemptionThreshold
	}
	if cfg.StorageOverhead > 0 {
		c.StorageOverhead = cfg.StorageOverhead
	}
	return c
}

// Service implements Operations on top of a LedgerStore.
type Service struct {
	store      store.LedgerStore
	rent       rent.Calculator
	clock      Clock
	policy     Policy
	dispatcher Dispatcher
}

var _ Operations = (*Service)(nil)

func NewService(ledger store.LedgerStore, calculator rent.Calculator, clock Clock, policy Policy, dispatcher Dispatcher) *Service {
	if clock == nil {
		clock = SystemClock
	}
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	return &Service{
		store:      ledger,
		rent:       calculator,
		clock:      clock,
		policy:     policy,
		dispatcher: dispatcher,
	}
}

// Policy returns the rules the service enforces.
func (s *Service) Policy() Policy {
	return s.policy
}
