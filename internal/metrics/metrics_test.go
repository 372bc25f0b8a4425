package metrics

import (
	"context"
	"errors"
	"testing"

	apperrors "trace-fund-go/internal/errors"
	"trace-fund-go/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOperations is a mock implementation of campaign.Operations
type MockOperations struct {
	mock.Mock
}

func (m *MockOperations) InitializeCampaign(ctx context.Context, creator models.Address, name, description string, targetAmount uint64, imageURL string) (*models.Campaign, error) {
	args := m.Called(ctx, creator, name, description, targetAmount, imageURL)
	c, _ := args.Get(0).(*models.Campaign)
	return c, args.Error(1)
}

func (m *MockOperations) Donate(ctx context.Context, donor, address models.Address, amount uint64) error {
	return m.Called(ctx, donor, address, amount).Error(0)
}

func (m *MockOperations) Withdraw(ctx context.Context, admin, address models.Address, amount uint64, reason string) error {
	return m.Called(ctx, admin, address, amount, reason).Error(0)
}

func (m *MockOperations) CloseCampaign(ctx context.Context, admin, address models.Address) (uint64, error) {
	args := m.Called(ctx, admin, address)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockOperations) GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error) {
	args := m.Called(ctx, address)
	c, _ := args.Get(0).(*models.Campaign)
	return c, args.Error(1)
}

func (m *MockOperations) FindCampaign(ctx context.Context, admin models.Address, name string) (*models.Campaign, error) {
	args := m.Called(ctx, admin, name)
	c, _ := args.Get(0).(*models.Campaign)
	return c, args.Error(1)
}

func (m *MockOperations) ListCampaigns(ctx context.Context, admin *models.Address) ([]models.Campaign, error) {
	args := m.Called(ctx, admin)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *MockOperations) Funds(ctx context.Context, address models.Address) (models.Funds, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(models.Funds), args.Error(1)
}

func TestOperationsMiddleware_RecordsOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	next := &MockOperations{}
	ops := NewOperationsMiddleware(m)(next)
	ctx := context.Background()
	donor := models.IdentityFromSeed("donor")
	campaign := models.Address{1}

	next.On("Donate", ctx, donor, campaign, uint64(2_000_000)).Return(nil)
	next.On("Donate", ctx, donor, campaign, uint64(10)).
		Return(apperrors.New(apperrors.CodeDonationTooSmall, "too small"))

	require.NoError(t, ops.Donate(ctx, donor, campaign, 2_000_000))
	require.Error(t, ops.Donate(ctx, donor, campaign, 10))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("donate", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("donate", "DONATION_TOO_SMALL")))
	assert.Equal(t, 2_000_000.0, testutil.ToFloat64(m.LamportsMoved.WithLabelValues("donate")))
	next.AssertExpectations(t)
}

func TestOperationsMiddleware_CloseRecordsReturnedAmount(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	next := &MockOperations{}
	ops := NewOperationsMiddleware(m)(next)
	ctx := context.Background()
	admin := models.IdentityFromSeed("admin")

	next.On("CloseCampaign", ctx, admin, models.Address{1}).Return(uint64(63_530_880), nil)
	next.On("Withdraw", ctx, admin, models.Address{2}, uint64(5), "").Return(errors.New("disk I/O error"))

	returned, err := ops.CloseCampaign(ctx, admin, models.Address{1})
	require.NoError(t, err)
	assert.Equal(t, uint64(63_530_880), returned)
	assert.Error(t, ops.Withdraw(ctx, admin, models.Address{2}, 5, ""))

	assert.Equal(t, 63_530_880.0, testutil.ToFloat64(m.LamportsMoved.WithLabelValues("close_campaign")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("withdraw", "INTERNAL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LamportsMoved.WithLabelValues("withdraw")))
}

func TestOperationsMiddleware_ReadsPassThrough(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	next := &MockOperations{}
	ops := NewOperationsMiddleware(m)(next)
	ctx := context.Background()

	funds := models.Funds{Held: 10, Reserve: 4, Available: 6}
	next.On("Funds", ctx, models.Address{1}).Return(funds, nil)

	series := testutil.CollectAndCount(m.OperationsTotal)

	got, err := ops.Funds(ctx, models.Address{1})
	require.NoError(t, err)
	assert.Equal(t, funds, got)
	assert.Equal(t, series, testutil.CollectAndCount(m.OperationsTotal))
	for _, op := range operations {
		assert.Zero(t, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(op, "OK")))
	}
}

func TestNewMetrics_PreinitializesOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.Equal(t, len(operations)*(len(apperrors.Codes)+1), testutil.CollectAndCount(m.OperationsTotal))
	assert.Zero(t, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("withdraw", "UNAUTHORIZED")))
	assert.Zero(t, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("initialize_campaign", "DUPLICATE_CAMPAIGN")))
}

func TestRecordDelivery(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordDelivery("redis", nil)
	m.RecordDelivery("redis", errors.New("timeout"))
	m.RecordDelivery("redis", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventDeliveries.WithLabelValues("redis", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventDeliveries.WithLabelValues("redis", "failed")))
}
