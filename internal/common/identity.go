package common

import (
	"fmt"

	"trace-fund-go/internal/campaign"
	"trace-fund-go/internal/models"
)

// ResolveIdentity accepts either a 64 character hex address or a label such
// as "alice", which maps to a stable development identity.
func ResolveIdentity(value string) (models.Address, error) {
	if value == "" {
		return models.Address{}, fmt.Errorf("identity cannot be empty")
	}
	if len(value) == 2*models.AddressLength {
		if addr, err := models.ParseAddress(value); err == nil {
			return addr, nil
		}
	}
	return models.IdentityFromSeed(value), nil
}

// ResolveCampaign takes a campaign address in hex, or derives it from the
// admin identity and campaign name when address is empty.
func ResolveCampaign(address, admin, name string) (models.Address, error) {
	if address != "" {
		return models.ParseAddress(address)
	}
	if admin == "" || name == "" {
		return models.Address{}, fmt.Errorf("either --campaign or both --admin and --name are required")
	}
	adminAddr, err := ResolveIdentity(admin)
	if err != nil {
		return models.Address{}, err
	}
	return campaign.DeriveAddress(adminAddr, name), nil
}
