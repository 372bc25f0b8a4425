package campaign

import (
	"crypto/sha256"

	"trace-fund-go/internal/models"
)

const addressDomain = "campaign"

// DeriveAddress returns the deterministic campaign address for an
// (admin, name) pair. Uniqueness is enforced by the store on insert.
func DeriveAddress(admin models.Address, name string) models.Address {
	h := sha256.New()
	h.Write([]byte(addressDomain))
	h.Write(admin[:])
	h.Write([]byte(name))

	var addr models.Address
	copy(addr[:], h.Sum(nil))
	return addr
}
