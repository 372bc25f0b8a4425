// Package rent computes the storage reserve a campaign record must keep to
// stay allocated, and the serialized size of a record.
package rent

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	DefaultLamportsPerByteYear uint64  = 3480
	DefaultExemptionThreshold  float64 = 2.0
	DefaultStorageOverhead     uint64  = 128

	// DefaultRecordSpace is the fixed allocation of a campaign record in bytes.
	DefaultRecordSpace = 9000

	// MaxSeedLen bounds each component of an address derivation.
	MaxSeedLen = 32
)

// Record layout: discriminator, admin, three length-prefixed strings,
// target_amount, amount_collected, start_time.
const (
	discriminatorLen = 8
	adminLen         = 32
	stringPrefixLen  = 4
	u64Len           = 8
	i64Len           = 8

	fixedRecordLen = discriminatorLen + adminLen + 3*stringPrefixLen + 2*u64Len + i64Len
)

// Calculator reports the minimum balance an account of a given data size
// must hold to be exempt from storage rent.
type Calculator struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	StorageOverhead     uint64
}

func DefaultCalculator() Calculator {
	return Calculator{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		StorageOverhead:     DefaultStorageOverhead,
	}
}

// MinimumBalance returns the reserve for an account holding dataLen bytes.
func (c Calculator) MinimumBalance(dataLen int) uint64 {
	if dataLen < 0 {
		dataLen = 0
	}
	perYear := (c.StorageOverhead + uint64(dataLen)) * c.LamportsPerByteYear
	return uint64(float64(perYear) * c.ExemptionThreshold)
}

// CheckBounds reports an error when the reserve for dataLen bytes does not
// fit in a uint64 under this calculator's parameters.
func (c Calculator) CheckBounds(dataLen int) error {
	if dataLen < 0 {
		dataLen = 0
	}
	size := uint64(dataLen)
	if c.StorageOverhead > math.MaxUint64-size {
		return fmt.Errorf("storage overhead %d plus %d bytes overflows", c.StorageOverhead, dataLen)
	}
	hi, perYear := bits.Mul64(c.StorageOverhead+size, c.LamportsPerByteYear)
	if hi != 0 {
		return fmt.Errorf("rent of %d bytes at %d lamports per byte-year overflows",
			c.StorageOverhead+size, c.LamportsPerByteYear)
	}
	reserve := float64(perYear) * c.ExemptionThreshold
	if math.IsNaN(reserve) || reserve < 0 || reserve >= math.Ldexp(1, 64) {
		return fmt.Errorf("reserve of %v lamports is out of range", reserve)
	}
	return nil
}

// SerializedSize returns the number of bytes a campaign record with the
// given text fields occupies.
func SerializedSize(name, description, imageURL string) int {
	return fixedRecordLen + len(name) + len(description) + len(imageURL)
}

// MaxTextLen returns how many bytes of text (name, description and image
// URL combined) fit in a record of the given space.
func MaxTextLen(space int) int {
	if space <= fixedRecordLen {
		return 0
	}
	return space - fixedRecordLen
}
