package rent

import (
	"math"
	"testing"
)

func TestMinimumBalance_Defaults(t *testing.T) {
	calc := DefaultCalculator()

	tests := []struct {
		dataLen int
		want    uint64
	}{
		{0, 890_880},
		{DefaultRecordSpace, 63_530_880},
		{-5, 890_880},
	}
	for _, tt := range tests {
		if got := calc.MinimumBalance(tt.dataLen); got != tt.want {
			t.Errorf("MinimumBalance(%d) = %d, want %d", tt.dataLen, got, tt.want)
		}
	}
}

func TestMinimumBalance_CustomPolicy(t *testing.T) {
	calc := Calculator{LamportsPerByteYear: 10, ExemptionThreshold: 1.5, StorageOverhead: 0}

	if got := calc.MinimumBalance(100); got != 1500 {
		t.Errorf("expected 1500, got %d", got)
	}
}

func TestSerializedSize(t *testing.T) {
	if got := SerializedSize("", "", ""); got != 76 {
		t.Errorf("empty record size = %d, want 76", got)
	}
	if got := SerializedSize("relief", "food", "https://x"); got != 76+6+4+9 {
		t.Errorf("unexpected size %d", got)
	}
}

func TestMaxTextLen(t *testing.T) {
	if got := MaxTextLen(DefaultRecordSpace); got != DefaultRecordSpace-76 {
		t.Errorf("MaxTextLen = %d", got)
	}
	if got := MaxTextLen(10); got != 0 {
		t.Errorf("MaxTextLen(10) = %d, want 0", got)
	}
}

func TestCheckBounds(t *testing.T) {
	if err := DefaultCalculator().CheckBounds(DefaultRecordSpace); err != nil {
		t.Fatalf("default policy rejected: %v", err)
	}

	tests := []struct {
		name    string
		calc    Calculator
		dataLen int
	}{
		{"byte count overflows", Calculator{StorageOverhead: math.MaxUint64, LamportsPerByteYear: 1, ExemptionThreshold: 1}, 1},
		{"per year product overflows", Calculator{StorageOverhead: 128, LamportsPerByteYear: math.MaxUint64 / 2, ExemptionThreshold: 1}, DefaultRecordSpace},
		{"threshold pushes past range", Calculator{StorageOverhead: 0, LamportsPerByteYear: math.MaxUint64 / 4, ExemptionThreshold: 8}, 1},
		{"infinite threshold", Calculator{StorageOverhead: 0, LamportsPerByteYear: 1, ExemptionThreshold: math.Inf(1)}, 1},
		{"NaN threshold", Calculator{StorageOverhead: 0, LamportsPerByteYear: 1, ExemptionThreshold: math.NaN()}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.calc.CheckBounds(tt.dataLen); err == nil {
				t.Errorf("expected an error for %+v with %d bytes", tt.calc, tt.dataLen)
			}
		})
	}
}
