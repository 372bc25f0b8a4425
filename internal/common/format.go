package common

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	apperrors "trace-fund-go/internal/errors"

	"github.com/shopspring/decimal"
)

const (
	// Default separator width
	DefaultWidth = 80

	lamportsPerSOLExp = 9
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// FormatLamports renders an amount as SOL with the lamport count alongside,
// e.g. "0.0025 SOL (2500000)".
func FormatLamports(lamports uint64) string {
	return fmt.Sprintf("%s SOL (%d)", LamportsToSOL(lamports).String(), lamports)
}

// LamportsToSOL converts lamports to an exact SOL decimal.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportsPerSOLExp)
}

// ShortId abbreviates long identifiers for table output.
func ShortId(id string) string {
	if id == "" {
		return "none"
	}
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

// ParseLamports parses an amount flag. Plain integers are lamports; a "SOL"
// suffix converts from SOL, e.g. "0.5SOL".
func ParseLamports(value string) (uint64, error) {
	raw := strings.TrimSpace(value)
	exp := int32(0)
	if upper := strings.ToUpper(raw); strings.HasSuffix(upper, "SOL") {
		raw = strings.TrimSpace(raw[:len(raw)-3])
		exp = lamportsPerSOLExp
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	amount = amount.Shift(exp)

	if amount.IsNegative() {
		return 0, fmt.Errorf("amount cannot be negative: %s", value)
	}
	if !amount.Equal(amount.Truncate(0)) {
		return 0, fmt.Errorf("amount %s is not a whole number of lamports", value)
	}
	lamports := amount.BigInt()
	if !lamports.IsUint64() {
		return 0, fmt.Errorf("amount %s exceeds the maximum of %d lamports", value, ^uint64(0))
	}
	return lamports.Uint64(), nil
}

// PrintFailure prints a rejected operation with its error kind and any
// metadata attached to it.
func PrintFailure(title string, err error) {
	PrintHeader(title, DefaultWidth)
	fmt.Printf("Code:    %s\n", apperrors.CodeOf(err))
	fmt.Printf("Error:   %v\n", err)

	var appErr *apperrors.Error
	if errors.As(err, &appErr) && len(appErr.Metadata) > 0 {
		keys := make([]string, 0, len(appErr.Metadata))
		for k := range appErr.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-16s %s\n", k+":", appErr.Metadata[k])
		}
	}
	PrintSeparator("=", DefaultWidth)
}
