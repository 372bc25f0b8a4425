package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestHasCode_WrappedChain(t *testing.T) {
	base := New(CodeUnauthorized, "caller is not the campaign admin")
	wrapped := fmt.Errorf("withdraw failed: %w", base)

	if !HasCode(wrapped, CodeUnauthorized) {
		t.Errorf("expected wrapped error to carry %s", CodeUnauthorized)
	}
	if HasCode(wrapped, CodeInsufficientFunds) {
		t.Errorf("did not expect %s", CodeInsufficientFunds)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"domain", New(CodeDonationTooSmall, "too small"), CodeDonationTooSmall},
		{"wrapped domain", fmt.Errorf("ctx: %w", New(CodeRecordNotFound, "gone")), CodeRecordNotFound},
		{"foreign", stderrors.New("disk full"), CodeInternal},
	}
	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("%s: CodeOf() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestWrap_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("constraint failed")
	err := Wrap(CodeDuplicateCampaign, "campaign already exists", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "DUPLICATE_CAMPAIGN: campaign already exists: constraint failed" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
