package database

import (
	"context"
	"errors"
	"math"
	"testing"

	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"
)

func depositParams(account models.Address, amount uint64, reference string) store.DepositParams {
	return store.DepositParams{Account: account, Amount: amount, Reference: reference}
}

func TestDeposit_CreditsAccount(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")

	if err := service.Deposit(ctx, depositParams(alice, 1_500_000_000, "airdrop-1")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	balance, err := service.GetBalance(ctx, alice)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 1_500_000_000 {
		t.Errorf("Expected balance 1500000000, got %d", balance)
	}

	history, err := service.GetTransferHistory(ctx, alice, 10, 0)
	if err != nil {
		t.Fatalf("GetTransferHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 transfer, got %d", len(history))
	}
	if history[0].TransferType != models.TransferDeposit || history[0].Direction != directionCredit {
		t.Errorf("Unexpected transfer %s/%s", history[0].TransferType, history[0].Direction)
	}
	if !history[0].Counterparty.IsZero() {
		t.Errorf("Expected deposit counterparty to be the zero address, got %s", history[0].Counterparty)
	}
}

func TestDeposit_DuplicateHandling(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")

	if err := service.Deposit(ctx, depositParams(alice, 10, "duplicate-ref")); err != nil {
		t.Fatalf("First deposit failed: %v", err)
	}

	err := service.Deposit(ctx, depositParams(alice, 10, "duplicate-ref"))
	if !errors.Is(err, store.ErrDuplicateTransaction) {
		t.Fatalf("Expected duplicate transaction error, got: %v", err)
	}

	balance, _ := service.GetBalance(ctx, alice)
	if balance != 10 {
		t.Errorf("Expected balance 10 after duplicate, got %d", balance)
	}
}

func TestDeposit_Overflow(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")

	if err := service.Deposit(ctx, depositParams(alice, math.MaxUint64, "max")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	balance, err := service.GetBalance(ctx, alice)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != math.MaxUint64 {
		t.Errorf("Expected max uint64 balance, got %d", balance)
	}

	err = service.Deposit(ctx, depositParams(alice, 1, "one-more"))
	if !errors.Is(err, store.ErrBalanceOverflow) {
		t.Errorf("Expected overflow error, got: %v", err)
	}
}

func TestTransfer_MovesFunds(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")
	bob := models.IdentityFromSeed("bob")

	if err := service.Deposit(ctx, depositParams(alice, 100, "seed")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	err := service.WithinTx(ctx, func(tx store.Tx) error {
		return tx.Transfer(ctx, store.TransferParams{
			From: alice, To: bob, Amount: 30, TransferType: models.TransferDonation, Reference: "gift",
		})
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	aliceBalance, _ := service.GetBalance(ctx, alice)
	bobBalance, _ := service.GetBalance(ctx, bob)
	if aliceBalance != 70 || bobBalance != 30 {
		t.Errorf("Expected balances 70/30, got %d/%d", aliceBalance, bobBalance)
	}

	for _, account := range []models.Address{alice, bob} {
		if err := service.ReconcileBalance(ctx, account); err != nil {
			t.Errorf("Reconcile failed for %s: %v", account.Short(), err)
		}
	}

	history, err := service.GetTransferHistory(ctx, bob, 10, 0)
	if err != nil {
		t.Fatalf("GetTransferHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].Counterparty != alice || history[0].BalanceAfter != 30 {
		t.Errorf("Unexpected history for receiver: %+v", history)
	}
}

func TestTransfer_InsufficientBalanceRollsBack(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")
	bob := models.IdentityFromSeed("bob")

	if err := service.Deposit(ctx, depositParams(alice, 50, "seed")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	err := service.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.Transfer(ctx, store.TransferParams{From: alice, To: bob, Amount: 20, TransferType: models.TransferDonation}); err != nil {
			return err
		}
		// Second leg exceeds what is left and must undo the first
		return tx.Transfer(ctx, store.TransferParams{From: alice, To: bob, Amount: 40, TransferType: models.TransferDonation})
	})
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected insufficient balance error, got: %v", err)
	}

	aliceBalance, _ := service.GetBalance(ctx, alice)
	bobBalance, _ := service.GetBalance(ctx, bob)
	if aliceBalance != 50 || bobBalance != 0 {
		t.Errorf("Expected rollback to 50/0, got %d/%d", aliceBalance, bobBalance)
	}
}

func TestTransfer_SelfTransferRejected(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")

	err := service.WithinTx(ctx, func(tx store.Tx) error {
		return tx.Transfer(ctx, store.TransferParams{From: alice, To: alice, Amount: 0, TransferType: models.TransferDonation})
	})
	if err == nil {
		t.Fatal("Expected self transfer to fail")
	}
}

func TestGetAllBalances_SkipsZero(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")
	bob := models.IdentityFromSeed("bob")

	if err := service.Deposit(ctx, depositParams(alice, 5, "a")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := service.Deposit(ctx, depositParams(bob, 5, "b")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	err := service.WithinTx(ctx, func(tx store.Tx) error {
		return tx.Transfer(ctx, store.TransferParams{From: bob, To: alice, Amount: 5, TransferType: models.TransferDonation})
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	balances, err := service.GetAllBalances(ctx)
	if err != nil {
		t.Fatalf("GetAllBalances failed: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("Expected 1 non-zero balance, got %d", len(balances))
	}
	if balances[0].Account != alice || balances[0].Balance != 10 {
		t.Errorf("Unexpected balance %s=%d", balances[0].Account.Short(), balances[0].Balance)
	}
}

func TestGetTransferHistory_Pagination(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")

	for _, ref := range []string{"r1", "r2", "r3"} {
		if err := service.Deposit(ctx, depositParams(alice, 1, ref)); err != nil {
			t.Fatalf("Deposit %s failed: %v", ref, err)
		}
	}

	page, err := service.GetTransferHistory(ctx, alice, 2, 0)
	if err != nil {
		t.Fatalf("GetTransferHistory failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 transfers on first page, got %d", len(page))
	}
	if page[0].Reference != "r3" {
		t.Errorf("Expected newest transfer first, got %s", page[0].Reference)
	}

	rest, err := service.GetTransferHistory(ctx, alice, 2, 2)
	if err != nil {
		t.Fatalf("GetTransferHistory failed: %v", err)
	}
	if len(rest) != 1 || rest[0].Reference != "r1" {
		t.Errorf("Expected oldest transfer on second page, got %+v", rest)
	}
}
