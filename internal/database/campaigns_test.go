package database

import (
	"context"
	"errors"
	"testing"

	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"
)

func testCampaign(admin models.Address, name string) *models.Campaign {
	return &models.Campaign{
		Address:      models.Address{1, 2, 3},
		Admin:        admin,
		Name:         name,
		Description:  "Emergency relief",
		ImageURL:     "https://example.com/relief.png",
		TargetAmount: 500_000_000_000,
		StartTime:    1_700_000_000,
		Space:        9000,
	}
}

func TestInsertCampaign_Duplicate(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	admin := models.IdentityFromSeed("admin")
	c := testCampaign(admin, "Relief")

	err := service.WithinTx(ctx, func(tx store.Tx) error { return tx.InsertCampaign(ctx, c) })
	if err != nil {
		t.Fatalf("InsertCampaign failed: %v", err)
	}
	if c.Version != 1 {
		t.Errorf("Expected version 1 after insert, got %d", c.Version)
	}

	again := testCampaign(admin, "Relief")
	err = service.WithinTx(ctx, func(tx store.Tx) error { return tx.InsertCampaign(ctx, again) })
	if !errors.Is(err, store.ErrCampaignExists) {
		t.Errorf("Expected campaign exists error, got: %v", err)
	}
}

func TestGetCampaign_RoundTrip(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	admin := models.IdentityFromSeed("admin")
	c := testCampaign(admin, "Relief")

	if err := service.WithinTx(ctx, func(tx store.Tx) error { return tx.InsertCampaign(ctx, c) }); err != nil {
		t.Fatalf("InsertCampaign failed: %v", err)
	}

	got, err := service.GetCampaign(ctx, c.Address)
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	if *got != *c {
		t.Errorf("Expected %+v, got %+v", *c, *got)
	}

	_, err = service.GetCampaign(ctx, models.Address{9})
	if !errors.Is(err, store.ErrCampaignNotFound) {
		t.Errorf("Expected not found error, got: %v", err)
	}
}

func TestUpdateCampaign_OptimisticLock(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	c := testCampaign(models.IdentityFromSeed("admin"), "Relief")

	if err := service.WithinTx(ctx, func(tx store.Tx) error { return tx.InsertCampaign(ctx, c) }); err != nil {
		t.Fatalf("InsertCampaign failed: %v", err)
	}

	stale := *c
	c.AmountCollected = 2_000_000
	if err := service.WithinTx(ctx, func(tx store.Tx) error { return tx.UpdateCampaign(ctx, c) }); err != nil {
		t.Fatalf("UpdateCampaign failed: %v", err)
	}
	if c.Version != 2 {
		t.Errorf("Expected version 2, got %d", c.Version)
	}

	stale.AmountCollected = 1
	err := service.WithinTx(ctx, func(tx store.Tx) error { return tx.UpdateCampaign(ctx, &stale) })
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Errorf("Expected concurrent modification error, got: %v", err)
	}

	got, _ := service.GetCampaign(ctx, c.Address)
	if got.AmountCollected != 2_000_000 {
		t.Errorf("Expected amount collected 2000000, got %d", got.AmountCollected)
	}
}

func TestDeleteCampaign_FreesAddress(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	admin := models.IdentityFromSeed("admin")
	c := testCampaign(admin, "Relief")

	if err := service.Deposit(ctx, depositParams(admin, 100, "seed")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	err := service.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertCampaign(ctx, c); err != nil {
			return err
		}
		return tx.Transfer(ctx, store.TransferParams{From: admin, To: c.Address, Amount: 100, TransferType: models.TransferReserve})
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	err = service.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.Transfer(ctx, store.TransferParams{From: c.Address, To: admin, Amount: 100, TransferType: models.TransferClose}); err != nil {
			return err
		}
		return tx.DeleteCampaign(ctx, c.Address)
	})
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := service.GetCampaign(ctx, c.Address); !errors.Is(err, store.ErrCampaignNotFound) {
		t.Errorf("Expected campaign to be gone, got: %v", err)
	}
	if err := service.ReconcileBalance(ctx, c.Address); err != nil {
		t.Errorf("Reconcile after delete failed: %v", err)
	}

	// The address is free again
	fresh := testCampaign(admin, "Relief")
	if err := service.WithinTx(ctx, func(tx store.Tx) error { return tx.InsertCampaign(ctx, fresh) }); err != nil {
		t.Errorf("Re-insert after delete failed: %v", err)
	}

	err = service.WithinTx(ctx, func(tx store.Tx) error { return tx.DeleteCampaign(ctx, models.Address{7}) })
	if !errors.Is(err, store.ErrCampaignNotFound) {
		t.Errorf("Expected not found deleting unknown campaign, got: %v", err)
	}
}

func TestListCampaigns_FilterByAdmin(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	alice := models.IdentityFromSeed("alice")
	bob := models.IdentityFromSeed("bob")

	first := testCampaign(alice, "First")
	second := testCampaign(bob, "Second")
	second.Address = models.Address{4, 5, 6}

	err := service.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertCampaign(ctx, first); err != nil {
			return err
		}
		return tx.InsertCampaign(ctx, second)
	})
	if err != nil {
		t.Fatalf("InsertCampaign failed: %v", err)
	}

	all, err := service.ListCampaigns(ctx, nil)
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 campaigns, got %d", len(all))
	}

	mine, err := service.ListCampaigns(ctx, &bob)
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Second" {
		t.Errorf("Expected only bob's campaign, got %+v", mine)
	}
}
