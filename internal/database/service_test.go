package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"trace-fund-go/internal/models"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	cfg := models.DatabaseConfig{
		Path:            filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		BusyTimeout:     5 * time.Second,
	}

	service, err := NewService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(service.Close)
	return service
}

func TestNewService_RejectsInvalidConfig(t *testing.T) {
	ctx := context.Background()
	valid := models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 1,
		PingTimeout:  time.Second,
	}

	cases := map[string]func(c *models.DatabaseConfig){
		"empty path":      func(c *models.DatabaseConfig) { c.Path = "" },
		"in-memory":       func(c *models.DatabaseConfig) { c.Path = ":memory:" },
		"no connections":  func(c *models.DatabaseConfig) { c.MaxOpenConns = 0 },
		"negative idle":   func(c *models.DatabaseConfig) { c.MaxIdleConns = -1 },
		"no ping timeout": func(c *models.DatabaseConfig) { c.PingTimeout = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			if _, err := NewService(ctx, cfg); err == nil {
				t.Errorf("Expected error for %s config", name)
			}
		})
	}
}

func TestNewService_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	cfg := models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 1,
		PingTimeout:  time.Second,
		BusyTimeout:  time.Second,
	}
	account := models.IdentityFromSeed("alice")

	first, err := NewService(ctx, cfg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if err := first.Deposit(ctx, depositParams(account, 42, "ref-1")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	first.Close()

	// Migrations must be a no-op the second time
	second, err := NewService(ctx, cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer second.Close()

	balance, err := second.GetBalance(ctx, account)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 42 {
		t.Errorf("Expected balance 42 after reopen, got %d", balance)
	}
}

func TestPing(t *testing.T) {
	service := setupTestService(t)
	if err := service.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
