package main

import (
	"flag"
	"os"
	"testing"

	"trace-fund-go/internal/campaign"
	"trace-fund-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	savedFlags := flag.CommandLine
	t.Cleanup(func() {
		os.Args = saved
		flag.CommandLine = savedFlags
	})
	os.Args = append([]string{"withdraw"}, args...)
	flag.CommandLine = flag.NewFlagSet("withdraw", flag.ContinueOnError)
}

func TestParseAndValidateFlags_ReasonIsOptional(t *testing.T) {
	withArgs(t, "--admin", "alice", "--name", "relief", "--amount", "0.5SOL")

	req, err := parseAndValidateFlags()
	require.NoError(t, err)

	admin := models.IdentityFromSeed("alice")
	assert.Equal(t, admin, req.admin)
	assert.Equal(t, campaign.DeriveAddress(admin, "relief"), req.campaign)
	assert.Equal(t, uint64(500_000_000), req.amount)
	assert.Empty(t, req.reason)
}

func TestParseAndValidateFlags_RequiresAdminAndAmount(t *testing.T) {
	withArgs(t, "--name", "relief", "--reason", "supplies")

	_, err := parseAndValidateFlags()
	assert.Error(t, err)
}
