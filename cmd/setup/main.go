/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"trace-fund-go/internal/campaign"
	"trace-fund-go/internal/common"
	"trace-fund-go/internal/config"
	"trace-fund-go/internal/rent"
	"trace-fund-go/internal/store"

	"go.uber.org/zap"
)

type fundingStats struct {
	funded  int
	skipped int
	failed  int
}

// fundIdentity airdrops to a development identity. The reference is derived
// from the label so running setup twice does not fund anyone twice.
func fundIdentity(ctx context.Context, services *common.Services, label string, amount uint64) (bool, error) {
	account, err := common.ResolveIdentity(label)
	if err != nil {
		return false, err
	}

	err = services.DbService.Deposit(ctx, store.DepositParams{
		Account:   account,
		Amount:    amount,
		Reference: "setup:" + account.String(),
	})
	if errors.Is(err, store.ErrDuplicateTransaction) {
		zap.L().Info("Identity already funded by setup", zap.String("identity", label))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	fmt.Printf("%s %-12s %s  +%s\n", common.BoxPrefix(false), label, account.Short(), common.FormatLamports(amount))
	return true, nil
}

func printPolicy(policy campaign.Policy, calculator rent.Calculator) {
	common.PrintHeader("CAMPAIGN POLICY", common.DefaultWidth)
	fmt.Printf("Record space:      %d bytes (text up to %d bytes)\n", policy.RecordSpace, rent.MaxTextLen(policy.RecordSpace))
	fmt.Printf("Rent reserve:      %s\n", common.FormatLamports(calculator.MinimumBalance(policy.RecordSpace)))
	fmt.Printf("Minimum donation:  %s\n", common.FormatLamports(policy.MinDonation))
	fmt.Printf("Max reason length: %d bytes\n", policy.MaxReasonLen)
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fundFlag := flag.String("fund", "", "Comma separated identity labels to airdrop to, e.g. alice,bob (optional)")
	amountFlag := flag.String("amount", "10SOL", "Airdrop per identity in lamports or SOL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	amount, err := common.ParseLamports(*amountFlag)
	if err != nil {
		zap.L().Fatal("Invalid amount", zap.Error(err))
	}

	zap.L().Info("Initializing ledger database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeReadOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer services.Close()

	printPolicy(campaign.NewPolicy(cfg.Policy), campaign.NewCalculator(cfg.Policy))

	if *fundFlag == "" {
		return
	}

	common.PrintHeader("FUNDING IDENTITIES", common.DefaultWidth)
	stats := fundingStats{}
	for _, label := range strings.Split(*fundFlag, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		funded, err := fundIdentity(ctx, services, label, amount)
		switch {
		case err != nil:
			stats.failed++
			zap.L().Error("Failed to fund identity", zap.String("identity", label), zap.Error(err))
		case funded:
			stats.funded++
		default:
			stats.skipped++
		}
	}

	common.PrintFooter(fmt.Sprintf("SETUP COMPLETE: %d funded, %d already funded, %d failed",
		stats.funded, stats.skipped, stats.failed), common.DefaultWidth)
}
