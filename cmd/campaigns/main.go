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
	"flag"
	"fmt"
	"time"

	"trace-fund-go/internal/campaign"
	"trace-fund-go/internal/common"
	"trace-fund-go/internal/config"
	"trace-fund-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type reportStats struct {
	campaigns int
	held      decimal.Decimal
	available decimal.Decimal
	collected decimal.Decimal
}

func printCampaign(c models.Campaign, funds models.Funds) {
	fmt.Printf("\n┌─ Campaign: %s\n", c.Name)
	fmt.Printf("│  Address: %s\n", c.Address)
	fmt.Printf("│  Admin:   %s\n", c.Admin)
	fmt.Printf("│  Started: %s\n", time.Unix(c.StartTime, 0).UTC().Format("2006-01-02 15:04:05"))
	common.PrintBoxSeparator(78)
	fmt.Printf("%s %-10s: %s\n", common.BoxPrefix(false), "Target", common.FormatLamports(c.TargetAmount))
	fmt.Printf("%s %-10s: %s\n", common.BoxPrefix(false), "Collected", common.FormatLamports(c.AmountCollected))
	fmt.Printf("%s %-10s: %s\n", common.BoxPrefix(false), "Held", common.FormatLamports(funds.Held))
	fmt.Printf("%s %-10s: %s\n", common.BoxPrefix(false), "Reserve", common.FormatLamports(funds.Reserve))
	fmt.Printf("%s %-10s: %s\n", common.BoxPrefix(true), "Available", common.FormatLamports(funds.Available))
}

func generateReport(ctx context.Context, ops campaign.Operations, records []models.Campaign) reportStats {
	stats := reportStats{held: decimal.Zero, available: decimal.Zero, collected: decimal.Zero}

	for _, c := range records {
		funds, err := ops.Funds(ctx, c.Address)
		if err != nil {
			zap.L().Error("Failed to read campaign funds",
				zap.String("campaign", c.Address.String()),
				zap.String("name", c.Name),
				zap.Error(err))
			continue
		}

		printCampaign(c, funds)
		stats.campaigns++
		stats.held = stats.held.Add(common.LamportsToSOL(funds.Held))
		stats.available = stats.available.Add(common.LamportsToSOL(funds.Available))
		stats.collected = stats.collected.Add(common.LamportsToSOL(c.AmountCollected))
	}

	return stats
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	adminFlag := flag.String("admin", "", "Only list campaigns owned by this identity (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	var admin *models.Address
	if *adminFlag != "" {
		addr, err := common.ResolveIdentity(*adminFlag)
		if err != nil {
			zap.L().Fatal("Invalid admin", zap.Error(err))
		}
		admin = &addr
	}

	services, err := common.InitializeReadOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer services.Close()

	records, err := services.Campaigns.ListCampaigns(ctx, admin)
	if err != nil {
		zap.L().Fatal("Failed to list campaigns", zap.Error(err))
	}

	common.PrintHeader("CAMPAIGN REPORT", common.DefaultWidth)
	stats := generateReport(ctx, services.Campaigns, records)

	summary := fmt.Sprintf("SUMMARY: %d campaigns, %s SOL collected, %s SOL held, %s SOL available",
		stats.campaigns, stats.collected.String(), stats.held.String(), stats.available.String())
	common.PrintFooter(summary, common.DefaultWidth)

	zap.L().Info("Campaign report completed", zap.Int("campaigns", stats.campaigns))
}
