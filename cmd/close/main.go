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

	"trace-fund-go/internal/common"
	"trace-fund-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	adminFlag := flag.String("admin", "", "Campaign admin identity: hex address or label (required)")
	campaignFlag := flag.String("campaign", "", "Campaign address in hex (or use --name)")
	nameFlag := flag.String("name", "", "Campaign name, derives the address from --admin")
	flag.Parse()

	if *adminFlag == "" {
		zap.L().Fatal("Invalid flags", zap.Error(fmt.Errorf("--admin is required")))
	}
	admin, err := common.ResolveIdentity(*adminFlag)
	if err != nil {
		zap.L().Fatal("Invalid admin", zap.Error(err))
	}
	campaign, err := common.ResolveCampaign(*campaignFlag, *adminFlag, *nameFlag)
	if err != nil {
		zap.L().Fatal("Invalid campaign", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	record, err := services.Campaigns.GetCampaign(ctx, campaign)
	if err != nil {
		common.PrintFailure("CLOSE FAILED", err)
		zap.L().Fatal("Campaign lookup failed", zap.Error(err))
	}

	returned, err := services.Campaigns.CloseCampaign(ctx, admin, campaign)
	if err != nil {
		common.PrintFailure("CLOSE FAILED", err)
		zap.L().Fatal("Close failed", zap.String("campaign", campaign.String()), zap.Error(err))
	}

	adminBalance, err := services.DbService.GetBalance(ctx, admin)
	if err != nil {
		zap.L().Fatal("Failed to read admin balance", zap.Error(err))
	}

	common.PrintHeader("CAMPAIGN CLOSED", common.DefaultWidth)
	fmt.Printf("Campaign:       %s (%s)\n", record.Name, campaign.Short())
	fmt.Printf("Collected:      %s\n", common.FormatLamports(record.AmountCollected))
	fmt.Printf("Returned:       %s\n", common.FormatLamports(returned))
	fmt.Printf("Admin Balance:  %s\n", common.FormatLamports(adminBalance))
	common.PrintSeparator("=", common.DefaultWidth)
}
