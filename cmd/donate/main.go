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
	"trace-fund-go/internal/models"

	"go.uber.org/zap"
)

type donationRequest struct {
	donor    models.Address
	campaign models.Address
	amount   uint64
}

func parseAndValidateFlags() (*donationRequest, error) {
	donorFlag := flag.String("donor", "", "Donor identity: hex address or label (required)")
	campaignFlag := flag.String("campaign", "", "Campaign address in hex")
	adminFlag := flag.String("admin", "", "Campaign admin, used with --name instead of --campaign")
	nameFlag := flag.String("name", "", "Campaign name, used with --admin instead of --campaign")
	amountFlag := flag.String("amount", "", "Donation in lamports or SOL e.g. 0.5SOL (required)")
	flag.Parse()

	if *donorFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --donor, --amount")
	}

	donor, err := common.ResolveIdentity(*donorFlag)
	if err != nil {
		return nil, err
	}

	campaign, err := common.ResolveCampaign(*campaignFlag, *adminFlag, *nameFlag)
	if err != nil {
		return nil, err
	}

	amount, err := common.ParseLamports(*amountFlag)
	if err != nil {
		return nil, err
	}

	return &donationRequest{donor: donor, campaign: campaign, amount: amount}, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
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

	if err := services.Campaigns.Donate(ctx, req.donor, req.campaign, req.amount); err != nil {
		common.PrintFailure("DONATION FAILED", err)
		zap.L().Fatal("Donation failed", zap.String("campaign", req.campaign.String()), zap.Error(err))
	}

	record, err := services.Campaigns.GetCampaign(ctx, req.campaign)
	if err != nil {
		zap.L().Fatal("Failed to read campaign", zap.Error(err))
	}

	common.PrintHeader("DONATION RECEIVED", common.DefaultWidth)
	fmt.Printf("Campaign:   %s (%s)\n", record.Name, record.Address.Short())
	fmt.Printf("Donor:      %s\n", req.donor)
	fmt.Printf("Amount:     %s\n", common.FormatLamports(req.amount))
	fmt.Printf("Collected:  %s of %s\n", common.FormatLamports(record.AmountCollected), common.FormatLamports(record.TargetAmount))
	common.PrintSeparator("=", common.DefaultWidth)
}
