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

type withdrawalRequest struct {
	admin    models.Address
	campaign models.Address
	amount   uint64
	reason   string
}

func parseAndValidateFlags() (*withdrawalRequest, error) {
	adminFlag := flag.String("admin", "", "Campaign admin identity: hex address or label (required)")
	campaignFlag := flag.String("campaign", "", "Campaign address in hex (or use --name)")
	nameFlag := flag.String("name", "", "Campaign name, derives the address from --admin")
	amountFlag := flag.String("amount", "", "Amount in lamports or SOL e.g. 1SOL (required)")
	reasonFlag := flag.String("reason", "", "Why the funds are withdrawn (optional free text)")
	flag.Parse()

	if *adminFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --admin, --amount")
	}

	admin, err := common.ResolveIdentity(*adminFlag)
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

	return &withdrawalRequest{
		admin:    admin,
		campaign: campaign,
		amount:   amount,
		reason:   *reasonFlag,
	}, nil
}

func printWithdrawalSummary(record *models.Campaign, before, after models.Funds, req *withdrawalRequest) {
	common.PrintHeader("WITHDRAWAL COMPLETE", common.DefaultWidth)
	fmt.Printf("Campaign:          %s (%s)\n", record.Name, record.Address.Short())
	fmt.Printf("Amount:            %s\n", common.FormatLamports(req.amount))
	fmt.Printf("Reason:            %s\n", req.reason)
	fmt.Printf("Available Before:  %s\n", common.FormatLamports(before.Available))
	fmt.Printf("Available After:   %s\n", common.FormatLamports(after.Available))
	fmt.Printf("Reserve Kept:      %s\n", common.FormatLamports(after.Reserve))
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting withdrawal",
		zap.String("campaign", req.campaign.String()),
		zap.Uint64("amount", req.amount))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	before, err := services.Campaigns.Funds(ctx, req.campaign)
	if err != nil {
		common.PrintFailure("WITHDRAWAL FAILED", err)
		zap.L().Fatal("Failed to read campaign funds", zap.Error(err))
	}

	if err := services.Campaigns.Withdraw(ctx, req.admin, req.campaign, req.amount, req.reason); err != nil {
		common.PrintFailure("WITHDRAWAL FAILED", err)
		zap.L().Fatal("Withdrawal failed", zap.String("campaign", req.campaign.String()), zap.Error(err))
	}

	record, err := services.Campaigns.GetCampaign(ctx, req.campaign)
	if err != nil {
		zap.L().Fatal("Failed to read campaign", zap.Error(err))
	}
	after, err := services.Campaigns.Funds(ctx, req.campaign)
	if err != nil {
		zap.L().Fatal("Failed to read campaign funds", zap.Error(err))
	}

	printWithdrawalSummary(record, before, after, req)
}
