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

	"trace-fund-go/internal/common"
	"trace-fund-go/internal/config"
	"trace-fund-go/internal/models"

	"go.uber.org/zap"
)

type createRequest struct {
	creator      models.Address
	name         string
	description  string
	targetAmount uint64
	imageURL     string
}

func parseAndValidateFlags() (*createRequest, error) {
	creatorFlag := flag.String("creator", "", "Creator identity: hex address or label (required)")
	nameFlag := flag.String("name", "", "Campaign name, 1 to 32 bytes (required)")
	descriptionFlag := flag.String("description", "", "Campaign description")
	targetFlag := flag.String("target", "", "Fundraising goal in lamports or SOL e.g. 10SOL (required)")
	imageFlag := flag.String("image", "", "Image URL")
	flag.Parse()

	if *creatorFlag == "" || *nameFlag == "" || *targetFlag == "" {
		return nil, fmt.Errorf("all flags are required: --creator, --name, --target")
	}

	creator, err := common.ResolveIdentity(*creatorFlag)
	if err != nil {
		return nil, err
	}

	target, err := common.ParseLamports(*targetFlag)
	if err != nil {
		return nil, err
	}

	return &createRequest{
		creator:      creator,
		name:         *nameFlag,
		description:  *descriptionFlag,
		targetAmount: target,
		imageURL:     *imageFlag,
	}, nil
}

func printCampaign(c *models.Campaign, funds models.Funds) {
	common.PrintHeader("CAMPAIGN CREATED", common.DefaultWidth)
	fmt.Printf("Name:        %s\n", c.Name)
	fmt.Printf("Address:     %s\n", c.Address)
	fmt.Printf("Admin:       %s\n", c.Admin)
	fmt.Printf("Target:      %s\n", common.FormatLamports(c.TargetAmount))
	fmt.Printf("Reserve:     %s\n", common.FormatLamports(funds.Reserve))
	fmt.Printf("Space:       %d bytes\n", c.Space)
	fmt.Printf("Started:     %s\n", time.Unix(c.StartTime, 0).UTC().Format("2006-01-02 15:04:05"))
	if c.Description != "" {
		fmt.Printf("Description: %s\n", c.Description)
	}
	if c.ImageURL != "" {
		fmt.Printf("Image:       %s\n", c.ImageURL)
	}
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

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	created, err := services.Campaigns.InitializeCampaign(ctx, req.creator, req.name, req.description, req.targetAmount, req.imageURL)
	if err != nil {
		common.PrintFailure("CAMPAIGN CREATION FAILED", err)
		zap.L().Fatal("Campaign creation failed", zap.String("name", req.name), zap.Error(err))
	}

	funds, err := services.Campaigns.Funds(ctx, created.Address)
	if err != nil {
		zap.L().Fatal("Failed to read campaign funds", zap.Error(err))
	}

	printCampaign(created, funds)
}
