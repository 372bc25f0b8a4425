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

	"trace-fund-go/internal/common"
	"trace-fund-go/internal/config"
	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"

	"go.uber.org/zap"
)

type airdropRequest struct {
	account   models.Address
	label     string
	amount    uint64
	reference string
}

func parseAndValidateFlags() (*airdropRequest, error) {
	toFlag := flag.String("to", "", "Identity to fund: hex address or label such as alice (required)")
	amountFlag := flag.String("amount", "", "Amount in lamports, or SOL with a suffix e.g. 2SOL (required)")
	refFlag := flag.String("ref", "", "Idempotency reference (optional, generated when empty)")
	flag.Parse()

	if *toFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --to, --amount")
	}

	account, err := common.ResolveIdentity(*toFlag)
	if err != nil {
		return nil, err
	}

	amount, err := common.ParseLamports(*amountFlag)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &airdropRequest{
		account:   account,
		label:     *toFlag,
		amount:    amount,
		reference: *refFlag,
	}, nil
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

	services, err := common.InitializeReadOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	err = services.DbService.Deposit(ctx, store.DepositParams{
		Account:   req.account,
		Amount:    req.amount,
		Reference: req.reference,
	})
	if errors.Is(err, store.ErrDuplicateTransaction) {
		fmt.Printf("\nAirdrop with reference %s was already applied, nothing to do\n\n", req.reference)
		return
	}
	if err != nil {
		zap.L().Fatal("Airdrop failed", zap.Error(err))
	}

	balance, err := services.DbService.GetBalance(ctx, req.account)
	if err != nil {
		zap.L().Fatal("Failed to read balance", zap.Error(err))
	}

	common.PrintHeader("AIRDROP COMPLETE", common.DefaultWidth)
	fmt.Printf("Identity:    %s\n", req.label)
	fmt.Printf("Address:     %s\n", req.account)
	fmt.Printf("Amount:      %s\n", common.FormatLamports(req.amount))
	fmt.Printf("New Balance: %s\n", common.FormatLamports(balance))
	common.PrintSeparator("=", common.DefaultWidth)
}
