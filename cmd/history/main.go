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

func printTransfer(tr models.Transfer, isLast bool) {
	sign := "+"
	if tr.Direction == "debit" {
		sign = "-"
	}
	fmt.Printf("%s %s %-10s %s%-22s balance %-22s with %s (%s)\n",
		common.BoxPrefix(isLast),
		tr.CreatedAt.Format("2006-01-02 15:04:05"),
		tr.TransferType,
		sign,
		common.LamportsToSOL(tr.Amount).String(),
		common.LamportsToSOL(tr.BalanceAfter).String(),
		tr.Counterparty.Short(),
		common.ShortId(tr.Reference))
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Identity label, identity or campaign address in hex (required)")
	limitFlag := flag.Int("limit", 50, "Maximum number of transfers to show")
	offsetFlag := flag.Int("offset", 0, "Number of transfers to skip")
	flag.Parse()

	if *accountFlag == "" {
		zap.L().Fatal("Invalid flags", zap.Error(fmt.Errorf("--account is required")))
	}
	if *limitFlag <= 0 || *offsetFlag < 0 {
		zap.L().Fatal("Invalid flags", zap.Error(fmt.Errorf("--limit must be positive and --offset non-negative")))
	}

	account, err := common.ResolveIdentity(*accountFlag)
	if err != nil {
		zap.L().Fatal("Invalid account", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeReadOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer services.Close()

	transfers, err := services.DbService.GetTransferHistory(ctx, account, *limitFlag, *offsetFlag)
	if err != nil {
		zap.L().Fatal("Failed to get transfer history", zap.Error(err))
	}
	balance, err := services.DbService.GetBalance(ctx, account)
	if err != nil {
		zap.L().Fatal("Failed to get balance", zap.Error(err))
	}

	common.PrintHeader("TRANSFER HISTORY", common.DefaultWidth)
	fmt.Printf("Account: %s\n", account)
	fmt.Printf("Balance: %s\n\n", common.FormatLamports(balance))
	for i, tr := range transfers {
		printTransfer(tr, i == len(transfers)-1)
	}

	if err := services.DbService.ReconcileBalance(ctx, account); err != nil {
		zap.L().Error("Balance does not match transfer history", zap.Error(err))
		common.PrintFooter("RECONCILIATION FAILED: "+err.Error(), common.DefaultWidth)
		return
	}
	common.PrintFooter(fmt.Sprintf("%d transfers shown, balance reconciled", len(transfers)), common.DefaultWidth)
}
