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
	"fmt"

	"trace-fund-go/internal/common"
	"trace-fund-go/internal/config"
	"trace-fund-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func printBalance(balance models.AccountBalance, isLast bool) {
	fmt.Printf("%s %s: %30s (v%d, last_transfer: %s, updated: %s)\n",
		common.BoxPrefix(isLast),
		balance.Account.Short(),
		common.FormatLamports(balance.Balance),
		balance.Version,
		common.ShortId(balance.LastTransferId),
		balance.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	zap.L().Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Connecting to database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeReadOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer services.Close()

	balances, err := services.DbService.GetAllBalances(ctx)
	if err != nil {
		zap.L().Fatal("Failed to get balances", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT BALANCE REPORT", common.DefaultWidth)

	total := decimal.Zero
	mismatched := 0
	for i, balance := range balances {
		printBalance(balance, i == len(balances)-1)
		total = total.Add(common.LamportsToSOL(balance.Balance))

		if err := services.DbService.ReconcileBalance(ctx, balance.Account); err != nil {
			mismatched++
			zap.L().Error("Balance reconciliation failed",
				zap.String("account", balance.Account.String()),
				zap.Error(err))
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d funded accounts holding %s SOL (%d failed reconciliation)",
		len(balances), total.String(), mismatched)
	common.PrintFooter(summary, common.DefaultWidth)

	zap.L().Info("Balance query completed",
		zap.Int("accounts", len(balances)),
		zap.Int("mismatched", mismatched))
}
