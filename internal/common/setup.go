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

package common

import (
	"context"
	"log"
	"strings"

	"trace-fund-go/internal/campaign"
	"trace-fund-go/internal/database"
	"trace-fund-go/internal/metrics"
	"trace-fund-go/internal/models"
	"trace-fund-go/internal/notify"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	DbService  *database.Service
	Campaigns  campaign.Operations
	Dispatcher *notify.Dispatcher
	Metrics    *metrics.Metrics
	Registry   *prometheus.Registry

	closers []func() error
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the ledger and wires the campaign service to the
// configured notification sinks and metrics.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	services := &Services{DbService: dbService}

	sinks := []notify.Sink{notify.NewLogSink()}

	if cfg.Redis.Addr != "" {
		redisSink, err := notify.NewRedisSink(ctx, cfg.Redis)
		if err != nil {
			services.Close()
			return nil, err
		}
		sinks = append(sinks, redisSink)
		services.closers = append(services.closers, redisSink.Close)
	}

	if cfg.Formance.StackURL != "" {
		formanceSink, err := notify.NewFormanceSink(ctx, cfg.Formance)
		if err != nil {
			services.Close()
			return nil, err
		}
		sinks = append(sinks, formanceSink)
	}

	names := make([]string, 0, len(sinks))
	for _, sink := range sinks {
		names = append(names, sink.Name())
	}
	zap.L().Info("Notification sinks configured", zap.Strings("sinks", names))

	services.Registry = prometheus.NewRegistry()
	services.Metrics = metrics.NewMetrics(services.Registry)

	services.Dispatcher = notify.NewDispatcher(notify.DispatcherConfig{
		Outbox:          dbService,
		Sinks:           sinks,
		Recorder:        services.Metrics,
		PollingInterval: cfg.Notifier.PollingInterval,
		CleanupInterval: cfg.Notifier.CleanupInterval,
		Retention:       cfg.Notifier.Retention,
		RedeliverAfter:  cfg.Notifier.RedeliverAfter,
		BatchSize:       cfg.Notifier.BatchSize,
	})

	services.Campaigns = newCampaignService(dbService, cfg.Policy, services.Dispatcher, services.Metrics)
	return services, nil
}

// InitializeReadOnly opens the ledger for reporting commands. No sinks are
// connected since nothing is written.
func InitializeReadOnly(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	services := &Services{
		DbService: dbService,
		Registry:  prometheus.NewRegistry(),
	}
	services.Metrics = metrics.NewMetrics(services.Registry)
	services.Campaigns = newCampaignService(dbService, cfg.Policy, nil, services.Metrics)
	return services, nil
}

func newCampaignService(dbService *database.Service, policy models.PolicyConfig, dispatcher campaign.Dispatcher, m *metrics.Metrics) campaign.Operations {
	svc := campaign.NewService(dbService, campaign.NewCalculator(policy), campaign.SystemClock, campaign.NewPolicy(policy), dispatcher)
	return metrics.NewOperationsMiddleware(m)(svc)
}

func (cs *Services) Close() {
	for _, closer := range cs.closers {
		if err := closer(); err != nil {
			zap.L().Warn("Failed to close sink", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
