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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"trace-fund-go/internal/models"
)

func Load() (*models.Config, error) {
	database, err := loadDatabase()
	if err != nil {
		return nil, err
	}

	policy, err := loadPolicy()
	if err != nil {
		return nil, err
	}

	notifier, err := loadNotifier()
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: database,
		Policy:   policy,
		Notifier: notifier,
		Redis: models.RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", ""),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Channel:  getEnvString("REDIS_CHANNEL", "trace-fund:events"),
		},
		Formance: models.FormanceConfig{
			StackURL:     getEnvString("FORMANCE_STACK_URL", ""),
			ClientID:     getEnvString("FORMANCE_CLIENT_ID", ""),
			ClientSecret: getEnvString("FORMANCE_CLIENT_SECRET", ""),
			LedgerName:   getEnvString("FORMANCE_LEDGER", "trace-fund"),
		},
		Metrics: models.MetricsConfig{
			ListenAddr: getEnvString("METRICS_LISTEN_ADDR", ":9090"),
		},
	}, nil
}

func loadDatabase() (models.DatabaseConfig, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return models.DatabaseConfig{}, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return models.DatabaseConfig{}, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return models.DatabaseConfig{}, err
	}

	busyTimeout, err := getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second)
	if err != nil {
		return models.DatabaseConfig{}, err
	}

	return models.DatabaseConfig{
		Path:            getEnvString("DATABASE_PATH", "campaigns.db"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: connMaxLifetime,
		ConnMaxIdleTime: connMaxIdleTime,
		PingTimeout:     pingTimeout,
		BusyTimeout:     busyTimeout,
	}, nil
}

// loadPolicy layers defaults, the optional POLICY_FILE and environment
// overrides, in that order.
func loadPolicy() (models.PolicyConfig, error) {
	policy := DefaultPolicy()

	if file := getEnvString("POLICY_FILE", ""); file != "" {
		fromFile, err := LoadPolicyFile(file)
		if err != nil {
			return models.PolicyConfig{}, err
		}
		policy = mergePolicy(policy, fromFile)
		policy.File = file
	}

	var err error
	if policy.MinDonation, err = getEnvUint64("MIN_DONATION", policy.MinDonation); err != nil {
		return models.PolicyConfig{}, err
	}
	if policy.LamportsPerByteYear, err = getEnvUint64("RENT_LAMPORTS_PER_BYTE_YEAR", policy.LamportsPerByteYear); err != nil {
		return models.PolicyConfig{}, err
	}
	if policy.StorageOverhead, err = getEnvUint64("RENT_STORAGE_OVERHEAD", policy.StorageOverhead); err != nil {
		return models.PolicyConfig{}, err
	}
	if policy.ExemptionThreshold, err = getEnvFloat("RENT_EXEMPTION_THRESHOLD", policy.ExemptionThreshold); err != nil {
		return models.PolicyConfig{}, err
	}
	policy.RecordSpace = getEnvInt("RECORD_SPACE", policy.RecordSpace)
	policy.MaxReasonLen = getEnvInt("MAX_REASON_LEN", policy.MaxReasonLen)

	if err := validatePolicy(policy); err != nil {
		return models.PolicyConfig{}, err
	}
	return policy, nil
}

func loadNotifier() (models.NotifierConfig, error) {
	pollingInterval, err := getEnvDuration("NOTIFIER_POLLING_INTERVAL", 30*time.Second)
	if err != nil {
		return models.NotifierConfig{}, err
	}

	cleanupInterval, err := getEnvDuration("NOTIFIER_CLEANUP_INTERVAL", 15*time.Minute)
	if err != nil {
		return models.NotifierConfig{}, err
	}

	retention, err := getEnvDuration("NOTIFIER_RETENTION", 7*24*time.Hour)
	if err != nil {
		return models.NotifierConfig{}, err
	}

	redeliverAfter, err := getEnvDuration("NOTIFIER_REDELIVER_AFTER", time.Minute)
	if err != nil {
		return models.NotifierConfig{}, err
	}

	return models.NotifierConfig{
		PollingInterval: pollingInterval,
		CleanupInterval: cleanupInterval,
		Retention:       retention,
		BatchSize:       getEnvInt("NOTIFIER_BATCH_SIZE", 100),
		RedeliverAfter:  redeliverAfter,
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

// getEnvUint64 rejects malformed values instead of falling back, since the
// values it reads are amounts.
func getEnvUint64(key string, defaultValue uint64) (uint64, error) {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount for %s: %q (%w)", key, value, err)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number for %s: %q (%w)", key, value, err)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
