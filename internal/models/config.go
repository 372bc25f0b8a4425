package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Policy   PolicyConfig
	Notifier NotifierConfig
	Redis    RedisConfig
	Formance FormanceConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
}

// PolicyConfig holds the campaign rules and the storage rent parameters
type PolicyConfig struct {
	MinDonation         uint64  `yaml:"min_donation"`
	RecordSpace         int     `yaml:"record_space"`
	MaxReasonLen        int     `yaml:"max_reason_len"`
	LamportsPerByteYear uint64  `yaml:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `yaml:"exemption_threshold"`
	StorageOverhead     uint64  `yaml:"storage_overhead"`
	File                string  `yaml:"-"`
}

// NotifierConfig holds outbox redelivery settings
type NotifierConfig struct {
	PollingInterval time.Duration
	CleanupInterval time.Duration
	Retention       time.Duration
	BatchSize       int
	RedeliverAfter  time.Duration
}

// RedisConfig enables the Redis pub/sub sink when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// FormanceConfig enables the Formance ledger mirror when StackURL is set
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// MetricsConfig controls the notifier's HTTP endpoint
type MetricsConfig struct {
	ListenAddr string
}
