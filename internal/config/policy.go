package config

import (
	"fmt"
	"os"
	"path/filepath"

	"trace-fund-go/internal/campaign"
	"trace-fund-go/internal/models"
	"trace-fund-go/internal/rent"

	"gopkg.in/yaml.v2"
)

type policyFile struct {
	Policy models.PolicyConfig `yaml:"policy"`
}

// DefaultPolicy returns the campaign rules used when nothing is configured.
func DefaultPolicy() models.PolicyConfig {
	return models.PolicyConfig{
		MinDonation:         campaign.DefaultMinDonation,
		RecordSpace:         rent.DefaultRecordSpace,
		MaxReasonLen:        campaign.DefaultMaxReasonLen,
		LamportsPerByteYear: rent.DefaultLamportsPerByteYear,
		ExemptionThreshold:  rent.DefaultExemptionThreshold,
		StorageOverhead:     rent.DefaultStorageOverhead,
	}
}

// LoadPolicyFile reads a YAML policy file. Relative paths resolve against
// the working directory.
func LoadPolicyFile(policyFilePath string) (models.PolicyConfig, error) {
	var path string
	if filepath.IsAbs(policyFilePath) {
		path = policyFilePath
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return models.PolicyConfig{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, policyFilePath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.PolicyConfig{}, fmt.Errorf("unable to read %s: %w", policyFilePath, err)
	}

	var file policyFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return models.PolicyConfig{}, fmt.Errorf("unable to parse %s: %w", policyFilePath, err)
	}

	return file.Policy, nil
}

// mergePolicy overlays the non-zero fields of override onto base.
func mergePolicy(base, override models.PolicyConfig) models.PolicyConfig {
	if override.MinDonation > 0 {
		base.MinDonation = override.MinDonation
	}
	if override.RecordSpace > 0 {
		base.RecordSpace = override.RecordSpace
	}
	if override.MaxReasonLen > 0 {
		base.MaxReasonLen = override.MaxReasonLen
	}
	if override.LamportsPerByteYear > 0 {
		base.LamportsPerByteYear = override.LamportsPerByteYear
	}
	if override.ExemptionThreshold > 0 {
		base.ExemptionThreshold = override.ExemptionThreshold
	}
	if override.StorageOverhead > 0 {
		base.StorageOverhead = override.StorageOverhead
	}
	return base
}

func validatePolicy(p models.PolicyConfig) error {
	if p.MinDonation == 0 {
		return fmt.Errorf("minimum donation must be positive")
	}
	if minSpace := rent.SerializedSize("x", "", ""); p.RecordSpace < minSpace {
		return fmt.Errorf("record space must be at least %d bytes, got %d", minSpace, p.RecordSpace)
	}
	if p.MaxReasonLen < 0 {
		return fmt.Errorf("max reason length cannot be negative, got %d", p.MaxReasonLen)
	}
	if p.ExemptionThreshold <= 0 {
		return fmt.Errorf("exemption threshold must be positive, got %v", p.ExemptionThreshold)
	}

	calculator := rent.Calculator{
		LamportsPerByteYear: p.LamportsPerByteYear,
		ExemptionThreshold:  p.ExemptionThreshold,
		StorageOverhead:     p.StorageOverhead,
	}
	if err := calculator.CheckBounds(p.RecordSpace); err != nil {
		return fmt.Errorf("invalid rent policy: %w", err)
	}
	return nil
}
