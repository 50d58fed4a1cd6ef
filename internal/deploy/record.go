package deploy

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Record describes the last successful deployment
type Record struct {
	Mode       string    `yaml:"mode" json:"mode"`
	AccountID  string    `yaml:"account_id" json:"account_id"`
	Region     string    `yaml:"region" json:"region"`
	Project    string    `yaml:"project" json:"project"`
	Registry   string    `yaml:"registry" json:"registry"`
	Images     []string  `yaml:"images,omitempty" json:"images,omitempty"`
	ALBDNSName string    `yaml:"alb_dns_name,omitempty" json:"alb_dns_name,omitempty"`
	DeployedAt time.Time `yaml:"deployed_at" json:"deployed_at"`
}

// NewRecord captures a finished session
func NewRecord(s *Session, at time.Time) *Record {
	return &Record{
		Mode:       s.Mode.String(),
		AccountID:  s.AccountID,
		Region:     s.Region,
		Project:    s.ProjectName,
		Registry:   s.Registry,
		Images:     s.Images,
		ALBDNSName: s.ALBDNSName,
		DeployedAt: at.UTC(),
	}
}

// LoadRecord loads a deployment record (supports .yaml, .yml, and .json)
func LoadRecord(fs afero.Fs, path string) (*Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment record: %w", err)
	}

	var rec Record

	// Detect format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse deployment record JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse deployment record YAML: %w", err)
		}
	}

	return &rec, nil
}

// SaveRecord writes a deployment record (format determined by file extension)
func SaveRecord(fs afero.Fs, rec *Record, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		data, err = json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal deployment record JSON: %w", err)
		}
	default:
		data, err = yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal deployment record YAML: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write deployment record: %w", err)
	}

	return nil
}
