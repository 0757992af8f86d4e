package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shefa-net/steward-engine/pkg/models"
)

// LimitProvider is a read-only lookup of constitutional limits, supplied by
// governance configuration. The second return value is false when no limit
// is configured for the category.
type LimitProvider interface {
	GetConstitutionalLimit(category string) (*models.ConstitutionalLimit, bool)
	Categories() []string
}

// limitsFile mirrors the on-disk shape of the governance limits file.
type limitsFile struct {
	Limits []models.ConstitutionalLimit `yaml:"limits"`
}

// FileLimitProvider serves constitutional limits from a YAML file loaded at
// startup. Limits are read-mostly configuration; the engine never writes
// them back.
type FileLimitProvider struct {
	byCategory map[string]models.ConstitutionalLimit
	order      []string
}

var _ LimitProvider = (*FileLimitProvider)(nil)

// LoadLimits parses the governance limits file at path.
func LoadLimits(path string) (*FileLimitProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read limits file %s: %w", path, err)
	}
	return ParseLimits(data)
}

// ParseLimits builds a provider from raw YAML. Split out from LoadLimits so
// tests can feed synthetic limit tables.
func ParseLimits(data []byte) (*FileLimitProvider, error) {
	var file limitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse limits file: %w", err)
	}

	p := &FileLimitProvider{byCategory: make(map[string]models.ConstitutionalLimit)}
	for _, limit := range file.Limits {
		if !models.ValidResourceCategory(limit.Category) {
			return nil, fmt.Errorf("limits file: unknown resource category %q", limit.Category)
		}
		if limit.CeilingValue < limit.FloorValue {
			return nil, fmt.Errorf("limits file: category %q ceiling %v below floor %v",
				limit.Category, limit.CeilingValue, limit.FloorValue)
		}
		if _, dup := p.byCategory[limit.Category]; dup {
			return nil, fmt.Errorf("limits file: duplicate category %q", limit.Category)
		}
		p.byCategory[limit.Category] = limit
		p.order = append(p.order, limit.Category)
	}
	return p, nil
}

// NewStaticLimitProvider builds a provider from an in-memory limit list.
// Intended for tests.
func NewStaticLimitProvider(limits []models.ConstitutionalLimit) *FileLimitProvider {
	p := &FileLimitProvider{byCategory: make(map[string]models.ConstitutionalLimit)}
	for _, limit := range limits {
		if _, dup := p.byCategory[limit.Category]; dup {
			continue
		}
		p.byCategory[limit.Category] = limit
		p.order = append(p.order, limit.Category)
	}
	return p
}

// GetConstitutionalLimit returns the limit for a category, if configured.
func (p *FileLimitProvider) GetConstitutionalLimit(category string) (*models.ConstitutionalLimit, bool) {
	limit, ok := p.byCategory[category]
	if !ok {
		return nil, false
	}
	return &limit, true
}

// Categories returns the configured categories in file order.
func (p *FileLimitProvider) Categories() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}
