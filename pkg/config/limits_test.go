package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shefa-net/steward-engine/pkg/models"
)

func TestParseLimits(t *testing.T) {
	data := []byte(`
limits:
  - category: financial-asset
    dimension: net-worth
    floor_value: 75000
    floor_unit: USD
    ceiling_value: 10000000
    ceiling_unit: USD
    safe_min_value: 75000
    safe_max_value: 10000000
    enforcement_method: progressive
    governance_level: constitutional
  - category: energy
    dimension: monthly-consumption
    floor_value: 100
    floor_unit: kWh
    ceiling_value: 2000
    ceiling_unit: kWh
`)

	provider, err := ParseLimits(data)
	require.NoError(t, err)

	limit, ok := provider.GetConstitutionalLimit(models.CategoryFinancialAsset)
	require.True(t, ok)
	assert.Equal(t, 75000.0, limit.FloorValue)
	assert.Equal(t, 10000000.0, limit.CeilingValue)
	assert.Equal(t, models.EnforcementProgressive, limit.EnforcementMethod)

	_, ok = provider.GetConstitutionalLimit(models.CategoryCompute)
	assert.False(t, ok)

	assert.Equal(t, []string{"financial-asset", "energy"}, provider.Categories())
}

func TestParseLimits_UnknownCategory(t *testing.T) {
	_, err := ParseLimits([]byte("limits:\n  - category: timeshare\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource category")
}

func TestParseLimits_CeilingBelowFloor(t *testing.T) {
	data := []byte(`
limits:
  - category: water
    floor_value: 500
    ceiling_value: 100
`)
	_, err := ParseLimits(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ceiling")
}

func TestParseLimits_DuplicateCategory(t *testing.T) {
	data := []byte(`
limits:
  - category: water
    floor_value: 10
    ceiling_value: 100
  - category: water
    floor_value: 20
    ceiling_value: 200
`)
	_, err := ParseLimits(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate category")
}

func TestParseLimits_InvalidYAML(t *testing.T) {
	_, err := ParseLimits([]byte("limits: [not: valid"))
	assert.Error(t, err)
}

func TestNewStaticLimitProvider(t *testing.T) {
	provider := NewStaticLimitProvider([]models.ConstitutionalLimit{
		{Category: models.CategoryFood, FloorValue: 450, CeilingValue: 3000},
	})

	limit, ok := provider.GetConstitutionalLimit(models.CategoryFood)
	require.True(t, ok)
	assert.Equal(t, 450.0, limit.FloorValue)
}
