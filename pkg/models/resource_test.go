package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtilizationOf(t *testing.T) {
	tests := []struct {
		name      string
		used      float64
		allocated float64
		expected  int
	}{
		{"zero allocation yields zero", 50, 0, 0},
		{"exact half", 50, 100, 50},
		{"rounds up", 2, 3, 67},
		{"over-used allocation exceeds 100", 900, 700, 129},
		{"negative used clamps to zero", -10, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UtilizationOf(
				Measure{Value: tt.used, Unit: "USD"},
				Measure{Value: tt.allocated, Unit: "USD"},
			)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRecalculateTotals(t *testing.T) {
	res := &StewardedResource{
		TotalCapacity: Measure{Value: 1000, Unit: "USD"},
		Allocations: []AllocationBlock{
			{Allocated: Measure{Value: 700, Unit: "USD"}, Used: Measure{Value: 200, Unit: "USD"}},
			{Allocated: Measure{Value: 100, Unit: "USD"}, Used: Measure{Value: 50, Unit: "USD"}},
		},
	}

	res.RecalculateTotals()

	assert.Equal(t, 800.0, res.TotalAllocated.Value)
	assert.Equal(t, 250.0, res.TotalUsed.Value)
	assert.Equal(t, 200.0, res.Available.Value)
	assert.Equal(t, "USD", res.TotalAllocated.Unit)
}

func TestRecalculateTotals_OverAllocationGoesNegative(t *testing.T) {
	res := &StewardedResource{
		TotalCapacity: Measure{Value: 100, Unit: "kWh"},
		Allocations: []AllocationBlock{
			{Allocated: Measure{Value: 150, Unit: "kWh"}},
		},
	}

	res.RecalculateTotals()

	// Over-allocation is a detectable state, not a rejected one.
	assert.Equal(t, -50.0, res.Available.Value)
}

func TestFindAllocation(t *testing.T) {
	blockID := uuid.New()
	res := &StewardedResource{
		Allocations: []AllocationBlock{
			{ID: uuid.New(), Label: "other"},
			{ID: blockID, Label: "target"},
		},
	}

	found := res.FindAllocation(blockID)
	require.NotNil(t, found)
	assert.Equal(t, "target", found.Label)

	assert.Nil(t, res.FindAllocation(uuid.New()))
}

func TestNewResourceNumber(t *testing.T) {
	n := NewResourceNumber()
	assert.True(t, strings.HasPrefix(n, "RES-"))
	assert.Len(t, n, 14)
	assert.NotEqual(t, n, NewResourceNumber())
}

func TestValidResourceCategory(t *testing.T) {
	assert.True(t, ValidResourceCategory(CategoryFinancialAsset))
	assert.True(t, ValidResourceCategory(CategoryUBA))
	assert.False(t, ValidResourceCategory("timeshare"))
	assert.False(t, ValidResourceCategory(""))
}

func TestValidGovernanceLevel(t *testing.T) {
	assert.True(t, ValidGovernanceLevel(GovernanceHousehold))
	assert.False(t, ValidGovernanceLevel("galactic"))
}
