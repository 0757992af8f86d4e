package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureArithmetic(t *testing.T) {
	a := NewMeasure(10, "GB")
	b := NewMeasure(4, "GB")

	assert.Equal(t, Measure{Value: 14, Unit: "GB"}, a.Add(b))
	assert.Equal(t, Measure{Value: 6, Unit: "GB"}, a.Sub(b))
	assert.Equal(t, Measure{Value: -6, Unit: "GB"}, b.Sub(a))
	assert.False(t, a.IsZero())
	assert.True(t, Measure{Unit: "GB"}.IsZero())
}
