// Package models contains domain types for steward-engine.
package models

// Measure is a numeric value paired with its unit of measure.
//
// Units are never auto-converted: arithmetic between two Measures assumes
// identical units. Callers own that invariant.
type Measure struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// NewMeasure returns a Measure with the given value and unit.
func NewMeasure(value float64, unit string) Measure {
	return Measure{Value: value, Unit: unit}
}

// Add returns m + other, keeping m's unit.
func (m Measure) Add(other Measure) Measure {
	return Measure{Value: m.Value + other.Value, Unit: m.Unit}
}

// Sub returns m - other, keeping m's unit. The result may be negative.
func (m Measure) Sub(other Measure) Measure {
	return Measure{Value: m.Value - other.Value, Unit: m.Unit}
}

// IsZero reports whether the measure has a zero value.
func (m Measure) IsZero() bool {
	return m.Value == 0
}
