// Package units converts between the canonical imperial values stored by
// babylog (fluid ounces, pounds) and the user's display system.
package units

import (
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/client/models"
)

const (
	MillilitersPerFluidOunce = 29.5735
	KilogramsPerPound        = 0.45359237
)

// ConvertVolume converts v between oz (imperial) and mL (metric).
func ConvertVolume(v float64, from, to models.UnitSystem) float64 {
	return convert(v, from, to, MillilitersPerFluidOunce)
}

// ConvertWeight converts v between lb (imperial) and kg (metric).
func ConvertWeight(v float64, from, to models.UnitSystem) float64 {
	return convert(v, from, to, KilogramsPerPound)
}

func convert(v float64, from, to models.UnitSystem, factor float64) float64 {
	switch {
	case from == to:
		return v
	case from == models.UnitSystemImperial && to == models.UnitSystemMetric:
		return v * factor
	case from == models.UnitSystemMetric && to == models.UnitSystemImperial:
		return v / factor
	default:
		return v
	}
}

// VolumeLabel returns the short unit name for system.
func VolumeLabel(system models.UnitSystem) string {
	if system == models.UnitSystemMetric {
		return "mL"
	}
	return "oz"
}

// WeightLabel returns the short unit name for system.
func WeightLabel(system models.UnitSystem) string {
	if system == models.UnitSystemMetric {
		return "kg"
	}
	return "lb"
}

// FormatVolume renders a canonical ounce value in system: "4.0 oz", "118 mL".
func FormatVolume(oz float64, system models.UnitSystem) string {
	if system == models.UnitSystemMetric {
		return fmt.Sprintf("%.0f mL", ConvertVolume(oz, models.UnitSystemImperial, system))
	}
	return fmt.Sprintf("%.1f oz", oz)
}

// FormatWeight renders a canonical pound value in system: "7.50 lb", "3.40 kg".
func FormatWeight(lb float64, system models.UnitSystem) string {
	return fmt.Sprintf("%.2f %s", ConvertWeight(lb, models.UnitSystemImperial, system), WeightLabel(system))
}
