package models

type HandPreference string

const (
	HandLeft  HandPreference = "left"
	HandRight HandPreference = "right"
)

// UnitSystem selects display units. Stored values stay imperial.
type UnitSystem string

const (
	UnitSystemImperial UnitSystem = "imperial"
	UnitSystemMetric   UnitSystem = "metric"
)

func (u UnitSystem) Valid() bool {
	return u == UnitSystemImperial || u == UnitSystemMetric
}

type Units struct {
	Volume UnitSystem `json:"volume"`
	Weight UnitSystem `json:"weight"`
}

type Preferences struct {
	HandPreference   HandPreference `json:"handPreference"`
	ShowActionLabels bool           `json:"showActionLabels"`
	Units            Units          `json:"units"`
	DarkMode         bool           `json:"darkMode"`
	HapticFeedback   bool           `json:"hapticFeedback"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		HandPreference:   HandRight,
		ShowActionLabels: true,
		Units: Units{
			Volume: UnitSystemImperial,
			Weight: UnitSystemImperial,
		},
		DarkMode:       false,
		HapticFeedback: true,
	}
}

// Normalize replaces unknown enum values with their defaults.
func (p Preferences) Normalize() Preferences {
	d := DefaultPreferences()
	if p.HandPreference != HandLeft && p.HandPreference != HandRight {
		p.HandPreference = d.HandPreference
	}
	if !p.Units.Volume.Valid() {
		p.Units.Volume = d.Units.Volume
	}
	if !p.Units.Weight.Valid() {
		p.Units.Weight = d.Units.Weight
	}
	return p
}

type UnitsPatch struct {
	Volume *UnitSystem `json:"volume,omitempty"`
	Weight *UnitSystem `json:"weight,omitempty"`
}

type PreferencesPatch struct {
	HandPreference   *HandPreference `json:"handPreference,omitempty"`
	ShowActionLabels *bool           `json:"showActionLabels,omitempty"`
	Units            *UnitsPatch     `json:"units,omitempty"`
	DarkMode         *bool           `json:"darkMode,omitempty"`
	HapticFeedback   *bool           `json:"hapticFeedback,omitempty"`
}

// Apply merges top-level fields and the nested units field by field.
func (patch PreferencesPatch) Apply(p Preferences) Preferences {
	if patch.HandPreference != nil {
		p.HandPreference = *patch.HandPreference
	}
	if patch.ShowActionLabels != nil {
		p.ShowActionLabels = *patch.ShowActionLabels
	}
	if patch.Units != nil {
		if patch.Units.Volume != nil {
			p.Units.Volume = *patch.Units.Volume
		}
		if patch.Units.Weight != nil {
			p.Units.Weight = *patch.Units.Weight
		}
	}
	if patch.DarkMode != nil {
		p.DarkMode = *patch.DarkMode
	}
	if patch.HapticFeedback != nil {
		p.HapticFeedback = *patch.HapticFeedback
	}
	return p.Normalize()
}
