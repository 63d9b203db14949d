package models

// DiaperCounts tallies diapers by kind; Both counts once in Total.
type DiaperCounts struct {
	Wet   int `json:"wet"`
	Dirty int `json:"dirty"`
	Both  int `json:"both"`
	Total int `json:"total"`
}

// DailySummary aggregates one calendar day of entries. Volumes are in
// fluid ounces and durations in minutes.
type DailySummary struct {
	Date               string       `json:"date"`
	TotalFeedings      int          `json:"totalFeedings"`
	BreastFeedings     int          `json:"breastFeedings"`
	BottleFeedings     int          `json:"bottleFeedings"`
	TotalVolumeOz      float64      `json:"totalVolumeOz"`
	BreastMinutes      int          `json:"breastMinutes"`
	LeftBreastMinutes  int          `json:"leftBreastMinutes"`
	RightBreastMinutes int          `json:"rightBreastMinutes"`
	Diapers            DiaperCounts `json:"diapers"`
	SleepSessions      int          `json:"sleepSessions"`
	SleepMinutes       int          `json:"sleepMinutes"`
	LastFeeding        *int64       `json:"lastFeeding,omitempty"`
	LastDiaper         *int64       `json:"lastDiaper,omitempty"`
	LastSleep          *int64       `json:"lastSleep,omitempty"`
}

// PeriodSummary totals a run of consecutive days.
type PeriodSummary struct {
	From                  string  `json:"from"`
	To                    string  `json:"to"`
	Days                  int     `json:"days"`
	TotalFeedings         int     `json:"totalFeedings"`
	TotalVolumeOz         float64 `json:"totalVolumeOz"`
	TotalDiapers          int     `json:"totalDiapers"`
	TotalSleepMinutes     int     `json:"totalSleepMinutes"`
	AvgFeedingsPerDay     float64 `json:"avgFeedingsPerDay"`
	AvgVolumeOzPerDay     float64 `json:"avgVolumeOzPerDay"`
	AvgDiapersPerDay      float64 `json:"avgDiapersPerDay"`
	AvgSleepMinutesPerDay float64 `json:"avgSleepMinutesPerDay"`
}
