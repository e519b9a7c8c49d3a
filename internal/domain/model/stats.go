package model

type CategoryStat struct {
	Category      string
	Records       int
	VolumeML      int64
	PureAlcoholML float64
}

// PeriodVolumes are approved millilitres since the start of the current
// day, week and month.
type PeriodVolumes struct {
	Day   int64
	Week  int64
	Month int64
}

type UserStats struct {
	Records          int
	ApprovedVolumeML int64
	PureAlcoholML    float64
	Periods          PeriodVolumes
	ByCategory       []CategoryStat
}

type LeaderboardEntry struct {
	UserID        int64
	Username      string
	VolumeML      int64
	PureAlcoholML float64
}
