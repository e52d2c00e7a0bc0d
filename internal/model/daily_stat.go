package model

import "time"

// DailyStat is the per-day roll-up of Redis PV/UV counters for one code,
// written back by the cron flush job. Operational statistics only; the
// authoritative click counter lives on Link.Clicks.
type DailyStat struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:16;index"`
	Date      string    `gorm:"type:date;index"` // YYYY-MM-DD
	PV        int64     `gorm:"not null;default:0"`
	UV        int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (DailyStat) TableName() string {
	return "daily_stats"
}
