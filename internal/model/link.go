package model

import "time"

// Link maps a short code to its destination URL. The code is the primary
// key; MySQL's uniqueness constraint is what makes concurrent allocation
// collision-safe, not any application-level check.
//
// idx_links_clicks_code backs the leaderboard query
// (ORDER BY clicks DESC, code ASC LIMIT n).
type Link struct {
	Code      string    `gorm:"primaryKey;size:16;index:idx_links_clicks_code,priority:2" json:"code"`
	LongURL   string    `gorm:"size:2048;not null" json:"longUrl"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	Clicks    int64     `gorm:"not null;default:0;index:idx_links_clicks_code,priority:1,sort:desc" json:"clicks"`
}

func (Link) TableName() string {
	return "links"
}
