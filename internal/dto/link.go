package dto

import (
	"time"

	"golinks/internal/model"
)

// CreateLinkRequest is accepted both as an HTML form (long_url field) and
// as JSON on the API. The normalizer performs the real validation; the
// binding tag only rejects a missing field early.
type CreateLinkRequest struct {
	LongURL string `form:"long_url" json:"longUrl" binding:"required"`
}

// LinkResponse is the API view of a stored link.
type LinkResponse struct {
	Code      string    `json:"code"`
	ShortURL  string    `json:"shortUrl"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Clicks    int64     `json:"clicks"`
}

// StatsResponse adds the recent daily roll-ups to the link view.
type StatsResponse struct {
	LinkResponse
	Daily []DailyStatResponse `json:"daily,omitempty"`
}

type DailyStatResponse struct {
	Date string `json:"date"`
	PV   int64  `json:"pv"`
	UV   int64  `json:"uv"`
}

// NewLinkResponse builds the API view, prefixing baseURL onto the code.
func NewLinkResponse(link *model.Link, baseURL string) LinkResponse {
	return LinkResponse{
		Code:      link.Code,
		ShortURL:  baseURL + "/" + link.Code,
		LongURL:   link.LongURL,
		CreatedAt: link.CreatedAt,
		Clicks:    link.Clicks,
	}
}

// NewDailyStatResponses converts stored roll-up rows to the API view.
func NewDailyStatResponses(stats []model.DailyStat) []DailyStatResponse {
	out := make([]DailyStatResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, DailyStatResponse{
			Date: s.Date,
			PV:   s.PV,
			UV:   s.UV,
		})
	}
	return out
}
