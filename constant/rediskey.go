package constant

import (
	"fmt"
	"time"
)

const (
	BasePrefix = "golinks:"
	Separator  = ":"
)

// Redis key templates
const (
	LinkCache = BasePrefix + "link" + Separator + "%s"                   // golinks:link:code
	DailyPV   = BasePrefix + "pv" + Separator + "%s"                     // golinks:pv:yyyyMMdd (hash, field = code)
	DailyUV   = BasePrefix + "uv" + Separator + "%s" + Separator + "%s"  // golinks:uv:yyyyMMdd:code (HLL)
	TotalUV   = BasePrefix + "total_uv" + Separator + "%s"               // golinks:total_uv:code (HLL)
)

// GetLinkCacheKey returns the redirect cache key for a code.
func GetLinkCacheKey(code string) string {
	return fmt.Sprintf(LinkCache, code)
}

// GetDateKey returns today's date in yyyyMMdd form.
func GetDateKey() string {
	return time.Now().Format("20060102")
}

// GetDailyPVKey returns the daily PV hash key for a date.
func GetDailyPVKey(date string) string {
	return fmt.Sprintf(DailyPV, date)
}

// GetDailyUVKey returns the daily UV HyperLogLog key for a code and date.
func GetDailyUVKey(code, date string) string {
	return fmt.Sprintf(DailyUV, date, code)
}

// GetTotalUVKey returns the lifetime UV HyperLogLog key for a code.
func GetTotalUVKey(code string) string {
	return fmt.Sprintf(TotalUV, code)
}
