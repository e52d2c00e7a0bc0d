package service

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"golinks/constant"
	"golinks/internal/model"
	"golinks/pkg/logging"
)

// StatsService rolls the Redis PV/UV counters up into the daily_stats table.
// The cron job calls FlushDailyStats every ten minutes; the upsert makes the
// flush idempotent within a day.
type StatsService struct {
	db   *gorm.DB
	pool *redis.Pool
}

func NewStatsService(db *gorm.DB, pool *redis.Pool) *StatsService {
	return &StatsService{
		db:   db,
		pool: pool,
	}
}

// FlushDailyStats reads today's PV hash from Redis and upserts one
// DailyStat row per code seen today.
func (s *StatsService) FlushDailyStats() error {
	logging.Logger.Info("FlushDailyStats start")

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "flush_daily_stats"),
			)
		}
	}()

	dateKey := constant.GetDateKey()
	date := time.Now().Format("2006-01-02")

	pvByCode, err := redis.Int64Map(conn.Do("HGETALL", constant.GetDailyPVKey(dateKey)))
	if err != nil {
		if err == redis.ErrNil {
			logging.Logger.Info("FlushDailyStats: no traffic recorded today")
			return nil
		}
		logging.Logger.Error("Failed to read daily PV hash", zap.Error(err))
		return err
	}

	for code, pv := range pvByCode {
		uv, err := GetDailyUV(conn, code, dateKey)
		if err != nil {
			// Keep the PV figure; a missing UV estimate is not worth
			// dropping the whole row over.
			uv = 0
		}

		stat := &model.DailyStat{
			Code: code,
			Date: date,
			PV:   pv,
			UV:   uv,
		}
		res := s.db.Where("code = ? AND date = ?", code, date).
			Assign("pv", pv, "uv", uv).
			FirstOrCreate(stat)
		if res.Error != nil {
			logging.Logger.Error("Failed to upsert daily stat",
				zap.String("code", code),
				zap.String("date", date),
				zap.Int64("pv", pv),
				zap.Int64("uv", uv),
				zap.Error(res.Error),
			)
		}
	}

	logging.Logger.Info("FlushDailyStats end", zap.Int("codes", len(pvByCode)))
	return nil
}

// RecentDaily returns up to days daily-stat rows for code, newest first.
func (s *StatsService) RecentDaily(code string, days int) ([]model.DailyStat, error) {
	if days <= 0 {
		days = 7
	}
	var stats []model.DailyStat
	err := s.db.Where("code = ?", code).
		Order("date DESC").
		Limit(days).
		Find(&stats).Error
	return stats, err
}
