package service

import (
	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"golinks/constant"
	"golinks/pkg/logging"
)

// dailyKeyTTL keeps per-day Redis keys around long enough for the flush job
// to pick them up, then lets them expire.
const dailyKeyTTL = 3 * 24 * 3600

// RecordDailyPV bumps today's page-view counter for code.
func RecordDailyPV(conn redis.Conn, code string) {
	dailyPvKey := constant.GetDailyPVKey(constant.GetDateKey())

	_, err := conn.Do("HINCRBY", dailyPvKey, code, 1)
	if err != nil {
		logging.Logger.Error("Failed to record daily PV",
			zap.String("key", dailyPvKey),
			zap.String("code", code),
			zap.Error(err))
	}

	_, err = conn.Do("EXPIRE", dailyPvKey, dailyKeyTTL)
	if err != nil {
		logging.Logger.Error("Failed to set daily PV expiry",
			zap.String("key", dailyPvKey),
			zap.String("code", code),
			zap.Error(err))
	}
}

// RecordDailyUV adds the visitor IP to today's unique-visitor HyperLogLog.
func RecordDailyUV(conn redis.Conn, code string, ip string) {
	dailyUvKey := constant.GetDailyUVKey(code, constant.GetDateKey())

	_, err := conn.Do("PFADD", dailyUvKey, ip)
	if err != nil {
		logging.Logger.Error("Failed to record daily UV",
			zap.String("key", dailyUvKey),
			zap.String("ip", ip),
			zap.Error(err))
	}

	_, err = conn.Do("EXPIRE", dailyUvKey, dailyKeyTTL)
	if err != nil {
		logging.Logger.Error("Failed to set daily UV expiry",
			zap.String("key", dailyUvKey),
			zap.String("code", code),
			zap.Error(err))
	}
}

// RecordTotalUV adds the visitor IP to the lifetime unique-visitor
// HyperLogLog for code.
func RecordTotalUV(conn redis.Conn, code string, ip string) {
	totalUvKey := constant.GetTotalUVKey(code)
	_, err := conn.Do("PFADD", totalUvKey, ip)
	if err != nil {
		logging.Logger.Error("Failed to record total UV",
			zap.String("key", totalUvKey),
			zap.String("ip", ip),
			zap.Error(err))
	}
}

// GetDailyPV reads the page-view count for code on the given yyyyMMdd date.
func GetDailyPV(conn redis.Conn, code string, date string) (int64, error) {
	dailyPvKey := constant.GetDailyPVKey(date)

	result, err := redis.Int64(conn.Do("HGET", dailyPvKey, code))
	if err != nil {
		if err == redis.ErrNil {
			return 0, nil
		}
		logging.Logger.Error("Failed to get daily PV",
			zap.String("key", dailyPvKey),
			zap.String("code", code),
			zap.Error(err))
		return 0, err
	}
	return result, nil
}

// GetDailyUV reads the unique-visitor estimate for code on the given
// yyyyMMdd date.
func GetDailyUV(conn redis.Conn, code string, date string) (int64, error) {
	dailyUvKey := constant.GetDailyUVKey(code, date)

	result, err := redis.Int64(conn.Do("PFCOUNT", dailyUvKey))
	if err != nil {
		logging.Logger.Error("Failed to get daily UV",
			zap.String("key", dailyUvKey),
			zap.String("code", code),
			zap.Error(err))
		return 0, err
	}
	return result, nil
}
