package app

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leavetracker/internal/shared/connection"
)

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	minNotice := 0
	if raw := os.Getenv("LEAVE_MIN_ADVANCE_DAYS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			zap.L().Warn("invalid LEAVE_MIN_ADVANCE_DAYS, using 0", zap.String("value", raw))
		} else {
			minNotice = parsed
		}
	}

	return registerModules(router, sqlDB, gormDB, redisClient, minNotice)
}
