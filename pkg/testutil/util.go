package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campus-events/backend/config"
	"github.com/campus-events/backend/migration"
	"github.com/campus-events/backend/pkg/authenticator"
	"github.com/campus-events/backend/pkg/logger"
	"github.com/campus-events/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	TokenSecret = "token-secret"
	QRSecret    = "qr-secret"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env:      "test",
		LogLevel: "ERROR",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			TokenSecret: TokenSecret,
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: config.Duration{Duration: time.Minute},
			},
			BcryptCost: 4,
		},
		Ticket: config.TicketConfigs{
			QRSecret:       QRSecret,
			QRSize:         128,
			FallbackPrices: map[string]int64{"duo": 15000},
		},
		File: config.FileConfigs{
			MaxSize:     1 << 20,
			PreviewSize: 32,
		},
		Cache: config.CacheConfigs{
			StatisticTTL: config.Duration{Duration: time.Minute},
		},
	}
}

// MockContext returns a context holding an empty, migrated in-memory
// database. The pool is limited to one connection so every query sees the
// same sqlite memory database.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	cfg := MockConfigs()

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
