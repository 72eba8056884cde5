package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/campus-events/backend/config"
	"github.com/campus-events/backend/internal/domain"
	"github.com/campus-events/backend/internal/domain/search"
	"github.com/campus-events/backend/internal/domain/ticketqr"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/authenticator"
	"github.com/campus-events/backend/pkg/logger"
	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/storage"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/campus-events/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs

	storage     storage.Storage
	redisClient xredis.Client
	searchIndex search.Index
	signer      *ticketqr.Signer

	userRepo           repository.UserRepository
	upgradeRequestRepo repository.UpgradeRequestRepository
	eventRepo          repository.EventRepository
	discountRepo       repository.DiscountRepository
	ticketRepo         repository.TicketRepository
	attendanceRepo     repository.AttendanceRepository
	waitlistRepo       repository.WaitlistRepository

	authDomain       domain.AuthDomain
	userDomain       domain.UserDomain
	eventDomain      domain.EventDomain
	discountDomain   domain.DiscountDomain
	ticketDomain     domain.TicketDomain
	attendanceDomain domain.AttendanceDomain
	waitlistDomain   domain.WaitlistDomain
	statisticDomain  domain.StatisticDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	if v := cctx.String("token-secret"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := cctx.String("qr-secret"); v != "" {
		cfg.Ticket.QRSecret = v
	}
	if v := cctx.String("database-dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if v := cctx.String("redis-addr"); v != "" {
		cfg.Redis.Addr = v
	}

	if cfg.Auth.TokenSecret == "" {
		return errors.New("auth token secret is required")
	}

	s.configs = &cfg
	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	return nil
}

func (s *srv) loadLogger() {
	level, err := logger.ParseLevel(s.configs.LogLevel)
	if err != nil {
		log.Printf("Unknown log level %s, fallback to INFO", s.configs.LogLevel)
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) newDatabase() *gorm.DB {
	var dialector gorm.Dialector
	dsn := s.configs.Database.ConnectionString()
	switch s.configs.Database.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		panic(fmt.Sprintf("unsupported database driver %s", s.configs.Database.Driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		panic(err)
	}

	if s.configs.Database.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}

		// sqlite allows a single writer at a time.
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) loadSnowFlake() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
}

func (s *srv) loadTokenEngine() {
	s.ctx = xcontext.WithTokenEngine(s.ctx, authenticator.NewTokenEngine(s.configs.Auth.TokenSecret))
}

func (s *srv) loadSigner() {
	secret, fallback := ticketqr.Secret(*s.configs)
	if fallback {
		if s.configs.IsProduction() {
			panic("ticket qr secret must be set in production")
		}

		xcontext.Logger(s.ctx).Warnf("Ticket QR secret is not set, reuse the auth token secret")
	}

	s.signer = ticketqr.NewSigner(secret)
}

func (s *srv) loadStorage() {
	var err error
	s.storage, err = storage.NewS3Storage(s.configs.Storage)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	if s.configs.Redis.Addr == "" {
		xcontext.Logger(s.ctx).Infof("Redis address is empty, statistic cache is disabled")
		return
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadSearchIndex() {
	s.searchIndex = search.NewBleveIndex(s.ctx)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.upgradeRequestRepo = repository.NewUpgradeRequestRepository()
	s.eventRepo = repository.NewEventRepository()
	s.discountRepo = repository.NewDiscountRepository()
	s.ticketRepo = repository.NewTicketRepository()
	s.attendanceRepo = repository.NewAttendanceRepository()
	s.waitlistRepo = repository.NewWaitlistRepository()
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(s.userRepo)
	s.userDomain = domain.NewUserDomain(s.userRepo, s.upgradeRequestRepo)
	s.eventDomain = domain.NewEventDomain(s.eventRepo, s.userRepo, s.searchIndex, s.storage)
	s.discountDomain = domain.NewDiscountDomain(s.discountRepo, s.eventRepo, s.userRepo)
	s.ticketDomain = domain.NewTicketDomain(
		s.ticketRepo, s.eventRepo, s.discountRepo, s.userRepo, s.waitlistRepo,
		s.signer, s.storage, s.redisClient,
	)
	s.attendanceDomain = domain.NewAttendanceDomain(
		s.attendanceRepo, s.ticketRepo, s.eventRepo, s.userRepo, s.signer, s.redisClient,
	)
	s.waitlistDomain = domain.NewWaitlistDomain(s.waitlistRepo, s.eventRepo, s.ticketRepo, s.userRepo)
	s.statisticDomain = domain.NewStatisticDomain(
		s.userRepo, s.eventRepo, s.ticketRepo, s.attendanceRepo, s.waitlistRepo, s.redisClient,
	)
}
