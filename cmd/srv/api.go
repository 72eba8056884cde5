package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/campus-events/backend/internal/middleware"
	"github.com/campus-events/backend/pkg/prometheus"
	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadSnowFlake()
	s.loadTokenEngine()
	s.loadSigner()
	s.loadStorage()
	s.loadRedisClient()
	s.loadSearchIndex()
	defer s.searchIndex.Close()
	s.loadRepos()
	s.loadDomains()

	if err := s.eventDomain.RebuildIndex(s.ctx); err != nil {
		return err
	}

	s.loadRouter()

	cfg := s.configs.ApiServer
	s.server = &http.Server{
		Addr:    cfg.Address(),
		Handler: s.router.Handler(cfg),
	}

	log.Printf("Starting server on port: %s\n", cfg.Port)
	var err error
	if cfg.Cert != "" && cfg.Key != "" {
		err = s.server.ListenAndServeTLS(cfg.Cert, cfg.Key)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server stopped: %w", err)
	}

	log.Printf("server stop")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	if s.configs.Prometheus.Enable {
		s.router.Static(s.configs.Prometheus.Path, prometheus.NewHandler())
	}

	// Public APIs. A valid token is still read so organizers can see their
	// hidden events.
	publicRouter := s.router.Branch()
	publicRouter.Before(middleware.NewAuthVerifier().WithAccessToken().Optional().Middleware())
	publicRouter.After(middleware.HandleSetAccessToken())
	{
		router.POST(publicRouter, "/register", s.authDomain.Register)
		router.POST(publicRouter, "/login", s.authDomain.Login)

		router.GET(publicRouter, "/getEvents", s.eventDomain.GetList)
		router.GET(publicRouter, "/getEvent", s.eventDomain.Get)
		router.GET(publicRouter, "/previewPrice", s.discountDomain.PreviewPrice)
	}

	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier().WithAccessToken().Middleware())
	authRouter.Before(middleware.NewRoleGuard(s.userRepo).Middleware())
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.POST(authRouter, "/updateMe", s.userDomain.UpdateMe)
		router.POST(authRouter, "/requestUpgrade", s.userDomain.RequestUpgrade)
		router.GET(authRouter, "/getUpgradeRequests", s.userDomain.GetUpgradeRequests)
		router.POST(authRouter, "/reviewUpgrade", s.userDomain.ReviewUpgrade)

		// Event API
		router.POST(authRouter, "/createEvent", s.eventDomain.Create)
		router.POST(authRouter, "/updateEvent", s.eventDomain.Update)
		router.POST(authRouter, "/deleteEvent", s.eventDomain.Delete)
		router.GET(authRouter, "/getMyEvents", s.eventDomain.GetMyEvents)
		router.POST(authRouter, "/uploadEventPoster", s.eventDomain.UploadPoster)

		// Discount API
		router.POST(authRouter, "/createDiscount", s.discountDomain.Create)
		router.GET(authRouter, "/getDiscounts", s.discountDomain.GetList)
		router.POST(authRouter, "/setDiscountActive", s.discountDomain.SetActive)

		// Ticket API
		router.POST(authRouter, "/issueTicket", s.ticketDomain.Issue)
		router.POST(authRouter, "/submitPaymentProof", s.ticketDomain.SubmitPaymentProof)
		router.POST(authRouter, "/reviewPayment", s.ticketDomain.ReviewPayment)
		router.GET(authRouter, "/getMyTickets", s.ticketDomain.GetMyTickets)
		router.GET(authRouter, "/getTicket", s.ticketDomain.Get)
		router.GET(authRouter, "/getEventTickets", s.ticketDomain.GetEventTickets)

		// Attendance API
		router.POST(authRouter, "/scanCheckIn", s.attendanceDomain.ScanCheckIn)
		router.POST(authRouter, "/manualCheckIn", s.attendanceDomain.ManualCheckIn)
		router.GET(authRouter, "/getAttendance", s.attendanceDomain.GetAttendance)

		// Waitlist API
		router.POST(authRouter, "/joinWaitlist", s.waitlistDomain.Join)
		router.POST(authRouter, "/leaveWaitlist", s.waitlistDomain.Leave)
		router.GET(authRouter, "/getWaitlist", s.waitlistDomain.GetList)

		// Statistic API
		router.GET(authRouter, "/getEventStatistic", s.statisticDomain.GetEventStatistic)
		router.GET(authRouter, "/getPlatformStatistic", s.statisticDomain.GetPlatformStatistic)
	}

	xcontext.Logger(s.ctx).Infof("Router is loaded")
}
