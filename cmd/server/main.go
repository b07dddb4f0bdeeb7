package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/config"
	"github.com/teammanager/server-go/internal/database"
	"github.com/teammanager/server-go/internal/email"
	"github.com/teammanager/server-go/internal/handler"
	"github.com/teammanager/server-go/internal/jobs"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/redis"
	"github.com/teammanager/server-go/internal/repository"
	"github.com/teammanager/server-go/internal/service"
	"github.com/teammanager/server-go/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("APP_ENV") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if err := db.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	roleRepo := repository.NewRoleRepository(db.DB)
	clubRepo := repository.NewClubRepository(db.DB)
	sportRepo := repository.NewSportRepository(db.DB)
	teamRepo := repository.NewTeamRepository(db.DB)
	playerRepo := repository.NewPlayerRepository(db.DB)
	venueRepo := repository.NewVenueRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)
	invitationRepo := repository.NewInvitationRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	attendanceRepo := repository.NewAttendanceRepository(db.DB)
	photoRepo := repository.NewPhotoRepository(db.DB)

	sender := email.NewSender(cfg)
	sessionStore := session.NewStore(redisClient, cfg.SessionSecret, cfg.SessionTTL(), log.Logger)

	authService, err := service.NewAuthService(userRepo, sender, cfg.VerificationTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth service")
	}
	invitationService := service.NewInvitationService(
		invitationRepo, clubRepo, userRepo, roleRepo, notificationRepo, sender, cfg.AppBaseURL,
	)
	messageService := service.NewMessageService(
		messageRepo, userRepo, playerRepo, teamRepo, clubRepo, roleRepo, eventRepo, notificationRepo,
	)
	attendanceService := service.NewAttendanceService(attendanceRepo, eventRepo)
	dashboardService := service.NewDashboardService(
		eventRepo, messageRepo, notificationRepo, attendanceRepo, clubRepo,
	)

	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)
	csrfMiddleware := middleware.NewCSRFMiddleware()
	accessMiddleware := middleware.NewAccessMiddleware(roleRepo, clubRepo)
	authRateLimiter := middleware.NewAuthRateLimiter(redisClient, cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow())
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.MaxUploadBytes)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService, sessionStore, isProduction)
	healthHandler := handler.NewHealthHandler(db, redisClient)
	clubsHandler := handler.NewClubsHandler(clubRepo, roleRepo, accessMiddleware)
	sportsHandler := handler.NewSportsHandler(sportRepo, accessMiddleware)
	teamsHandler := handler.NewTeamsHandler(teamRepo, sportRepo, playerRepo, userRepo, accessMiddleware)
	venuesHandler := handler.NewVenuesHandler(venueRepo, accessMiddleware)
	gamesHandler := handler.NewEventsHandler(
		model.EventGame, eventRepo, teamRepo, photoRepo, attendanceService, accessMiddleware,
	)
	trainingsHandler := handler.NewEventsHandler(
		model.EventTraining, eventRepo, teamRepo, photoRepo, attendanceService, accessMiddleware,
	)
	invitationsHandler := handler.NewInvitationsHandler(invitationService, accessMiddleware)
	messagesHandler := handler.NewMessagesHandler(messageService)
	notificationsHandler := handler.NewNotificationsHandler(notificationRepo)
	photosHandler := handler.NewPhotosHandler(photoRepo, roleRepo)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	exportsHandler := handler.NewExportsHandler(clubRepo, eventRepo)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)
	r.Use(sessionMiddleware.Handler)
	r.Use(csrfMiddleware.Handler)

	r.Get("/api/health", healthHandler.Health)
	r.Get("/api/db-status", healthHandler.DBStatus)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(authRateLimiter.Handler)
		r.Mount("/", authHandler.Routes())
	})

	r.Route("/api/clubs", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Route("/{clubID}", func(r chi.Router) {
			r.Use(accessMiddleware.RequireClubAccess)
			r.Mount("/sports", sportsHandler.Routes())
			r.Mount("/teams", teamsHandler.Routes())
			r.Mount("/venues", venuesHandler.Routes())
			r.Mount("/games", gamesHandler.Routes())
			r.Mount("/trainings", trainingsHandler.Routes())
			r.Mount("/invitations", invitationsHandler.ClubRoutes())
			r.Mount("/exports", exportsHandler.Routes())
			r.Mount("/", clubsHandler.ClubRoutes())
		})
		r.Mount("/", clubsHandler.Routes())
	})

	r.Mount("/api/invitations", invitationsHandler.GlobalRoutes())
	r.Mount("/api/messages", messagesHandler.Routes())
	r.Mount("/api/notifications", notificationsHandler.Routes())
	r.Mount("/api/photos", photosHandler.Routes())
	r.Mount("/api/dashboard", dashboardHandler.Routes())

	reminderJob := jobs.NewReminderJob(
		attendanceRepo, roleRepo, userRepo, notificationRepo, invitationRepo,
		sender, config.ReminderJobInterval,
	)
	reminderJob.Start()
	defer reminderJob.Stop()

	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: config.ServerReadTimeout,
		IdleTimeout: config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
