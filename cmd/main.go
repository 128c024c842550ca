package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/auth"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/config"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/database"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/handler"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/service"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store/postgres"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store/postgrest"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// ─── Record store ─────────────────────────────────────────────────────────

	var st store.Store
	if cfg.UseSupabase() {
		st = postgrest.NewStore(postgrest.NewClient(cfg.SupabaseURL, cfg.SupabaseKey))
		log.Info("using managed record store", zap.String("url", cfg.SupabaseURL))
	} else {
		pool, err := database.NewPool(ctx)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		st = postgres.New(pool)
		log.Info("using direct database store")
	}

	// ─── Services and handlers ────────────────────────────────────────────────

	workshopSvc := service.NewWorkshopService(st, log)
	participantSvc := service.NewParticipantService(st, log)
	enrollmentSvc := service.NewEnrollmentService(st, log)

	workshopHandler := handler.NewWorkshopHandler(workshopSvc)
	participantHandler := handler.NewParticipantHandler(participantSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)

	// ─── Router ───────────────────────────────────────────────────────────────

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(handler.Logger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(auth.Sessions(cfg.JWTSecret))

	r.Get("/health", handler.HealthCheck)

	// Reads are public.
	r.Get("/workshops", workshopHandler.List)
	r.Get("/workshops/{id}", workshopHandler.Get)
	r.Get("/workshops/{id}/enrollments", enrollmentHandler.List)
	r.Get("/participants", participantHandler.List)
	r.Get("/participants/{id}/enrollments", participantHandler.Enrollments)
	r.Get("/shops", workshopHandler.Shops)

	// Mutations require an admin session.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireMutate(auth.AllowEmails(cfg.AdminEmails)))

		r.Post("/workshops", workshopHandler.Create)
		r.Patch("/workshops/{id}", workshopHandler.Update)
		r.Post("/workshops/{id}/enrollments", enrollmentHandler.Enroll)
		r.Patch("/workshops/{id}/enrollments/{participantID}", enrollmentHandler.Update)
		r.Delete("/workshops/{id}/enrollments/{participantID}", enrollmentHandler.Unenroll)
		r.Post("/participants", participantHandler.Create)
		r.Patch("/participants/{id}", participantHandler.Update)
	})

	// ─── Server with graceful shutdown ────────────────────────────────────────

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
