package main

import (
	"fmt"
	"log"
	"net/http"

	"eventure-gateway/internal/config"
	"eventure-gateway/internal/database"
	"eventure-gateway/internal/handlers"
	"eventure-gateway/internal/middleware"
	"eventure-gateway/internal/repositories"
	"eventure-gateway/internal/services"
	"eventure-gateway/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database connection established successfully")

	// Create session store with a derived cookie key
	sessionStore := sessions.NewCookieStore(utils.DeriveSessionKey(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Intent store: Redis when configured, Postgres otherwise
	var intentStore repositories.IntentStore
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		intentStore = repositories.NewRedisIntentStore(redisClient)
		log.Printf("Using Redis intent store at %s", cfg.Redis.Addr)
	} else {
		intentStore = repositories.NewPostgresIntentStore(db.DB)
		log.Println("Using Postgres intent store (REDIS_ADDR not configured)")
	}

	auditRepo := repositories.NewAuditRepository(db.DB)

	// Eventure backend client and booking flow
	eventureClient := services.NewEventureClient(services.EventureConfig{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		SuccessURL: cfg.Payment.SuccessURL,
		CancelURL:  cfg.Payment.CancelURL,
	})
	bookingFlow := services.NewBookingFlow(eventureClient, intentStore, auditRepo)

	// Handlers and middleware
	bookingHandler := handlers.NewBookingHandler(bookingFlow, auditRepo, sessionStore)
	eventsHandler := handlers.NewEventsHandler(eventureClient)
	sessionHandler := handlers.NewSessionHandler(sessionStore)
	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(authMiddleware.LoadSession)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session attach/detach for the backend-issued token
	r.Post("/session", sessionHandler.CreateSession)
	r.Delete("/session", sessionHandler.DestroySession)

	// Landing routes the payment processor redirects back to. These must not
	// require auth: the claim-and-clear semantics have to run even when the
	// session lapsed during payment.
	r.Get("/payment/success", bookingHandler.PaymentSuccess)
	r.Get("/payment/cancel", bookingHandler.PaymentCancel)

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Post("/bookings/confirm", bookingHandler.ConfirmBooking)
		r.Post("/bookings/cancel", bookingHandler.CancelBooking)
		r.Get("/bookings/history", bookingHandler.BookingHistory)
		r.Get("/events", eventsHandler.ListEvents)
		r.Get("/events/{id}", eventsHandler.GetEvent)
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Eventure gateway listening on %s (backend: %s)", addr, cfg.Backend.BaseURL)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
