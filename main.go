// Command kkcos runs the KKCoS HTTP API server. It wires together the
// configuration, database pool, migrations, and the auth, users, events,
// and chat modules, then serves them behind a chi router with graceful
// shutdown.
//
// @title KKCoS API
// @version 1.0
// @description Social habit-tracking API with event logging, rankings, and chat.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/kkcos-go/apperror"
	"github.com/user/kkcos-go/auth"
	"github.com/user/kkcos-go/chat"
	"github.com/user/kkcos-go/config"
	"github.com/user/kkcos-go/db"
	_ "github.com/user/kkcos-go/docs"
	"github.com/user/kkcos-go/events"
	"github.com/user/kkcos-go/users"
)

// requestTimeout bounds non-streaming request handling.
const requestTimeout = 60 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Services hold the business logic; handlers translate HTTP to service
	// calls. Dependencies are injected manually through constructors.
	authService := auth.NewAuthService(pool, *cfg.Auth)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewUserService(pool)
	userHandlers := users.NewUserHandlers(userService)

	eventService := events.NewEventService(pool)
	eventHandlers := events.NewEventHandlers(eventService)

	broadcaster := chat.NewBroadcaster()
	chatService := chat.NewChatService(pool, broadcaster)
	chatHandlers := chat.NewChatHandlers(chatService, cfg.Chat.HistoryLimit)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	// The request timeout is applied per route group rather than globally:
	// the chat stream is a long-lived SSE response and must not run under a
	// request deadline.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that reports through the apperror envelope instead of
	// a bare 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/refresh", authHandlers.HandleRefreshToken())
		r.Post("/recover-password", authHandlers.HandleRecoverPassword())
		r.Post("/change-password", authHandlers.HandleChangePassword())
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(auth.JWTMiddleware(cfg.Auth))
		userHandlers.RegisterRoutes(r)
	})

	r.Route("/events", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(auth.JWTMiddleware(cfg.Auth))
		eventHandlers.RegisterRoutes(r)
	})

	// The chat package applies the timeout itself so the stream route can
	// opt out of it.
	r.Route("/chat", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		chatHandlers.RegisterRoutes(r)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"Failed to encode error response"}`, http.StatusInternalServerError)
	}
}
