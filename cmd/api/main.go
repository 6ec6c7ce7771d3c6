package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ranjan/go-market-store/internal/config"
	"github.com/ranjan/go-market-store/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", handleCreateUser(db))
		r.Get("/", handleListUsers(db))
		r.Get("/{id}", handleGetUser(db))
		r.Get("/{id}/vendor", handleGetVendorByUser(db))
		r.Get("/{id}/orders", handleListOrders(db))
	})

	r.Route("/vendors", func(r chi.Router) {
		r.Post("/", handleAddVendor(db))
		r.Get("/", handleListVendors(db))
		r.Get("/{id}", handleGetVendor(db))
		r.Put("/{id}", handleUpdateVendor(db))
		r.Get("/{id}/products", handleListVendorProducts(db))
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", handleAddProduct(db))
		r.Get("/", handleListProducts(db))
		r.Get("/{id}", handleGetProduct(db))
		r.Put("/{id}", handleUpdateProduct(db))
		r.Delete("/{id}", handleDeleteProduct(db))
	})

	r.Route("/carts/{userID}/items", func(r chi.Router) {
		r.Get("/", handleListCartItems(db))
		r.Post("/", handleAddCartItem(db))
		r.Delete("/", handleClearCart(db))
	})
	r.Delete("/cart-items/{id}", handleRemoveCartItem(db))

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", handlePlaceOrder(db))
		r.Get("/{id}", handleGetOrder(db))
		r.Put("/{id}/status", handleUpdateOrderStatus(db))
	})

	r.Route("/memberships", func(r chi.Router) {
		r.Post("/", handleAddMembership(db))
		r.Get("/{id}", handleGetMembership(db))
		r.Put("/{id}/renew", handleRenewMembership(db))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(h).With("service", "market-store")
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
