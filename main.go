package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joslsmit/ratm-app/internal/analysis"
	"github.com/joslsmit/ratm-app/internal/auth"
	"github.com/joslsmit/ratm-app/internal/clickhouse"
	"github.com/joslsmit/ratm-app/internal/config"
	grpcserver "github.com/joslsmit/ratm-app/internal/grpc"
	"github.com/joslsmit/ratm-app/internal/handlers"
	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/mocks"
	"github.com/joslsmit/ratm-app/internal/players"
	"github.com/joslsmit/ratm-app/internal/pubsub"
	"github.com/joslsmit/ratm-app/internal/session"
	"github.com/nats-io/nats.go"
	"github.com/rs/cors"
	"google.golang.org/grpc"
)

// natsBackend is the embedded or remote JetStream connection
type natsBackend interface {
	pubsub.Upstream
	JetStream() nats.JetStreamContext
	Healthy() error
	Close()
}

type pinger interface {
	Ping() error
}

func main() {
	// Initialize logger first
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Info("Starting RATM draft kit", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize pub/sub (NATS JetStream or Embedded NATS for local development)
	natsConn := mustNATS(cfg)
	defer natsConn.Close()
	ps := pubsub.NewWithUpstream(natsConn)

	store := mustKV(cfg, natsConn)
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	checks := []handlers.HealthCheck{
		{Name: "nats", Critical: true, Check: func(context.Context) error { return natsConn.Healthy() }},
	}
	if p, ok := store.(pinger); ok {
		checks = append(checks, handlers.HealthCheck{Name: "kv", Critical: true, Check: func(context.Context) error { return p.Ping() }})
	}

	// Player reference data
	source, sourceCheck := mustPlayerSource(cfg)
	if sourceCheck != nil {
		checks = append(checks, *sourceCheck)
	}
	registry := players.NewRegistry(source)
	if err := registry.Reload(ctx); err != nil {
		logger.Warn("Player reference data unavailable, starting with an empty table", "error", err)
	}
	if cfg.PlayersRefresh > 0 {
		go registry.RefreshEvery(ctx, cfg.PlayersRefresh)
	}
	checks = append(checks, handlers.HealthCheck{Name: "players", Check: func(context.Context) error {
		if registry.Table().Len() == 0 {
			return errors.New("no player reference data loaded")
		}
		return nil
	}})

	sessions := session.NewManager(store, registry, ps)

	// Initialize authentication
	// Use mock auth in development mode, Authentik OAuth2 in production
	var authProvider auth.AuthProvider
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		authProvider = auth.NewMockAuth()
	} else {
		authProvider = auth.NewAuthentikAuth(&auth.AuthentikConfig{
			BaseURL:      cfg.Auth.BaseURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			RedirectURL:  cfg.Auth.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Using Authentik", "url", cfg.Auth.BaseURL)
	}

	// Set up HTTP routes
	mux := http.NewServeMux()

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)
	mux.Handle("/auth/me", authProvider.RequireAPI(http.HandlerFunc(authProvider.MeHandler)))

	// API routes
	api := handlers.NewAPIHandlers(sessions, analysis.NewClient(cfg.AnalysisAPIURL), ps)
	api.Register(mux, authProvider.RequireAPI)

	// Health check endpoints
	handlers.NewHealthHandlers(checks...).Register(mux)

	httpServer := &http.Server{
		Addr: "0.0.0.0:" + cfg.Port,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "X-API-Key"},
			AllowCredentials: true,
		}).Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start gRPC server. Calls authenticate with the HTTP session id; raw
	// x-user-id is only honoured in development.
	identity := grpcserver.Identity{Sessions: authProvider, TrustUserMetadata: cfg.IsDevelopment()}
	grpcServer := grpc.NewServer(identity.ServerOptions()...)
	grpcserver.RegisterBoardServiceServer(grpcServer, grpcserver.NewServer(sessions, ps))
	go func() {
		lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
		if err != nil {
			logger.Error("Failed to listen for gRPC", "error", err, "port", cfg.GRPCPort)
			stop()
			return
		}
		logger.Info("gRPC server starting", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("Server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
}

func mustNATS(cfg *config.Config) natsBackend {
	// Use embedded NATS in development mode, real NATS in production
	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
		return embedded
	}

	logger.Info("Using real NATS JetStream for production")
	remote, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		logger.Error("Failed to initialize NATS", "error", err)
		log.Fatalf("Failed to initialize NATS: %v", err)
	}
	logger.Info("Connected to NATS", "url", cfg.NATSURL)
	return remote
}

func mustKV(cfg *config.Config, nc natsBackend) kv.Store {
	store, err := openKV(cfg, nc)
	if err != nil {
		logger.Error("Failed to initialize key-value store", "driver", cfg.KVDriver, "error", err)
		log.Fatalf("Failed to initialize %s store: %v", cfg.KVDriver, err)
	}
	return store
}

func openKV(cfg *config.Config, nc natsBackend) (kv.Store, error) {
	switch cfg.KVDriver {
	case "sqlite":
		logger.Info("Using SQLite key-value store", "file", cfg.SQLiteFile)
		return kv.NewSQLiteStore(cfg.SQLiteFile)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return mocks.NewMockPostgresKV(cfg.SQLiteFile)
		}
		logger.Info("Using Postgres key-value store")
		return kv.NewPostgresStore(cfg.DatabaseURL)
	case "nats":
		logger.Info("Using NATS JetStream key-value store", "bucket", cfg.NATSKVBucket)
		return kv.NewNATSStore(nc.JetStream(), cfg.NATSKVBucket)
	case "memory":
		logger.Info("Using in-memory key-value store")
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown KV_DRIVER: %s", cfg.KVDriver)
	}
}

func mustPlayerSource(cfg *config.Config) (players.Source, *handlers.HealthCheck) {
	switch cfg.PlayerSource {
	case "clickhouse":
		ch, err := clickhouse.NewClient(cfg.ClickHouse.Addr, cfg.ClickHouse.Database, cfg.ClickHouse.User, cfg.ClickHouse.Password)
		if err != nil {
			logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouse.Addr)
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		return ch, &handlers.HealthCheck{Name: "clickhouse", Check: ch.Ping}
	case "mock":
		logger.Info("Using mock player reference data (no ClickHouse server required)")
		return mocks.NewMockClickHouseClient(), nil
	default:
		logger.Info("Loading player reference data from analysis backend", "url", cfg.AnalysisAPIURL)
		return players.NewHTTPSource(cfg.AnalysisAPIURL), nil
	}
}
