// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/canonical/tenant-auth/internal/config"
	"github.com/canonical/tenant-auth/internal/db"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/monitoring/prometheus"
	"github.com/canonical/tenant-auth/internal/ratelimit"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/pkg/authentication"
	"github.com/canonical/tenant-auth/pkg/authority"
	"github.com/canonical/tenant-auth/pkg/credentials"
	"github.com/canonical/tenant-auth/pkg/rbac"
	"github.com/canonical/tenant-auth/pkg/session"
	"github.com/canonical/tenant-auth/pkg/tenant"
	"github.com/canonical/tenant-auth/pkg/tokens"
	"github.com/canonical/tenant-auth/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newDBClient(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*db.DBClient, error) {
	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}

	return db.NewDBClient(dbConfig, tracer, monitor, logger)
}

// newLimiter shares login counters through redis when configured, in-process otherwise
func newLimiter(specs *config.EnvSpec, logger logging.LoggerInterface) (ratelimit.LimiterInterface, func(), error) {
	if specs.RedisAddr == "" {
		logger.Info("Using in-memory login rate limiter")
		return ratelimit.NewMemoryLimiter(specs.LoginRateLimit, specs.LoginRateWindow, time.Now), func() {}, nil
	}

	client, err := ratelimit.NewRedisClient(specs.RedisAddr, specs.RedisPassword, specs.RedisDB)
	if err != nil {
		return nil, nil, err
	}

	logger.Infof("Using redis login rate limiter at %s", specs.RedisAddr)
	return ratelimit.NewRedisLimiter(client, specs.LoginRateLimit, specs.LoginRateWindow, time.Now), func() { _ = client.Close() }, nil
}

func serve() error {
	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs.Redacted())
	defer logger.Sync()

	monitor := prometheus.NewMonitor("tenant-auth", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbClient, err := newDBClient(specs, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	codec, err := tokens.NewCodec(specs.JWTSecret, specs.TenantClaim)
	if err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}

	hasher := credentials.NewHasher(specs.PasswordCost)
	verifier, err := credentials.NewVerifier(s, hasher, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create credential verifier: %w", err)
	}

	sameSite, err := session.ParseSameSite(specs.CookieSameSite)
	if err != nil {
		return err
	}

	cookies, err := session.NewCookieManager(session.CookieConfig{
		Domain:   specs.CookieDomain,
		Path:     specs.CookiePath,
		Secure:   specs.CookieSecure,
		SameSite: sameSite,
	})
	if err != nil {
		return fmt.Errorf("invalid cookie configuration: %w", err)
	}

	limiter, closeLimiter, err := newLimiter(specs, logger)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}
	defer closeLimiter()

	sessionService := session.NewService(
		session.Config{
			AccessTTL:     specs.AccessTTL(),
			RefreshTTL:    specs.RefreshTTL(),
			DefaultTenant: specs.DefaultTenant,
		},
		verifier,
		authority.NewResolver(s, tracer, monitor, logger),
		codec,
		s,
		tracer,
		monitor,
		logger,
	)

	rbacService := rbac.NewService(s, hasher, tracer, monitor, logger)

	tenantGuard := tenant.NewMiddleware(tracer, monitor, logger)
	authenticator := authentication.NewMiddleware(codec, s, tracer, monitor, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sweeper := session.NewSweeper(s, specs.RefreshSweepInterval, tracer, monitor, logger)
	go sweeper.Run(ctx)

	// Start gRPC server
	lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%v", specs.GRPCPort))
	if err != nil {
		logger.Fatalf("failed to listen on grpc port: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(tenantGuard.GRPCInterceptor, authenticator.GRPCInterceptor),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	go func() {
		logger.Infof("Starting gRPC server on port %v", specs.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatalf("failed to serve gRPC: %v", err)
		}
	}()

	router := web.NewRouter(
		web.Config{
			CORSAllowedOrigins: specs.CORSAllowedOrigins,
			TenantHeader:       specs.TenantHeader,
			DefaultTenant:      specs.DefaultTenant,
		},
		sessionService,
		cookies,
		limiter,
		rbacService,
		authenticator,
		dbClient,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	stop()
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
