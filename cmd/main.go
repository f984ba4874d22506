package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/betinha/rental-core/internal/config"
	"github.com/betinha/rental-core/internal/db"
	"github.com/betinha/rental-core/internal/lock"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
	"github.com/betinha/rental-core/internal/service"
	"github.com/betinha/rental-core/internal/transport/grpcapi"
	"github.com/betinha/rental-core/internal/transport/httpapi"
)

func main() {
	// 1. .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.DB.TimeZone)
	if err != nil {
		log.Printf("unknown time zone %q, using UTC: %v", cfg.DB.TimeZone, err)
		loc = time.UTC
	}

	// 2. Database and migrations.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	store := repository.NewGormStore(gormDB)

	// 3. Per-event locks: shared through Redis when configured.
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis ping %s: %v", cfg.Redis.Addr, err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
		log.Printf("event locks shared through redis at %s", cfg.Redis.Addr)
	}

	// 4. Services.
	svc := httpapi.Services{
		Auth:      service.NewAuthService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Events:    service.NewEventService(store, locker, log.Default()),
		Catalog:   service.NewCatalogService(store),
		Staff:     service.NewStaffService(store),
		Fleet:     service.NewFleetService(store),
		Customers: service.NewCustomerService(store),
		Stats:     service.NewStatsService(store, loc),
	}

	if cfg.Admin.Email != "" {
		u, created, err := svc.Auth.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
		if err != nil {
			log.Fatalf("ensure admin: %v", err)
		}
		if created {
			log.Printf("created admin account %s", u.Email)
		}
	}

	// 5. gRPC.
	grpcServer, healthServer := grpcapi.NewServer(grpcapi.NewFinanceServer(svc.Events, svc.Stats), svc.Auth)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.Server.GRPCAddr, err)
	}
	go func() {
		log.Printf("gRPC server listening on %s", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	// 6. HTTP.
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           httpapi.NewRouter(svc, loc, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// 7. Graceful shutdown on signal.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	grpcServer.GracefulStop()
}
