package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-gin-raffle/config"
	"go-gin-raffle/internal/cache"
	"go-gin-raffle/internal/clock"
	"go-gin-raffle/internal/database"
	"go-gin-raffle/internal/handler"
	"go-gin-raffle/internal/journal"
	"go-gin-raffle/internal/queue"
	"go-gin-raffle/internal/randomness"
	"go-gin-raffle/internal/repository"
	"go-gin-raffle/internal/scheduler"
	"go-gin-raffle/internal/service"
	"go-gin-raffle/internal/worker"
	"go-gin-raffle/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"
)

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
	defer stop()

	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	rdb, err := database.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	j, err := journal.Open(cfg.Raffle.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	src, beacon, err := newRandomness(cfg.Randomness, j)
	if err != nil {
		return err
	}

	resolveQueue, err := newResolveQueue(ctx, cfg.Raffle, rdb)
	if err != nil {
		return err
	}

	sysClock := clock.NewSystem()
	deadlines := scheduler.NewRedisDeadlineIndex(rdb)
	tickets := repository.NewTicketRepository(pool)
	accounts := repository.NewAccountRepository(pool)

	raffleService := service.NewRaffleService(service.RaffleServiceDeps{
		DB:         pool,
		Raffles:    repository.NewRaffleRepository(pool),
		Tickets:    tickets,
		Accounts:   accounts,
		Snapshots:  cache.NewRedisRaffleSnapshotCache(rdb, cache.DefaultSnapshotTTL),
		Journal:    j,
		Deadlines:  deadlines,
		Clock:      sysClock,
		Randomness: src,
	})
	accountService := service.NewAccountService(pool, accounts, tickets)

	if err := worker.NewResolveWorker(raffleService, resolveQueue).Start(ctx); err != nil {
		return err
	}
	scheduler.NewPoller(deadlines, resolveQueue, sysClock, cfg.Raffle.PollEvery()).Start(ctx)

	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	handler.NewRaffleHandler(raffleService).RegisterRoutes(router)
	handler.NewAccountHandler(accountService).RegisterRoutes(router)
	var keySource handler.PublicKeySource
	if beacon != nil {
		keySource = beacon
	}
	handler.NewRandomnessHandler(keySource).RegisterRoutes(router)

	serv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	eg, groupCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("http listening", zap.String("addr", serv.Addr), zap.Int("pid", os.Getpid()))
		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")

		timeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return serv.Shutdown(timeCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server exiting")
	return nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	logger.WithComponent("server").Info("schema migrated")
	return nil
}

// newRandomness beacon 只有在 source=beacon 時非 nil
// newRandomness 建立抽獎亂數來源；beacon 的鏈頭存在 store，重啟後接續 round
func newRandomness(cfg config.RandomnessConfig, store randomness.HeadStore) (randomness.Source, *randomness.Beacon, error) {
	switch cfg.Source {
	case config.RandomnessCrypto:
		return randomness.NewCryptoSource(), nil, nil
	case config.RandomnessBeacon, "":
		b, err := randomness.NewBeacon(cfg.BeaconSecret)
		if err != nil {
			return nil, nil, err
		}
		if err := b.Attach(store); err != nil {
			return nil, nil, fmt.Errorf("restore beacon head: %w", err)
		}
		if cfg.BeaconSecret == "" {
			logger.WithComponent("server").Warn("beacon secret not set, using an ephemeral key",
				zap.String("public_key", b.PublicKeyHex()))
		}
		return b, b, nil
	default:
		return nil, nil, errors.New("unknown randomness source: " + cfg.Source)
	}
}

func newResolveQueue(ctx context.Context, cfg config.RaffleConfig, rdb *redis.Client) (queue.ResolveQueue, error) {
	switch cfg.QueueDriver {
	case config.QueueDriverMemory:
		return queue.NewMemoryResolveQueue(256), nil
	case config.QueueDriverRedis, "":
		hostname, _ := os.Hostname()
		return queue.NewRedisStreamResolveQueue(ctx, rdb, hostname, queue.RedisStreamConfig{})
	default:
		return nil, errors.New("unknown queue driver: " + cfg.QueueDriver)
	}
}
