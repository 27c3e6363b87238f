package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/launchpad/internal/launchpad/application"
	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
	"github.com/wyfcoding/launchpad/internal/launchpad/infrastructure/messaging"
	"github.com/wyfcoding/launchpad/internal/launchpad/infrastructure/persistence"
	"github.com/wyfcoding/launchpad/internal/launchpad/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/launchpad/internal/launchpad/infrastructure/persistence/redis"
	httpserver "github.com/wyfcoding/launchpad/internal/launchpad/interfaces/http"
	"github.com/wyfcoding/launchpad/pkg/cache"
	"github.com/wyfcoding/launchpad/pkg/config"
	"github.com/wyfcoding/launchpad/pkg/db"
	"github.com/wyfcoding/launchpad/pkg/logger"
	"github.com/wyfcoding/launchpad/pkg/metrics"
	"github.com/wyfcoding/launchpad/pkg/middleware"
	"github.com/wyfcoding/launchpad/pkg/mq"
)

var configPath = flag.String("config", "configs/launchpad/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	if err := logger.Init(cfg.Logger); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	ctx := context.Background()

	// 3. 指标
	metricsImpl := metrics.New("registry")
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. 基础设施
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect database", "error", err)
	}
	defer database.Close()

	if cfg.Environment == "dev" {
		// 仅开发环境自动建表
		if err := database.AutoMigrate(
			&mysql.SaleModel{},
			&mysql.LedgerModel{},
			&mysql.BalanceModel{},
			&mysql.TreasuryModel{},
		); err != nil {
			logger.Error(ctx, "failed to migrate database", "error", err)
		}
	}

	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to create kafka producer", "error", err)
	}
	defer producer.Close()

	// 5. 仓储
	saleRepo := mysql.NewSaleRepository(database.DB)
	ledgerRepo := mysql.NewLedgerRepository(database.DB)
	treasuryRepo := mysql.NewTreasuryRepository(database.DB)
	uow := mysql.NewUnitOfWork(database)

	// 查询侧发售记录走 Redis 读缓存；写路径始终直达主库，
	// 提交后由命令服务刷新缓存，避免读到过期的生命周期状态
	querySaleRepo := saleRepo
	var saleCache domain.SaleCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Error(ctx, "failed to init redis, falling back to mysql only", "error", err)
		} else {
			defer redisCache.Close()
			saleCache = redisrepo.NewSaleCache(redisCache.Client())
			querySaleRepo = persistence.NewCompositeSaleRepository(saleRepo, saleCache)
		}
	}

	publisher := messaging.NewKafkaPublisher(producer, cfg.Kafka.Topic)

	// 6. 应用服务
	owner := cfg.Registry.OwnerAccount
	fee := cfg.Registry.Fee()
	commandSvc := application.NewRegistryCommandService(saleRepo, ledgerRepo, treasuryRepo, uow, publisher, saleCache, owner, fee, metricsImpl)
	querySvc := application.NewRegistryQueryService(querySaleRepo, ledgerRepo, owner, fee)
	service := application.NewRegistryService(commandSvc, querySvc)

	logger.Info(ctx, "Registry initialized",
		"owner", owner,
		"fee", fee,
		"target", domain.Target,
		"token_limit", domain.TokenLimit,
	)

	// 7. 接口层
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinMetricsMiddleware(metricsImpl),
	)

	handler := httpserver.NewRegistryHandler(service)
	handler.RegisterRoutes(router)

	// 8. 启动与优雅关闭
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(ctx, "HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(ctx, "shutting down server...")
		case <-gctx.Done():
			logger.Info(ctx, "context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
	}
}
