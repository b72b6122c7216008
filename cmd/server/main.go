package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blues/crowdfund/internal/config"
	"github.com/blues/crowdfund/internal/database"
	"github.com/blues/crowdfund/internal/event"
	"github.com/blues/crowdfund/internal/handler"
	"github.com/blues/crowdfund/internal/host"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logger"
	"github.com/blues/crowdfund/internal/logic"
	"github.com/blues/crowdfund/internal/router"
	"github.com/blues/crowdfund/internal/scheduler"
	"github.com/blues/crowdfund/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("Server exited: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}
	st := store.NewGormStore(db)

	// 宿主时间源
	clock, closeClock, err := newClock(ctx, cfg.Chain)
	if err != nil {
		return err
	}
	defer closeClock()

	rejecting, err := parseAddresses(cfg.Host.RejectAccounts)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(cfg.Chain.ContractAddress) {
		return fmt.Errorf("invalid chain.contract_address %q", cfg.Chain.ContractAddress)
	}

	bank := host.NewBank(rejecting)
	l := ledger.New(st, clock, bank, common.HexToAddress(cfg.Chain.ContractAddress))

	serial := logic.NewSerializer()
	campaignLogic := logic.NewCampaignLogic(l, serial)
	eventLogic := logic.NewEventLogic(st, l)
	accountLogic := logic.NewAccountLogic(st, bank, serial)

	// 启动定时任务
	dispatcher := event.NewDispatcher(st, event.NewProcessorManager(), cfg.Task.BatchSize, cfg.Task.Workers)
	tasks, err := scheduler.NewManager(
		scheduler.NewEventDispatchJob(dispatcher, time.Duration(cfg.Task.Interval)*time.Second),
		scheduler.NewSignaturePruneJob(st, cfg.Auth.MaxSkew),
	)
	if err != nil {
		return err
	}
	if err := tasks.Start(); err != nil {
		return err
	}
	defer tasks.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Setup(
		handler.NewCampaignHandler(campaignLogic, eventLogic),
		handler.NewAccountHandler(accountLogic),
		router.Options{
			Faucet:  cfg.Host.Faucet,
			MaxSkew: cfg.Auth.MaxSkew,
			Replay:  st,
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newClock 返回时间源及其关闭函数
func newClock(ctx context.Context, cfg config.ChainConfig) (ledger.Clock, func(), error) {
	switch cfg.Clock {
	case "chain":
		clock, client, err := host.DialChainClock(ctx, cfg.RpcUrl)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using chain clock from %s", cfg.RpcUrl)
		return clock, client.Close, nil
	case "manual":
		logger.Warn("Using manual clock starting at %d", cfg.StartTime)
		return host.NewManualClock(cfg.StartTime), func() {}, nil
	default:
		return host.SystemClock{}, func() {}, nil
	}
}

func parseAddresses(list []string) ([]common.Address, error) {
	result := make([]common.Address, 0, len(list))
	for _, s := range list {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		result = append(result, common.HexToAddress(s))
	}
	return result, nil
}
