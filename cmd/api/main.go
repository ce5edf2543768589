package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"travel-drink-generator/internal/api"
	"travel-drink-generator/internal/core/artifact"
	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/offline"
	"travel-drink-generator/internal/core/planner"
	"travel-drink-generator/internal/core/render"
	"travel-drink-generator/internal/infrastructure/config"
	"travel-drink-generator/internal/infrastructure/server"
	"travel-drink-generator/internal/pkg/common"
	"travel-drink-generator/internal/selftest"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// 載入設定（含 .env 與命令列參數）
	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 2
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer common.Sync()

	engine := drink.NewEngine(drink.DefaultCatalog(), drink.DefaultLibrary())

	// 同時指定時自我測試優先
	if cfg.SelfTest {
		svc := newService(cfg, engine)
		defer svc.Close()
		return runSelfTest(cfg, svc)
	}
	if cfg.NoServe {
		return writeOffline(cfg, engine)
	}

	svc := newService(cfg, engine)
	defer svc.Close()

	// 設置路由
	router, err := api.SetupRouter(cfg, svc)
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 主要位址失敗時改用備援位址，兩者皆失敗則寫出離線檔案
	srv, err := server.New(cfg.Server, router)
	if err != nil {
		common.LogWarn("Unable to start a server in this environment", zap.Error(err))
		return writeOffline(cfg, engine)
	}

	common.LogInfo("啟動應用",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.String("addr", srv.Addr()),
		zap.Bool("pdf_enabled", svc.PDFEnabled()),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve()
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			common.LogError("Failed to start server", zap.Error(err))
			return 1
		}
		return 0
	case <-quit:
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return 1
	}

	common.LogInfo("Server exited")
	return 0
}

// newService 初始化 PDF 快取與計畫服務，快取無法使用時直接結束
func newService(cfg *config.Config, engine *drink.Engine) *planner.Service {
	var store artifact.Store
	if cfg.PDF.Enabled {
		var err error
		store, err = artifact.New(context.Background(), cfg)
		if err != nil {
			common.LogFatal("Failed to initialize artifact store", zap.Error(err))
		}
	}
	return planner.NewService(engine, store, cfg.PDF.Enabled)
}

// runSelfTest 執行自我測試並輸出 JSON
func runSelfTest(cfg *config.Config, svc *planner.Service) int {
	handler, err := api.SelfTestHandler(cfg, svc)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		return 1
	}

	report := selftest.Run(handler, selftest.Options{PDFEnabled: svc.PDFEnabled()})
	out, err := common.ToIndentedJSON(report)
	if err != nil {
		common.LogError("Failed to encode self-test report", zap.Error(err))
		return 1
	}
	fmt.Println(string(out))

	if !report.OK() {
		return 1
	}
	return 0
}

// writeOffline 以預設偏好寫出離線檔案
func writeOffline(cfg *config.Config, engine *drink.Engine) int {
	var renderer func(*drink.Plan) ([]byte, error)
	if cfg.PDF.Enabled {
		renderer = render.PDF
	}

	files, err := offline.NewWriter(cfg.Offline.Dir, engine, renderer).Write(drink.PreferencesInput{})
	if err != nil {
		if errors.Is(err, drink.ErrNoCandidates) {
			common.LogError("No drinks available for the offline plan", zap.Error(err))
		} else {
			common.LogError("Failed to write offline artifacts", zap.Error(err))
		}
		return 1
	}

	fmt.Printf("[offline] Wrote %d files to %s\n", len(files), cfg.Offline.Dir)
	return 0
}
