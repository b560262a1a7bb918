package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kasir-pos/internal/api"
	"kasir-pos/internal/backend"
	"kasir-pos/internal/cache"
	"kasir-pos/internal/cart"
	"kasir-pos/internal/config"
	"kasir-pos/internal/db"
	"kasir-pos/internal/hold"
	"kasir-pos/internal/logger"
	"kasir-pos/internal/middleware"
	"kasir-pos/internal/notice"
	"kasir-pos/internal/product"
	"kasir-pos/internal/receipt"
	"kasir-pos/internal/settings"
	"kasir-pos/internal/transaction"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const printerCooldown = 30 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	// Amounts go to the UI and backend as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	var database *sql.DB
	if cfg.HoldStore == config.HoldStorePostgres {
		database = initDBFunc(cfg)
		defer database.Close()
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	terminal, local := buildTerminal(cfg, database, rdb)

	if rdb != nil {
		listener, err := cache.Listen(ctx, rdb, cache.DefaultChannel, cfg.TerminalID, local)
		if err != nil {
			logger.L().Warn("cache invalidation listener disabled", zap.Error(err))
		} else {
			defer listener.Close()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(ctx, cfg, terminal),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("POS terminal server running",
			zap.String("addr", srv.Addr),
			zap.String("terminal_id", cfg.TerminalID),
			zap.String("backend", cfg.BackendURL),
		)
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildTerminal wires one register. The returned invalidator drops only this
// process's caches; remote terminals' signals are applied through it.
func buildTerminal(cfg *config.Config, database *sql.DB, rdb *redis.Client) (*api.Terminal, cache.Invalidator) {
	client := backend.NewClient(cfg.BackendURL, cfg.BackendToken, cfg.BackendTimeout)

	catalog := product.NewService(product.NewRepository(client), product.CacheOptions{
		Size: cfg.ProductCacheSize,
		TTL:  cfg.ProductCacheTTL,
	})

	notifier := notice.Multi{notice.Log{}, notice.Request{}}

	ledger := cart.NewLedger(notifier, cart.Options{ClampDiscounts: cfg.ClampDiscounts})

	var store hold.Store
	if database != nil {
		store = hold.NewPostgresStore(database, cfg.TerminalID)
	} else {
		store = hold.NewMemoryStore()
	}

	var printer receipt.Printer = receipt.LogPrinter{}
	if cfg.PrinterURL != "" {
		printer = receipt.NewHTTPPrinter(cfg.PrinterURL, 0, printerCooldown)
	}

	purge := func(context.Context) { catalog.Purge() }
	local := cache.Funcs{Stock: purge, Products: purge}

	var invalidator cache.Invalidator = local
	if rdb != nil {
		invalidator = cache.Multi{local, cache.NewRedisPublisher(rdb, cache.DefaultChannel, cfg.TerminalID)}
	}

	return &api.Terminal{
		ID:           cfg.TerminalID,
		OutletID:     cfg.OutletID,
		Location:     cfg.Location(),
		Ledger:       ledger,
		Holds:        hold.NewService(ledger, store, notifier, hold.Options{RequireConfirm: cfg.RecallRequiresConfirm}),
		Catalog:      catalog,
		Transactions: transaction.NewService(client),
		Printer:      printer,
		Invalidator:  invalidator,
		Shortcuts:    settings.NewStore(nil),
		Notifier:     notifier,
	}, local
}

func newServer(ctx context.Context, cfg *config.Config, terminal *api.Terminal) http.Handler {
	return api.NewRouter(terminal, api.RouterOptions{
		Origin:        cfg.UIOrigin,
		FallbackToken: cfg.BackendToken,
		Limiter:       middleware.NewRateLimiter(ctx),
	})
}
