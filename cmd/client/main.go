package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runera-client/internal/api"
	"runera-client/internal/auth"
	"runera-client/internal/chain"
	"runera-client/internal/config"
	"runera-client/internal/device"
	"runera-client/internal/ledger"
	"runera-client/internal/location"
	"runera-client/internal/record"
	"runera-client/internal/server"
	"runera-client/internal/submit"
	"runera-client/internal/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectRedis    func(config.Config) *redis.Client
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	loadSigner      func(config.Config) (wallet.Signer, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *redis.Client, *pgxpool.Pool, wallet.Signer, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig: config.Load,
		connectRedis: func(cfg config.Config) *redis.Client {
			return ledger.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
		},
		connectPostgres: func(cfg config.Config) (*pgxpool.Pool, error) {
			if cfg.PostgresURL == "" {
				return nil, nil
			}
			return ledger.ConnectPostgres(cfg.PostgresURL)
		},
		loadSigner: loadSigner,
		notify:     signal.Notify,
		run:        Run,
	}
}

func loadSigner(cfg config.Config) (wallet.Signer, error) {
	if cfg.WalletKeyFile != "" {
		return wallet.NewKeySignerFromFile(cfg.WalletKeyFile)
	}
	return wallet.NewKeySigner(cfg.WalletKey)
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	signer, err := deps.loadSigner(cfg)
	if err != nil {
		log.Printf("wallet key load failed: %v", err)
		return
	}

	rdb := deps.connectRedis(cfg)

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Printf("postgres archive unavailable: %v", err)
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, rdb, pg, signer, signals, nil); err != nil {
		log.Printf("client exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run wires the recording pipeline and serves the control API until a
// termination signal arrives.
func Run(ctx context.Context, cfg config.Config, rdb *redis.Client, pg *pgxpool.Pool, signer wallet.Signer, signals <-chan os.Signal, listen ListenFunc) error {
	var kv interface {
		ledger.Store
		device.KV
	}
	if rdb != nil {
		kv = ledger.NewRedisStore(rdb)
	} else {
		kv = ledger.NewMemoryStore()
	}

	var store ledger.Store = kv
	if pg != nil {
		store = ledger.NewFanout(kv, ledger.NewPostgresArchive(pg))
	}

	var tokens auth.TokenStore
	if rdb != nil {
		tokens = auth.NewRedisTokenStore(rdb)
	} else {
		tokens = auth.NewMemoryTokenStore()
	}

	backend := api.NewClient(cfg.APIBaseURL)
	session := auth.NewService(backend, signer, tokens)

	fingerprint, err := device.Fingerprint(ctx, kv)
	if err != nil {
		return err
	}

	var sampler location.Sampler
	if cfg.FeedURL != "" {
		sampler = location.NewFeedSampler(cfg.FeedURL)
	} else {
		sampler = location.NewSimSampler(-7.7956, 110.3695)
	}

	var chainClient chain.Client
	if cfg.ChainRPCURL != "" && cfg.ProfileContract != "" {
		keySigner, ok := signer.(*wallet.KeySigner)
		if !ok {
			log.Printf("on-chain sync disabled: signer holds no local key")
		} else {
			ec, err := chain.NewEthClient(cfg.ChainRPCURL, cfg.ProfileContract, cfg.ChainID, keySigner.PrivateKey())
			if err != nil {
				log.Printf("on-chain sync disabled: %v", err)
			} else {
				chainClient = ec
			}
		}
	}

	recorder := record.NewRecorder(sampler, signer.Address, fingerprint)
	submitter := submit.NewService(backend, session, chainClient, store)
	srv := server.NewServer(cfg, recorder, submitter, session, store)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
