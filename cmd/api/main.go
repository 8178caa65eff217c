package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/playerledger/internal/api"
	"github.com/fastprodman/playerledger/internal/config"
	"github.com/fastprodman/playerledger/internal/events"
	"github.com/fastprodman/playerledger/internal/infra/logging"
	"github.com/fastprodman/playerledger/internal/infra/pgutils"
	accountsrepo "github.com/fastprodman/playerledger/internal/repos/accounts"
	"github.com/fastprodman/playerledger/internal/repos/accounts/memory"
	pgaccounts "github.com/fastprodman/playerledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/playerledger/internal/services/accounts"
	"github.com/fastprodman/playerledger/internal/services/finance"
	"github.com/fastprodman/playerledger/internal/services/natives"
	"github.com/fastprodman/playerledger/internal/sessions"
	"github.com/fastprodman/playerledger/pkg/envconf"
	"github.com/fastprodman/playerledger/pkg/shutdownqueue"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	repo, err := openAccounts(ctx, cfg)
	if err != nil {
		return err
	}

	// --- Domain ---
	registry := sessions.NewRegistry()

	cashFeed := events.NewBroadcaster[events.CashChanged](cfg.EventBuffer)
	loginFeed := events.NewBroadcaster[events.LoginCompleted](cfg.EventBuffer)

	grants := natives.NewGrantQueue()
	regulator := finance.NewRegulator(events.NewMoneyIndicator(cashFeed), grants)

	registry.AddObserver(regulator, true)
	registry.AddObserver(grants, true)
	registry.AddObserver(events.NewLoginFeed(loginFeed), false)

	manager := accounts.New(registry, repo, cfg.Accounts)

	// Queue runs after the server has stopped: remaining sessions are torn
	// down (scheduling their saves), saves are awaited, then storage closes.
	shutdownqueue.AddNamed("account saves", func(c context.Context) error {
		manager.Close()
		return manager.Wait(c)
	})

	shutdownqueue.AddNamed("sessions", func(context.Context) error {
		slog.Info("Disconnect remaining sessions", "count", len(registry.Sessions()))
		registry.DestroyAll()
		cashFeed.Close()
		loginFeed.Close()

		return nil
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.Deps{
		Registry:  registry,
		Regulator: regulator,
		Accounts:  manager,
		Grants:    grants,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	})

	g.Go(func() error {
		logEvents(gctx, cashFeed, loginFeed)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		slog.Info("Shut down server")

		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	slog.Info("API started", "port", cfg.Port, "accounts_backend", cfg.Accounts.Backend)

	return g.Wait()
}

// openAccounts selects the account store and registers its teardown.
func openAccounts(ctx context.Context, cfg *apiConfig) (accountsrepo.Accounts, error) {
	switch cfg.Accounts.Backend {
	case config.BackendMemory:
		slog.Warn("using in-memory account store; balances are lost on restart")
		return memory.New(), nil
	case config.BackendPostgres:
		dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}

		shutdownqueue.AddNamed("database", func(context.Context) error {
			return closeDB(dbConns)
		})

		return pgaccounts.New(dbConns), nil
	default:
		return nil, fmt.Errorf("unknown accounts backend %q", cfg.Accounts.Backend)
	}
}

func closeDB(db *sql.DB) error {
	slog.Info("Close database")

	err := db.Close()
	if err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// logEvents reports money and login events until ctx is done or the feeds close.
func logEvents(
	ctx context.Context,
	cashFeed *events.Broadcaster[events.CashChanged],
	loginFeed *events.Broadcaster[events.LoginCompleted],
) {
	cashCh := cashFeed.Subscribe()
	loginCh := loginFeed.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cashCh:
			if !ok {
				return
			}

			slog.Debug("cash changed", "session", ev.SessionID, "delta", ev.Delta)
		case ev, ok := <-loginCh:
			if !ok {
				return
			}

			slog.Info("login completed", "session", ev.SessionID, "user_id", ev.UserID)
		}
	}
}
