package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/dbritton/callsheet/internal/config"
	"github.com/dbritton/callsheet/internal/database"
	"github.com/dbritton/callsheet/internal/logging"
	"github.com/dbritton/callsheet/internal/schedule"
	"github.com/dbritton/callsheet/internal/seed"
	"github.com/dbritton/callsheet/internal/server"
	"github.com/dbritton/callsheet/internal/store"
)

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "callsheet",
		Usage: "Staffing and conflict resolution server for event crews.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "callsheet.yaml",
				Usage:   "Path to the YAML configuration file.",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			srv := server.New(db, cfg.Auth.SessionTTL, logger)

			if err := ensureAdmin(srv.OperatorStore(), cfg.Auth, logger); err != nil {
				return fmt.Errorf("bootstrap admin operator: %w", err)
			}

			jobs, err := startJobs(cfg.Jobs, srv, logger.With("component", "jobs"))
			if err != nil {
				return fmt.Errorf("start background jobs: %w", err)
			}
			defer jobs.Stop()

			httpServer := &http.Server{
				Addr:         cfg.Listen,
				Handler:      srv.Router(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", cfg.Listen)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case sig := <-quit:
				logger.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Fill the database with a demo staff pool and a month of events.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "events", Value: 150, Usage: "Number of events to create."},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "Random seed; the same seed produces the same data."},
			&cli.StringFlag{Name: "date", Usage: "Anchor date (YYYY-MM-DD). Defaults to today."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			anchor := time.Now()
			if s := c.String("date"); s != "" {
				anchor, err = time.Parse("2006-01-02", s)
				if err != nil {
					return fmt.Errorf("parse date: %w", err)
				}
			}

			db, err := database.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			opts := seed.Options{
				Anchor: anchor,
				Events: c.Int("events"),
				Seed:   c.Int64("seed"),
			}
			return seed.Run(store.NewEventStore(db), store.NewStaffStore(db), opts, logger)
		},
	}
}

// ensureAdmin creates the admin operator on first run and refreshes the hash
// when the configured password changes.
func ensureAdmin(operators *store.OperatorStore, cfg config.AuthConfig, logger *slog.Logger) error {
	if cfg.AdminPassword == "" {
		logger.Warn("no admin password configured, skipping operator bootstrap")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	op, err := operators.GetByUsername(cfg.AdminUsername)
	if err != nil {
		return err
	}
	if op == nil {
		if _, err := operators.Create(cfg.AdminUsername, string(hash)); err != nil {
			return err
		}
		logger.Info("created admin operator", "username", cfg.AdminUsername)
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(cfg.AdminPassword)) != nil {
		if err := operators.SetPassword(op.ID, string(hash)); err != nil {
			return err
		}
		logger.Info("updated admin operator password", "username", cfg.AdminUsername)
	}
	return nil
}

// startJobs schedules the background maintenance: expired session cleanup
// and a morning digest of the day's conflict load.
func startJobs(cfg config.JobsConfig, srv *server.Server, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(cfg.SessionSweep, func() {
		n, err := srv.SessionStore().DeleteExpired()
		if err != nil {
			logger.Error("session sweep", "error", err)
			return
		}
		srv.RateLimiter().Cleanup()
		if n > 0 {
			logger.Info("swept expired sessions", "count", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session sweep schedule: %w", err)
	}

	_, err = c.AddFunc(cfg.ConflictDigest, func() {
		date := time.Now().Format("2006-01-02")
		view, err := srv.Roster().DayView(date)
		if err != nil {
			logger.Error("conflict digest", "error", err, "date", date)
			return
		}
		unresolved := 0
		for _, v := range view.Events {
			if v.Status == schedule.StatusConflict {
				unresolved++
			}
		}
		logger.Info("conflict digest",
			"date", date,
			"events", len(view.Events),
			"clusters", len(view.Clusters),
			"conflicted", unresolved)
	})
	if err != nil {
		return nil, fmt.Errorf("conflict digest schedule: %w", err)
	}

	c.Start()
	return c, nil
}
