package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	quiz "github.com/goliatone/go-quiz"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("quizd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := LoadConfig()
	if cfg.SigningKey == "" {
		lgr.Error("AUTH_SIGNING_KEY is required")
		os.Exit(1)
	}

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		lgr.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := quiz.CreateSchema(ctx, db); err != nil {
		lgr.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	repo := quiz.NewRepositoryManager(db)
	repo.MustValidate()

	if cfg.AdminPassword != "" {
		if err := quiz.SeedAdmin(ctx, repo, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			lgr.Error("failed to seed admin", "error", err)
			os.Exit(1)
		}
	}

	provider := quiz.NewUserProvider(repo.Users()).
		WithLogger(printfLogger{lgr.GetLogger("provider")})

	auther := quiz.NewAuthenticator(provider, cfg).
		WithLogger(printfLogger{lgr.GetLogger("auth")})

	app := quiz.NewServer()
	if err := quiz.RegisterRoutes(app, repo, auther, cfg, printfLogger{lgr.GetLogger("http")}); err != nil {
		lgr.Error("failed to register routes", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := app.Listen(cfg.Address); err != nil {
			lgr.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	lgr.Info("listening", "addr", cfg.Address)

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		lgr.Error("shutdown error", "error", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

// printfLogger adapts a structured glog logger to the printf-style surface
// the root package expects.
type printfLogger struct {
	lgr glog.Logger
}

func (l printfLogger) Debug(format string, args ...any) { l.lgr.Debug(fmt.Sprintf(format, args...)) }
func (l printfLogger) Info(format string, args ...any)  { l.lgr.Info(fmt.Sprintf(format, args...)) }
func (l printfLogger) Warn(format string, args ...any)  { l.lgr.Warn(fmt.Sprintf(format, args...)) }
func (l printfLogger) Error(format string, args ...any) { l.lgr.Error(fmt.Sprintf(format, args...)) }
