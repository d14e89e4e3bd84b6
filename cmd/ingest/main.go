// Command ingest runs one collection job to completion and exits.
// It is meant to be invoked by an external scheduler (cron, k8s CronJob).
//
//	ingest -job=update              # incremental update of every stored symbol
//	ingest -job=init                # full history for every symbol in the master
//	ingest -job=init -code=005930   # full history for one symbol
//	ingest -job=ma                  # recompute moving averages
//	ingest -job=ranking             # refresh rising/falling rankings
//	ingest -job=master              # download the symbol master
//	ingest -job=token -user=1       # print an API bearer token for a user
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chart_backend/internal/app/di"
	candleusecase "chart_backend/internal/feature/candles/usecase"
	infradb "chart_backend/internal/platform/db"
	jwtmw "chart_backend/internal/platform/jwt"
	infraredis "chart_backend/internal/platform/redis"
	"chart_backend/internal/shared/envconfig"
)

func main() {
	job := flag.String("job", "update", "init | update | ma | ranking | master | token")
	code := flag.String("code", "", "limit init/update/ma to a single symbol")
	user := flag.Uint("user", 0, "user ID for -job=token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime for -job=token")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	if *job == "token" {
		os.Exit(issueToken(*user, *ttl))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig())
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		defer rdb.Close()
	}

	c := di.NewContainer(db, rdb)
	if err := run(ctx, c, *job, *code); err != nil {
		slog.Error("ingest failed", "job", *job, "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok", "job", *job)
}

func run(ctx context.Context, c *di.Container, job, code string) error {
	switch job {
	case "init":
		if code != "" {
			_, err := c.Collector.CollectFull(ctx, code)
			return err
		}
		codes, err := c.Symbols.ListActiveCodes(ctx)
		if err != nil {
			return fmt.Errorf("load symbols: %w", err)
		}
		return checkReport(c.Collector.InitAll(ctx, codes))
	case "update":
		if code != "" {
			_, err := c.Collector.CollectIncremental(ctx, code)
			return err
		}
		report, err := c.Collector.UpdateAll(ctx)
		if err != nil {
			return err
		}
		return checkReport(report)
	case "ma":
		if code != "" {
			return c.Collector.RecalculateMA(ctx, code)
		}
		report, err := c.Collector.RecalculateAllMAs(ctx)
		if err != nil {
			return err
		}
		return checkReport(report)
	case "ranking":
		return c.Ranking.Refresh(ctx)
	case "master":
		_, err := c.Symbols.SyncMaster(ctx)
		return err
	default:
		return fmt.Errorf("unknown job %q", job)
	}
}

// checkReport は失敗した銘柄をログに出し、全件失敗の場合のみエラーにします。
func checkReport(r candleusecase.BatchReport) error {
	for _, it := range r.Items {
		if it.Err != nil {
			slog.Warn("symbol failed", "job", r.Job, "symbol", it.Symbol, "error", it.Err)
		}
	}
	if n := len(r.Items); n > 0 && r.Failed() == n {
		return fmt.Errorf("%s: all %d symbols failed", r.Job, n)
	}
	return nil
}

func issueToken(userID uint, ttl time.Duration) int {
	if userID == 0 {
		fmt.Fprintln(os.Stderr, "-user is required for -job=token")
		return 2
	}
	token, err := jwtmw.NewGenerator(envconfig.String(jwtmw.EnvKeyJWTSecret, ""), ttl).GenerateToken(userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(token)
	return 0
}
