package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elonfeng/hotradar/internal/config"
	"github.com/elonfeng/hotradar/internal/metrics"
	"github.com/elonfeng/hotradar/internal/scheduler"
	"github.com/elonfeng/hotradar/internal/store"
	"github.com/elonfeng/hotradar/internal/window"
	"github.com/elonfeng/hotradar/pkg/notify"
	"github.com/elonfeng/hotradar/pkg/platform"
	"github.com/elonfeng/hotradar/pkg/report"
	"github.com/elonfeng/hotradar/pkg/server"
	"github.com/elonfeng/hotradar/pkg/trend"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func buildEngine(cfg *config.Config, ws window.Store, logger *zap.Logger) *trend.Engine {
	return trend.NewEngine(ws, trend.Options{
		RankWeight:          cfg.Trend.RankWeight,
		FrequencyWeight:     cfg.Trend.FrequencyWeight,
		KeywordWeight:       cfg.Trend.KeywordWeight,
		PlatformWeights:     cfg.PlatformWeights(),
		PlatformPriority:    cfg.PlatformPriority(),
		Keywords:            cfg.KeywordWeights(),
		WindowDays:          cfg.Trend.WindowDays,
		TopN:                cfg.Trend.TopN,
		MaxRank:             cfg.Trend.MaxRankConsidered,
		SimilarityThreshold: cfg.Trend.SimilarityThreshold,
		MaxTitleLength:      cfg.Trend.MaxTitleLength,
		BoilerplateTokens:   cfg.Trend.BoilerplateTokens,
	}, logger)
}

func buildPlatforms(cfg *config.Config) []platform.Platform {
	var platforms []platform.Platform
	for _, p := range cfg.Platforms {
		switch p.Kind {
		case "", "newsnow":
			platforms = append(platforms, platform.NewNewsNow(p.URL, p.ID, p.Limit))
		case "rss":
			platforms = append(platforms, platform.NewRSS(p.ID, p.URL, p.Limit))
		case "scrape":
			platforms = append(platforms, platform.NewScrape(p.ID, p.URL, p.Selector, p.Limit))
		}
	}
	return platforms
}

func buildNotifiers(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notifiers.Feishu.Enabled && cfg.Notifiers.Feishu.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewFeishu(cfg.Notifiers.Feishu.WebhookURL))
	}
	if cfg.Notifiers.Dingtalk.Enabled && cfg.Notifiers.Dingtalk.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDingtalk(cfg.Notifiers.Dingtalk.WebhookURL))
	}
	if cfg.Notifiers.Wecom.Enabled && cfg.Notifiers.Wecom.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWecom(cfg.Notifiers.Wecom.WebhookURL))
	}
	if cfg.Notifiers.Telegram.Enabled {
		notifiers = append(notifiers, notify.NewTelegram(cfg.Notifiers.Telegram.BotToken, cfg.Notifiers.Telegram.ChatID))
	}

	return notify.NewManager(notifiers)
}

func buildPipeline(cfg *config.Config, db store.Store, logger *zap.Logger, withNotify bool) (*scheduler.Pipeline, error) {
	ws := window.NewFileStore(cfg.Window.Path, logger)
	engine := buildEngine(cfg, ws, logger)
	platforms := buildPlatforms(cfg)

	var reports *report.Writer
	if cfg.Report.Enabled {
		w, err := report.NewWriter(cfg.Report.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("report writer: %w", err)
		}
		reports = w
	}

	var notifier *notify.Manager
	if withNotify {
		notifier = buildNotifiers(cfg)
	}

	return scheduler.NewPipeline(platforms, engine, db, reports, notifier, logger), nil
}

func runOnce(withNotify bool, topN int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if topN > 0 {
		cfg.Trend.TopN = topN
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	metrics.Register()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db, logger, withNotify)
	if err != nil {
		return err
	}

	res, err := pipeline.RunOnce(context.Background(), time.Now())
	if err != nil {
		return err
	}

	printRanked(res)
	return nil
}

func printRanked(res *trend.Result) {
	if len(res.Items) == 0 {
		fmt.Println("no topics ranked (all platform fetches may have failed)")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tSCORE\tPLATFORMS\tTITLE")
	for _, item := range res.Items {
		platforms := ""
		for i, p := range item.Cluster.Platforms {
			if i > 0 {
				platforms += ","
			}
			platforms += p
		}
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\n",
			item.Position, item.Scores.Final, platforms, item.Cluster.Title)
	}
	w.Flush()
}

func runShow(jsonOutput bool, runID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if runID == "" {
		run, err := db.LatestRun(ctx)
		if errors.Is(err, store.ErrNoRuns) {
			fmt.Println("no runs archived yet (run: hotradar once)")
			return nil
		}
		if err != nil {
			return fmt.Errorf("latest run: %w", err)
		}
		runID = run.ID
	}

	rows, err := db.ListRanked(ctx, runID)
	if err != nil {
		return fmt.Errorf("list ranked: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tSCORE\tPLATFORMS\tFIRST SEEN\tTITLE")
	for _, row := range rows {
		platforms := ""
		for i, p := range row.Platforms {
			if i > 0 {
				platforms += ","
			}
			platforms += p
		}
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\t%s\n",
			row.Position, row.FinalScore, platforms,
			row.FirstSeen.Format("2006-01-02"), row.Title)
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	metrics.Register()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(db, port, logger)
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	metrics.Register()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db, logger, true)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(pipeline, cfg.Schedule.ParseInterval(), logger)
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduler error", zap.Error(err))
		}
	}()

	srv := server.New(db, port, logger)
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	return srv.ListenAndServe()
}
