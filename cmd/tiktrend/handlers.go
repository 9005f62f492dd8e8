package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mysticlabs/tiktrend/internal/config"
	"github.com/mysticlabs/tiktrend/internal/scheduler"
	"github.com/mysticlabs/tiktrend/internal/store"
	"github.com/mysticlabs/tiktrend/pkg/alert"
	"github.com/mysticlabs/tiktrend/pkg/enrich"
	"github.com/mysticlabs/tiktrend/pkg/server"
	"github.com/mysticlabs/tiktrend/pkg/source"
	"github.com/mysticlabs/tiktrend/pkg/trend"
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

func buildCollectors(cfg *config.Config) []source.Collector {
	filter := source.NewFilter(cfg.Sources.ExcludeKeywords)

	var collectors []source.Collector
	if cfg.Sources.Search.Enabled {
		collectors = append(collectors, source.NewSearch(cfg.Sources.Search.Seeds, cfg.Sources.Search.Region, filter))
	}
	if cfg.Sources.CreativeCenter.Enabled {
		collectors = append(collectors, source.NewCreativeCenter(cfg.Sources.CreativeCenter.URL, cfg.Sources.CreativeCenter.CookiesFile))
	}
	if cfg.Sources.RSS.Enabled {
		feeds := make([]source.RSSFeed, len(cfg.Sources.RSS.Feeds))
		for i, f := range cfg.Sources.RSS.Feeds {
			feeds[i] = source.RSSFeed{Name: f.Name, URL: f.URL}
		}
		collectors = append(collectors, source.NewRSS(feeds, filter))
	}

	return collectors
}

func buildPipeline(cfg *config.Config, db store.Store) *trend.Pipeline {
	var enricher enrich.Enricher
	if cfg.Enrich.Enabled && cfg.Enrich.APIKey != "" {
		enricher = enrich.NewOpenAI(cfg.Enrich.APIKey, cfg.Enrich.Model, cfg.Enrich.BaseURL)
		slog.Info("enrichment enabled", "model", cfg.Enrich.Model)
	} else {
		slog.Warn("enrichment disabled, summaries will not be generated")
	}
	return trend.NewPipeline(db, enricher)
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runCollect() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	sched := scheduler.New(db, buildCollectors(cfg), buildPipeline(cfg, db), buildAlertManager(cfg), cfg.Schedule.ParseInterval())
	sched.RunOnce(context.Background())
	return nil
}

func runTrends(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	trends, err := db.ListTrends(context.Background())
	if err != nil {
		return fmt.Errorf("list trends: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trends)
	}

	if len(trends) == 0 {
		fmt.Println("no trends found (try collecting data first: tiktrend collect)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tSTAGE\tNAME\tVIEWS\tSUMMARY")
	for _, t := range trends {
		summary := t.Summary
		if len(summary) > 80 {
			summary = summary[:80] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.Score, t.Stage, t.Name, t.Views, summary)
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

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, port, cfg.Server.AllowedOrigin)
	slog.Info("tiktrend API listening", "port", port)
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

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, buildCollectors(cfg), buildPipeline(cfg, db), buildAlertManager(cfg), cfg.Schedule.ParseInterval())
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("scheduler error", "error", err)
		}
	}()

	srv := server.New(db, port, cfg.Server.AllowedOrigin)
	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		os.Exit(0)
	}()

	slog.Info("tiktrend daemon listening", "port", port)
	return srv.ListenAndServe()
}

func runSeed() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.SeedSampleTrends(context.Background()); err != nil {
		return fmt.Errorf("seed trends: %w", err)
	}
	slog.Info("seeded sample trends", "path", cfg.Database.Path)
	return nil
}

func runReset() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.Reset(context.Background()); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	slog.Info("schema reset complete", "path", cfg.Database.Path)
	return nil
}
