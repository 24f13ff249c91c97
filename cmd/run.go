/*
Copyright © 2026 Benoit Gagnon <bgagnon.dev@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bgagnon/translien/internal/cache"
	"github.com/bgagnon/translien/internal/config"
	"github.com/bgagnon/translien/internal/detector"
	"github.com/bgagnon/translien/internal/extractor"
	"github.com/bgagnon/translien/internal/listener"
	"github.com/bgagnon/translien/internal/metrics"
	"github.com/bgagnon/translien/internal/processor"
	"github.com/bgagnon/translien/internal/reddit"
	"github.com/bgagnon/translien/internal/store"
	"github.com/bgagnon/translien/internal/translator"
	"github.com/bgagnon/translien/internal/whitelist"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot",
	Long: `Connect to Reddit and run both listeners until interrupted:
the submission listener watches the configured subreddit for new link
submissions, and the inbox listener watches the bot's inbox for
whitelist requests. State is saved on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	log.Info().
		Str("subreddit", cfg.Subreddit).
		Str("username", cfg.Reddit.Username).
		Strs("languages", cfg.Languages).
		Str("metrics_addr", cfg.MetricsAddr).
		Msg("starting translien")

	wl, err := whitelist.Load(cfg.WhitelistPath)
	if err != nil {
		return fmt.Errorf("failed to load whitelist: %w", err)
	}
	metrics.WhitelistSize.Set(float64(wl.Len()))

	subsSeen, err := cache.Load(cfg.SubmissionsCachePath, cfg.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to load submissions cache: %w", err)
	}
	inboxSeen, err := cache.Load(cfg.InboxCachePath, cfg.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to load inbox cache: %w", err)
	}

	journal, err := store.New(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open reply journal: %w", err)
	}
	defer journal.Close()

	client, err := reddit.New(cfg.Reddit, cfg.PollInterval, log)
	if err != nil {
		return err
	}

	proc := processor.New(
		processor.Config{
			Username: cfg.Reddit.Username,
			LangA:    cfg.LangA(),
			LangB:    cfg.LangB(),
		},
		wl,
		extractor.New(cfg.Reddit.UserAgent),
		detector.New(),
		translator.NewBuilder(
			translator.NewGoogleWebService(),
			translator.NewLingvaService(cfg.LingvaInstance),
		),
		client,
		journal,
		log,
	)

	sup := listener.NewSupervisor(wl, log,
		listener.NewSubmissionListener(client, proc, subsSeen, cfg.SubmissionsCachePath, cfg.Subreddit, log),
		listener.NewInboxListener(client, proc, wl, inboxSeen, cfg.InboxCachePath, cfg.Subreddit, cfg.AuthorizedUsers, log),
	)

	metricsServer := startMetricsServer(cfg.MetricsAddr, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := sup.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("metrics server shutdown error")
	}

	log.Info().Msg("translien stopped")
	return runErr
}

func setupLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl), nil
}

func startMetricsServer(addr string, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Info().Str("addr", addr).Msg("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	return srv
}
