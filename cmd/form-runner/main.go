// cmd/form-runner/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"campus-forms/internal/common/aws"
	"campus-forms/internal/common/config"
	chttp "campus-forms/internal/common/http"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/common/mail"
	"campus-forms/internal/common/observability"
	"campus-forms/internal/forms/gateway"
)

func main() {
	configPath := flag.String("config", "", "config file (defaults to configs/config.yaml)")
	scriptPath := flag.String("script", "", "YAML script of field edits and actions")
	serve := flag.Bool("serve", false, "keep serving /metrics after the script until interrupted")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if *scriptPath == "" {
		zapLog.Fatal("-script is required")
	}
	data, err := os.ReadFile(*scriptPath)
	if err != nil {
		zapLog.Fatal("read script failed", zap.Error(err))
	}
	script, err := ParseScript(data)
	if err != nil {
		zapLog.Fatal("invalid script", zap.Error(err))
	}

	obs, err := observability.New(cfg.App.Name, observability.Options{SetGlobal: true})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			zapLog.Warn("observability shutdown failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Metrics Server ---
	if cfg.Metrics.Enabled || *serve {
		go serveMetrics(cfg.Metrics.Address, zapLog)
	}

	gw, err := gateway.New(gateway.Dependencies{
		Transport:     chttp.NewClient(cfg.Backend.BaseURL, config.GetDuration(cfg.Backend.Timeout)),
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("gateway init failed", zap.Error(err))
	}

	mailer, err := newMailer(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("mailer init failed", zap.Error(err))
	}

	zapLog.Info("Running form script",
		zap.String("form", script.Form),
		zap.Int("steps", len(script.Steps)),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("mailer", mailer.Provider()),
	)

	runner := NewRunner(cfg, log, gw, mailer, os.Stdout)
	if err := runner.Run(ctx, script); err != nil {
		zapLog.Fatal("script failed", zap.Error(err))
	}

	if *serve {
		zapLog.Info("Script finished, serving metrics until interrupted")
		<-ctx.Done()
	}
	zapLog.Info("Form runner stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newMailer picks SES when mail delivery is enabled, else the logging mailer.
func newMailer(ctx context.Context, cfg *config.Config, log logger.Logger) (mail.Mailer, error) {
	if !cfg.Mail.Enabled || cfg.Mail.Provider != "ses" {
		return mail.NewLogMailer(log), nil
	}
	return aws.NewSESMailer(ctx, cfg.Mail.AWSRegion, cfg.Mail.FromEmail)
}

func serveMetrics(addr string, zapLog *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	zapLog.Info("Metrics server listening", zap.String("address", addr))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zapLog.Error("Metrics server failed", zap.Error(err))
	}
}
