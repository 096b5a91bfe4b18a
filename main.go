package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	qhttp "heartml/http"
	"heartml/logging"
	"heartml/monitoring"
	"heartml/registry"
)

// Config is the serving daemon's configuration, read once at start.
type Config struct {
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Metrics struct {
		Port int `yaml:"port"`
	} `yaml:"metrics"`
	Log      logging.Config `yaml:"log"`
	Registry struct {
		URI string `yaml:"uri"`
		Dir string `yaml:"dir"`
	} `yaml:"registry"`
}

func main() {
	config, err := loadConfig("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(config.Log)
	defer logger.Sync()

	metrics := monitoring.NewMetrics()

	done := make(chan struct{})
	hub := monitoring.NewHub(logger)
	go hub.Run(done)

	var client *registry.Client
	if config.Registry.URI != "" {
		client = registry.NewClient(config.Registry.URI)
	}
	resolver := registry.NewResolver(client, config.Registry.Dir, logger)

	state := qhttp.NewModelState()
	api := qhttp.NewAPI(state, metrics, hub, resolver, logger)

	// Startup load. Failure is not fatal: the service starts degraded and
	// health reports unhealthy until a reload succeeds.
	loadCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if artifact, err := resolver.Resolve(loadCtx); err != nil {
		logger.Warn("no model available, starting degraded", zap.Error(err))
	} else if err := api.ApplyArtifact(artifact); err != nil {
		logger.Warn("artifact rejected, starting degraded", zap.Error(err))
	}
	cancel()

	watcher, err := registry.WatchLatest(config.Registry.Dir, logger)
	if err != nil {
		logger.Warn("model dir watch unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
		go func() {
			for range watcher.Updates {
				logger.Info("new artifact written; POST /admin/reload to activate")
			}
		}()
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Metrics.Port),
		Handler: metricsMux(metrics),
	}
	go func() {
		logger.Info("starting metrics server", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = config.Http.Port
	server := qhttp.NewServer(serverConfig, api, metrics, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	metricsServer.Shutdown(shutdownCtx)
	cancelShutdown()
	close(done)

	logger.Info("exiting")
}

func metricsMux(metrics *monitoring.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	applyEnv(&config)

	if config.Http.Port == 0 {
		config.Http.Port = 8000
	}
	if config.Metrics.Port == 0 {
		config.Metrics.Port = 8001
	}
	if config.Registry.Dir == "" {
		config.Registry.Dir = "models"
	}
	return &config, nil
}

// applyEnv lets deployment override the file without editing it.
func applyEnv(config *Config) {
	config.Registry.URI = getEnv("REGISTRY_URI", config.Registry.URI)
	config.Log.Level = getEnv("LOG_LEVEL", config.Log.Level)
	if port := os.Getenv("METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Metrics.Port = p
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
