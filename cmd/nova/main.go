package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novachat/nova/config"
	"github.com/novachat/nova/pkg/api"
	"github.com/novachat/nova/pkg/api/handlers"
	"github.com/novachat/nova/pkg/api/middleware"
	"github.com/novachat/nova/pkg/decision"
	"github.com/novachat/nova/pkg/eventbus"
	"github.com/novachat/nova/pkg/logger"
	"github.com/novachat/nova/pkg/metrics"
	"github.com/novachat/nova/pkg/model"
	"github.com/novachat/nova/pkg/store"
	storebadger "github.com/novachat/nova/pkg/store/badger"
	storememory "github.com/novachat/nova/pkg/store/memory"
	"github.com/novachat/nova/pkg/telemetry/tracing"
	"github.com/novachat/nova/pkg/version"
	"github.com/novachat/nova/pkg/voice"
	"github.com/novachat/nova/pkg/voice/cooldown"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	appName    = flag.String("app-name", "", "Override app name")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting Nova",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Storage backend
	var st store.Store
	switch cfg.Storage.Type {
	case "badger":
		badgerCfg := &storebadger.Config{
			Path:             cfg.Storage.Badger.Path,
			SyncWrites:       cfg.Storage.Badger.SyncWrites,
			ValueLogFileSize: cfg.Storage.Badger.ValueLogFileSize,
		}
		st, err = storebadger.NewBadgerStore(badgerCfg)
		if err != nil {
			log.Error("Failed to create Badger store", "error", err)
			os.Exit(1)
		}
		log.Info("Initialized Badger store", "path", badgerCfg.Path)
	case "memory":
		st = storememory.NewMemoryStore()
		log.Info("Initialized memory store")
	default:
		st = storememory.NewMemoryStore()
		log.Warn("Unknown storage type, using memory store", "type", cfg.Storage.Type)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("Error closing store", "error", err)
		}
	}()

	// Cooldown backend
	var cooldowns cooldown.Store
	switch cfg.Voice.CooldownBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Address,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		defer client.Close()
		cooldowns = cooldown.NewRedisStore(client, strings.ToLower(cfg.App.Name)+":cooldown:")
		log.Info("Initialized Redis cooldown store", "addr", cfg.Storage.Redis.Address)
	default:
		cooldowns = cooldown.NewMemoryStore()
		log.Info("Initialized memory cooldown store")
	}

	// Model caller
	var caller model.Caller
	switch cfg.Model.Provider {
	case "gemini":
		caller, err = model.NewGeminiClient(ctx, cfg.Model.Gemini.APIKey, cfg.Model.Gemini.Model)
	default:
		caller, err = model.NewOpenAIClient(cfg.Model.OpenAI.BaseURL, cfg.Model.OpenAI.APIKey, cfg.Model.OpenAI.Model)
	}
	if err != nil {
		log.Error("Failed to create model client", "error", err, "provider", cfg.Model.Provider)
		os.Exit(1)
	}

	// Metrics
	metricsCfg := metrics.Config{
		Enabled:              cfg.Metrics.Enabled,
		Port:                 cfg.Metrics.Port,
		Path:                 cfg.Metrics.Path,
		ModelDurationBuckets: metrics.DefaultConfig().ModelDurationBuckets,
		HTTPDurationBuckets:  metrics.DefaultConfig().HTTPDurationBuckets,
	}
	metricsManager := metrics.NewManager(metricsCfg)
	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// Decision telemetry: in-memory buffers, durable NDJSON log, live bus
	bus := eventbus.NewMemoryBus()
	recorderOpts := []decision.RecorderOption{
		decision.WithLogger(log),
		decision.WithPublisher(bus),
		decision.WithDepthGauge(metricsManager.SetDecisionDepth),
	}
	if cfg.Voice.DecisionBuffer > 0 {
		recorderOpts = append(recorderOpts, decision.WithCapacity(cfg.Voice.DecisionBuffer))
	}
	if cfg.Voice.DecisionLogPath != "" {
		sink, err := decision.NewNDJSONSink(cfg.Voice.DecisionLogPath)
		if err != nil {
			log.Error("Failed to open decision log", "error", err, "path", cfg.Voice.DecisionLogPath)
			os.Exit(1)
		}
		recorderOpts = append(recorderOpts, decision.WithSink(sink))
	}
	recorder := decision.NewRecorder(recorderOpts...)
	defer func() {
		if err := recorder.Close(); err != nil {
			log.Error("Error closing decision recorder", "error", err)
		}
	}()

	// Voice engine
	engine := voice.NewEngine(cooldowns, store.NewMemoryReader(st), caller,
		voice.WithLogger(log),
		voice.WithMetrics(metricsManager),
		voice.WithTunables(voiceTunables(cfg)),
	)

	// Hot reload of the voice section
	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath)
		if err != nil {
			log.Warn("Config watcher unavailable", "error", err, "path", *configPath)
		} else {
			watcher.OnReload(func(updated *config.Config) {
				engine.Retune(voiceTunables(updated))
				log.Info("Voice tunables reloaded",
					"reflection_cooldown", updated.Voice.ReflectionCooldown,
					"continuity_cooldown", updated.Voice.ContinuityCooldown,
				)
			})
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					log.Error("Config watcher error", "error", err)
				}
			}()
		}
	}

	// HTTP handlers
	apiHandlers := &api.Handlers{
		Chat: handlers.NewChatHandler(engine, st, recorder, log, handlers.ChatConfig{
			SystemPrompt: cfg.Voice.SystemPrompt,
		}),
		Decisions: handlers.NewDecisionHandler(recorder, log),
		Stream: handlers.NewStreamHandler(log, bus, handlers.StreamConfig{
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		}),
		Memory:   handlers.NewMemoryHandler(st, log),
		Settings: handlers.NewSettingsHandler(st, log),
		Health:   handlers.NewHealthHandler(nil),
		Metrics:  metricsManager,
	}
	if cfg.Server.RateLimit.Enabled {
		apiHandlers.RateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst)
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("Nova is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
	)
	log.Info("Press Ctrl+C to stop")

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	shutdownTimeout := cfg.Server.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", "error", err)
	}

	log.Info("Nova stopped gracefully")
}

func voiceTunables(cfg *config.Config) voice.Tunables {
	t := voice.DefaultTunables()
	if cfg.Voice.ReflectionCooldown > 0 {
		t.ReflectionCooldown = cfg.Voice.ReflectionCooldown
	}
	if cfg.Voice.ContinuityCooldown > 0 {
		t.ContinuityCooldown = cfg.Voice.ContinuityCooldown
	}
	if cfg.Model.Timeout > 0 {
		t.ModelTimeout = cfg.Model.Timeout
	}
	return t
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("Nova - Chat Companion Backend\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("Nova - Personal chat companion backend with a response-gating voice engine\n\n")
	fmt.Printf("Usage: nova [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  nova                                    # Run with default config\n")
	fmt.Printf("  nova -config config.yaml                # Use specific config file\n")
	fmt.Printf("  nova -port 9090 -log-level debug        # Override specific options\n")
	fmt.Printf("  nova -version                           # Print version info\n")
}
