package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adactor "github.com/berfenger/kostal2mqtt/internal/adapter/actor"
	"github.com/berfenger/kostal2mqtt/internal/config"
	"github.com/berfenger/kostal2mqtt/internal/core/actor"
	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/internal/metrics"
	"github.com/berfenger/kostal2mqtt/internal/server"
	"github.com/berfenger/kostal2mqtt/internal/util/actorutil"
	"github.com/berfenger/kostal2mqtt/pkg/dxs"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	if err := domain.ValidateGroups(domain.PollGroups()); err != nil {
		slog.Error("invalid poll groups", "error", err)
		os.Exit(1)
	}

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	pollMetrics := metrics.NewPollMetrics()

	reader, err := dxs.CreateDxsClient(cfg.Inverter.Url, cfg.InverterTimeout(), logger, []dxs.DxsInstrument{pollMetrics.DxsInstrument()})
	if err != nil {
		logger.Fatal("invalid inverter config", zap.Error(err))
	}

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	// children restart with backoff, the inverter or the broker may be away for a while
	supervisor := pactor.NewExponentialBackoffStrategy(60*time.Second, 1*time.Second)
	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, reader, pollMetrics, mqttActorProvider(cfg, logger), logger)
	}, pactor.WithSupervisor(supervisor))
	pid, err := ctx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		logger.Fatal("could not start master actor", zap.Error(err))
	}

	server := server.NewServer(*cfg, ctx, pid, pollMetrics.Registry)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	if err := ctx.StopFuture(pid).Wait(); err != nil {
		logger.Warn("master actor stop", zap.Error(err))
	}
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => KOSTAL_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("KOSTAL_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("kostal")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = config.ParseLogLevel(viper.GetString("log_level"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

// every key gets a default so that AutomaticEnv can resolve it on Unmarshal
func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("port", 8080)
	viper.SetDefault("http_log", false)
	viper.SetDefault("inverter.url", "")
	viper.SetDefault("inverter.name", "Kostal PIKO")
	viper.SetDefault("inverter.username", "")
	viper.SetDefault("inverter.password", "")
	viper.SetDefault("inverter.timeout_millis", dxs.DEFAULT_READ_TIMEOUT.Milliseconds())
	viper.SetDefault("monitor.poll_interval_millis", 60000)
	viper.SetDefault("monitor.parallel_fetch", false)
	viper.SetDefault("monitor.mapping", config.MAPPING_BY_ID)
	viper.SetDefault("mqtt.host", "localhost")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.base_topic", "kostal")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
}

func safePrintConfig(cfg config.Config) {
	slog.Info("Using", "config", cfg.Redacted())
}
