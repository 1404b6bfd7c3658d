// netqual-exporter is a Prometheus exporter that, on scrape, actively
// measures ICMP latency and HTTP throughput against a configured set
// of targets rather than replaying a background schedule.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/netqual/exporter/internal/config"
	"github.com/netqual/exporter/internal/httpapi"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "netqual-exporter",
	Short:   "Active ICMP/HTTP network-quality Prometheus exporter",
	Version: version,
	RunE:    runServe,
}

var printDefaultConfigCmd = &cobra.Command{
	Use:   "print-default-config",
	Short: "Print the default configuration as TOML and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := config.Default().ToTOML()
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML configuration file (default: built-in defaults)")
	rootCmd.AddCommand(printDefaultConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("netqual exporter starting", zap.String("version", version))

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			logger.Error("failed to load config", zap.Error(err))
			return err
		}
	}

	server, err := httpapi.NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to build server", zap.Error(err))
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start(address)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server exited with error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("signal", ctx.Err().Error()))
		return server.Stop()
	}
}

func newLogger() (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.TimeKey = "ts"
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return logConfig.Build()
}
