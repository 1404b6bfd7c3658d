// Package config loads and validates the exporter's TOML configuration,
// with built-in defaults matching an out-of-the-box install.
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/netqual/exporter/internal/pingengine"
	"github.com/netqual/exporter/internal/speedtest"
)

// Config is the top-level configuration document.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Ping      PingConfig      `toml:"ping"`
	Speedtest SpeedtestConfig `toml:"speedtest"`
}

// ServerConfig controls where the HTTP surface listens.
type ServerConfig struct {
	Address string `toml:"address"`
	Port    uint16 `toml:"port"`
}

// PingConfig parameterizes the ping engine.
type PingConfig struct {
	Servers     []pingengine.Target `toml:"servers"`
	Delay       Duration            `toml:"delay"`
	Samples     int                 `toml:"samples"`
	PayloadSize int                 `toml:"payload_size"`
	Quantiles   []float64           `toml:"quantiles"`
}

// SpeedtestConfig parameterizes the throughput engine.
type SpeedtestConfig struct {
	Provider         speedtest.ProviderKind `toml:"provider"`
	DownloadEndpoint string                 `toml:"download_endpoint,omitempty"`
	UploadEndpoint   string                 `toml:"upload_endpoint,omitempty"`
	DownloadDuration Duration               `toml:"download_duration"`
	UploadDuration   Duration               `toml:"upload_duration"`
	UploadChunkSize  int                    `toml:"upload_chunk_size"`
	Quantiles        []float64              `toml:"quantiles"`
}

// Default returns the configuration a fresh install ships with.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address: "0.0.0.0",
			Port:    9090,
		},
		Ping: PingConfig{
			Servers: []pingengine.Target{
				pingengine.ParseTarget("8.8.8.8"),
				pingengine.ParseTarget("9.9.9.9"),
				pingengine.ParseTarget("1.1.1.1"),
				pingengine.ParseTarget("google.com"),
			},
			Delay:       NewDuration(time.Second),
			Samples:     60,
			PayloadSize: 512,
			Quantiles:   defaultQuantiles(),
		},
		Speedtest: SpeedtestConfig{
			Provider:         speedtest.ProviderVodafone,
			DownloadDuration: NewDuration(30 * time.Second),
			UploadDuration:   NewDuration(30 * time.Second),
			UploadChunkSize:  1_000_000,
			Quantiles:        defaultQuantiles(),
		},
	}
}

func defaultQuantiles() []float64 {
	return []float64{0, 0.25, 0.5, 0.75, 0.9, 0.99, 1}
}

// Load reads and strictly parses the TOML file at path: unknown keys
// are a parse error. Fields absent from the file keep Default's values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	meta, err := dec.Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("parsing config %s: unknown field %q", path, undecoded[0])
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}

	// The digesters require their quantile lists ascending; a config file
	// is free to list them in any order.
	sort.Float64s(cfg.Ping.Quantiles)
	sort.Float64s(cfg.Speedtest.Quantiles)
	return cfg, nil
}

// Validate checks cross-field invariants Default alone can't guarantee
// once a user-supplied file has been merged in.
func (c Config) Validate() error {
	if c.Speedtest.Provider == speedtest.ProviderHTTP {
		if c.Speedtest.DownloadEndpoint == "" || c.Speedtest.UploadEndpoint == "" {
			return fmt.Errorf("speedtest.provider = %q requires download_endpoint and upload_endpoint", speedtest.ProviderHTTP)
		}
	}
	if c.Ping.Samples < 0 {
		return fmt.Errorf("ping.samples must be >= 0")
	}
	return nil
}

// ToTOML renders cfg as a pretty TOML document, used by the
// print-default-config CLI subcommand.
func (c Config) ToTOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", err
	}
	return buf.String(), nil
}
