package speedtest

import (
	"context"
	"fmt"
	"time"
)

// ProviderKind is the closed set of speedtest backend shapes a config
// file may select.
type ProviderKind string

const (
	// ProviderVodafone measures against Vodafone's public speedtest
	// mirror using its fixed, hardcoded endpoints.
	ProviderVodafone ProviderKind = "vodafone"
	// ProviderHTTP measures against a pair of user-configured
	// download/upload endpoints.
	ProviderHTTP ProviderKind = "http"
)

// Config selects and parameterizes one Provider. DownloadEndpoint and
// UploadEndpoint are only meaningful (and required) for ProviderHTTP;
// ProviderVodafone ignores them in favor of its fixed mirror URLs.
type Config struct {
	Kind             ProviderKind
	DownloadEndpoint string
	UploadEndpoint   string
	DownloadDuration time.Duration
	UploadDuration   time.Duration
	UploadChunkSize  int
	Quantiles        []float64
}

// Provider measures both directions of throughput for one scrape.
type Provider interface {
	MeasureDownload(ctx context.Context) (Data, error)
	MeasureUpload(ctx context.Context) (Data, error)
}

// NewProvider builds the Provider described by cfg.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Kind {
	case ProviderVodafone:
		return &HTTPProvider{
			DownloadEndpoint: vodafoneDownloadEndpoint,
			UploadEndpoint:   vodafoneUploadEndpoint,
			DownloadDuration: cfg.DownloadDuration,
			UploadDuration:   cfg.UploadDuration,
			UploadChunkSize:  cfg.UploadChunkSize,
		}, nil
	case ProviderHTTP:
		if cfg.DownloadEndpoint == "" || cfg.UploadEndpoint == "" {
			return nil, fmt.Errorf("speedtest: provider %q requires download_endpoint and upload_endpoint", ProviderHTTP)
		}
		return &HTTPProvider{
			DownloadEndpoint: cfg.DownloadEndpoint,
			UploadEndpoint:   cfg.UploadEndpoint,
			DownloadDuration: cfg.DownloadDuration,
			UploadDuration:   cfg.UploadDuration,
			UploadChunkSize:  cfg.UploadChunkSize,
		}, nil
	default:
		return nil, fmt.Errorf("speedtest: unknown provider %q", cfg.Kind)
	}
}

// Result is the two-direction result of one scrape: independent
// download and upload digests.
type Result struct {
	Down Summary `json:"down"`
	Up   Summary `json:"up"`
}

// Run measures both directions with provider and digests each into a
// Summary using quantiles.
func Run(ctx context.Context, provider Provider, quantiles []float64) (Result, error) {
	downData, err := provider.MeasureDownload(ctx)
	if err != nil {
		return Result{}, err
	}
	upData, err := provider.MeasureUpload(ctx)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Down: DigestSummary(downData, quantiles),
		Up:   DigestSummary(upData, quantiles),
	}, nil
}
