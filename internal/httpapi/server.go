// Package httpapi wires the ping and throughput engines to a scrape:
// routing, Accept-header content negotiation, and Prometheus
// text/JSON rendering. The engines and the exposition builder do the
// real work; this package only decides which representation to hand
// back and turns engine errors into HTTP status codes.
package httpapi

import (
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/netqual/exporter/internal/config"
	"github.com/netqual/exporter/internal/pingengine"
	"github.com/netqual/exporter/internal/selfstats"
	"github.com/netqual/exporter/internal/speedtest"
)

const (
	httpReadTimeout  = 10 * time.Second
	httpWriteTimeout = 5 * time.Minute // a /speedtest scrape can run as long as both durations combined
	httpIdleTimeout  = 60 * time.Second
)

// Server is the exporter's HTTP surface: GET /, /ping, /speedtest.
type Server struct {
	app    *fiber.App
	cfg    config.Config
	logger *zap.Logger

	resolver      *net.Resolver
	speedProvider speedtest.Provider
	self          *selfstats.Collector
}

// NewServer builds the Fiber app and its routes. The DNS resolver and
// speedtest provider are constructed once here and shared read-only
// across every request; all other measurement state is request-scoped.
func NewServer(cfg config.Config, logger *zap.Logger) (*Server, error) {
	provider, err := speedtest.NewProvider(speedtest.Config{
		Kind:             cfg.Speedtest.Provider,
		DownloadEndpoint: cfg.Speedtest.DownloadEndpoint,
		UploadEndpoint:   cfg.Speedtest.UploadEndpoint,
		DownloadDuration: cfg.Speedtest.DownloadDuration.Duration,
		UploadDuration:   cfg.Speedtest.UploadDuration.Duration,
		UploadChunkSize:  cfg.Speedtest.UploadChunkSize,
		Quantiles:        cfg.Speedtest.Quantiles,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		resolver:      &net.Resolver{},
		speedProvider: provider,
		self:          selfstats.New(),
	}

	app := fiber.New(fiber.Config{
		StrictRouting: false,
		ReadTimeout:   httpReadTimeout,
		WriteTimeout:  httpWriteTimeout,
		IdleTimeout:   httpIdleTimeout,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Format: "${time} ${status} ${method} ${path} ${latency}\n"}))
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))
	app.Use(compress.New())

	app.Get("/", s.handleIndex)
	app.Get("/ping", s.handlePing)
	app.Get("/speedtest", s.handleSpeedtest)

	s.app = app
	return s, nil
}

// Start begins listening on address. It blocks until the listener
// stops (normally via Stop, called from signal handling in main).
func (s *Server) Start(address string) error {
	s.logger.Info("http server listening", zap.String("address", address))
	return s.app.Listen(address)
}

// Stop gracefully drains in-flight requests and shuts the server down.
func (s *Server) Stop() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

// pingOptions builds this scrape's pingengine.Options from the static
// configuration.
func (s *Server) pingOptions() pingengine.Options {
	return pingengine.Options{
		Targets:     s.cfg.Ping.Servers,
		Delay:       s.cfg.Ping.Delay.Duration,
		Samples:     s.cfg.Ping.Samples,
		PayloadSize: s.cfg.Ping.PayloadSize,
		Quantiles:   s.cfg.Ping.Quantiles,
	}
}
