package httpapi

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/netqual/exporter/internal/pingengine"
	"github.com/netqual/exporter/internal/prom"
	"github.com/netqual/exporter/internal/speedtest"
)

// handleIndex serves the landing page, preferring text/plain when the
// User-Agent identifies a command-line client (curl, Wget) and
// text/html otherwise.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	ua := c.Get(fiber.HeaderUserAgent)
	isCLI := strings.HasPrefix(ua, "curl/") || strings.HasPrefix(ua, "Wget/")

	available := []string{"text/html", "text/plain"}
	if isCLI {
		available = []string{"text/plain", "text/html"}
	}

	chosen, ok := negotiate(parseAccept(c.Get(fiber.HeaderAccept)), available, available[0])
	if !ok {
		return c.Status(fiber.StatusNotAcceptable).SendString("")
	}

	switch chosen {
	case "text/html":
		c.Set(fiber.HeaderContentType, "text/html; charset=utf-8")
		return c.SendString(indexHTML)
	default:
		c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		if strings.HasPrefix(ua, "curl/") {
			return c.SendString(indexANSI)
		}
		return c.SendString(indexPlain)
	}
}

var scrapeAvailable = []string{"text/plain", "application/json"}

// handlePing runs the ping engine and renders the result as
// negotiated: Prometheus text or pretty JSON.
func (s *Server) handlePing(c *fiber.Ctx) error {
	chosen, ok := negotiate(parseAccept(c.Get(fiber.HeaderAccept)), scrapeAvailable, "text/plain")
	if !ok {
		return c.Status(fiber.StatusNotAcceptable).SendString("")
	}

	results, err := pingengine.Run(c.Context(), s.resolver, s.pingOptions())
	if err != nil {
		return writeError(c, err)
	}

	switch chosen {
	case "application/json":
		body, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/json")
		return c.Send(body)
	default:
		b := prom.NewBuilder(4096)
		for _, r := range results {
			r.WriteProm(b)
		}
		s.self.WriteProm(b)
		c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4; charset=utf-8")
		return c.SendString(b.String())
	}
}

// handleSpeedtest runs the throughput engine and renders the
// two-direction result as negotiated: Prometheus text or pretty JSON.
func (s *Server) handleSpeedtest(c *fiber.Ctx) error {
	chosen, ok := negotiate(parseAccept(c.Get(fiber.HeaderAccept)), scrapeAvailable, "text/plain")
	if !ok {
		return c.Status(fiber.StatusNotAcceptable).SendString("")
	}

	result, err := speedtest.Run(c.Context(), s.speedProvider, s.cfg.Speedtest.Quantiles)
	if err != nil {
		return writeError(c, err)
	}

	switch chosen {
	case "application/json":
		body, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/json")
		return c.Send(body)
	default:
		b := prom.NewBuilder(4096)
		result.WriteProm(b)
		s.self.WriteProm(b)
		c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4; charset=utf-8")
		return c.SendString(b.String())
	}
}

// writeError renders a per-scrape measurement failure as a 500 with
// the error's message as a plain-text body.
func writeError(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
}
