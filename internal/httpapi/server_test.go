package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/netqual/exporter/internal/config"
	"github.com/netqual/exporter/internal/pingengine"
	"github.com/netqual/exporter/internal/speedtest"
)

func testConfig(t *testing.T, downloadURL, uploadURL string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Ping.Servers = []pingengine.Target{pingengine.ParseTarget("127.0.0.1")}
	cfg.Ping.Samples = 0
	cfg.Speedtest.Provider = speedtest.ProviderHTTP
	cfg.Speedtest.DownloadEndpoint = downloadURL
	cfg.Speedtest.UploadEndpoint = uploadURL
	cfg.Speedtest.DownloadDuration = config.NewDuration(30 * time.Millisecond)
	cfg.Speedtest.UploadDuration = config.NewDuration(30 * time.Millisecond)
	cfg.Speedtest.UploadChunkSize = 1024
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write(make([]byte, 4096))
		case http.MethodPost:
			io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(backend.Close)

	cfg := testConfig(t, backend.URL, backend.URL)
	s, err := NewServer(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func TestHandlePingRendersPrometheusText(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Accept", "text/plain")

	resp, err := s.app.Test(req, int((5 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain; version=0.0.4; charset=utf-8" {
		t.Fatalf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Fatalf("expected non-empty body")
	}
}

func TestHandlePingRendersJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Accept", "application/json")

	resp, err := s.app.Test(req, int((5 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestHandlePingRejectsUnsupportedAccept(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Accept", "application/xml")

	resp, err := s.app.Test(req, int((5 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotAcceptable {
		t.Fatalf("status = %d, want 406", resp.StatusCode)
	}
}

func TestHandleSpeedtestRendersBothDirections(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/speedtest", nil)
	req.Header.Set("Accept", "text/plain")

	resp, err := s.app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	for _, want := range []string{"network_speed_mean_bps", `direction="down"`, `direction="up"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in body:\n%s", want, text)
		}
	}

	// The configured 30ms download duration is below minSampleTime, so
	// the download's Total.Seconds can legitimately land on 0; the
	// mean must gate on that rather than emit a bytes/0 sentinel.
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "network_speed_mean_bps{") {
			if strings.Contains(line, "-9223372036854775808") {
				t.Fatalf("network_speed_mean_bps emitted the int64 division-by-zero sentinel:\n%s", line)
			}
		}
	}
}

func TestHandleIndexPrefersPlainForCurl(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	req.Header.Set("Accept", "*/*")

	resp, err := s.app.Test(req, 2000)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("Content-Type = %q, want text/plain for curl UA", ct)
	}
}
