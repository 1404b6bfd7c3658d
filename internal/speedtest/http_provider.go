package speedtest

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// minSampleTime bounds how often a download chunk-read batch is turned
// into a recorded Sample; batching smooths out bursty chunk arrival so a
// single huge read doesn't dominate the quantile digestion.
const minSampleTime = 50 * time.Millisecond

const downloadReadBufferSize = 32 * 1024

// HTTPProvider measures throughput against a pair of plain HTTP(S)
// endpoints: a large download resource and an upload sink, both served
// without content-encoding so measured bytes equal wire bytes.
type HTTPProvider struct {
	DownloadEndpoint string
	UploadEndpoint   string
	DownloadDuration time.Duration
	UploadDuration   time.Duration
	UploadChunkSize  int
}

// client returns an http.Client with compression negotiation disabled,
// so the Content-Length/chunk sizes observed on the wire are exactly the
// bytes this measurement counts.
func (p *HTTPProvider) client() *http.Client {
	return &http.Client{
		Transport: &http.Transport{DisableCompression: true},
	}
}

// MeasureDownload streams GETs against DownloadEndpoint for
// DownloadDuration, restarting the request whenever the server closes
// the stream early, and batches chunk arrivals into samples no finer
// than minSampleTime.
func (p *HTTPProvider) MeasureDownload(ctx context.Context) (Data, error) {
	client := p.client()
	start := time.Now()
	end := start.Add(p.DownloadDuration)
	last := start
	var totalBytes float64
	var samples []Sample
	sampleBytes := 0.0

	deadlineCtx, cancel := context.WithDeadline(ctx, end)
	defer cancel()

	buf := make([]byte, downloadReadBufferSize)
	for {
		req, err := http.NewRequestWithContext(deadlineCtx, http.MethodGet, p.DownloadEndpoint, nil)
		if err != nil {
			return Data{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			if deadlineExceeded(err) {
				break
			}
			return Data{}, err
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return Data{}, fmt.Errorf("speedtest: download endpoint returned status %d", resp.StatusCode)
		}

		streamEnded := false
		for {
			n, readErr := resp.Body.Read(buf)
			if n > 0 {
				bytes := float64(n)
				totalBytes += bytes
				sampleBytes += bytes
				now := time.Now()
				if now.Sub(last) >= minSampleTime {
					samples = append(samples, Sample{Bytes: sampleBytes, Seconds: now.Sub(last).Seconds()})
					sampleBytes = 0
					last = now
				}
			}
			if readErr != nil {
				if readErr == io.EOF {
					streamEnded = true
				} else if deadlineExceeded(readErr) {
					resp.Body.Close()
					goto done
				} else {
					resp.Body.Close()
					return Data{}, readErr
				}
				break
			}
		}
		resp.Body.Close()
		if streamEnded {
			continue
		}
	}
done:
	return Data{
		Samples: samples,
		Total:   Sample{Bytes: totalBytes, Seconds: last.Sub(start).Seconds()},
	}, nil
}

// MeasureUpload issues back-to-back POSTs of exactly UploadChunkSize
// bytes each, generated from a single random payload reused across the
// whole measurement, until UploadDuration elapses.
func (p *HTTPProvider) MeasureUpload(ctx context.Context) (Data, error) {
	payload := make([]byte, 256)
	if _, err := rand.Read(payload); err != nil {
		return Data{}, err
	}

	client := p.client()
	start := time.Now()
	end := start.Add(p.UploadDuration)
	last := start
	var totalBytes float64
	var samples []Sample

	for {
		if time.Now().After(end) {
			break
		}
		ctx, cancel := context.WithDeadline(ctx, end)
		err := p.postOnce(ctx, client, payload)
		cancel()
		if err != nil {
			if deadlineExceeded(err) {
				break
			}
			return Data{}, err
		}

		now := time.Now()
		size := float64(p.UploadChunkSize)
		samples = append(samples, Sample{Bytes: size, Seconds: now.Sub(last).Seconds()})
		totalBytes += size
		last = now
	}

	return Data{
		Samples: samples,
		Total:   Sample{Bytes: totalBytes, Seconds: last.Sub(start).Seconds()},
	}, nil
}

func (p *HTTPProvider) postOnce(ctx context.Context, client *http.Client, payload []byte) error {
	body := newInfinistream(payload, p.UploadChunkSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.UploadEndpoint, body)
	if err != nil {
		return err
	}
	req.ContentLength = int64(p.UploadChunkSize)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("speedtest: upload endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func deadlineExceeded(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
