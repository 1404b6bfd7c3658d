package pingengine

import (
	"context"
	"crypto/rand"
	"math"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/netqual/exporter/internal/prom"
)

// Options configures one scrape's worth of probing.
type Options struct {
	Targets     []Target
	Delay       time.Duration
	Samples     int
	PayloadSize int
	Quantiles   []float64
}

// Result is one target's outcome for a scrape: either a digested
// Summary, or an Error describing why probing could not even start.
type Result struct {
	Target  Target
	Summary *Summary
	Error   string
}

// Run resolves and probes every target in opts.Targets concurrently,
// returning one Result per target in the same order they were
// configured. A single random payload is generated once and shared
// read-only across every probe.
func Run(ctx context.Context, resolver *net.Resolver, opts Options) ([]Result, error) {
	payload := make([]byte, opts.PayloadSize)
	if _, err := rand.Read(payload); err != nil {
		return nil, err
	}

	results := make([]Result, len(opts.Targets))
	var wg sync.WaitGroup
	for i, target := range opts.Targets {
		i, target := i, target
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = probeTarget(ctx, resolver, target, opts, payload)
		}()
	}
	wg.Wait()
	return results, nil
}

func probeTarget(ctx context.Context, resolver *net.Resolver, target Target, opts Options, payload []byte) Result {
	addr, err := target.Resolve(ctx, resolver)
	if err != nil {
		return Result{Target: target, Error: err.Error()}
	}

	samples, errs := samplePings(ctx, addr, opts.Samples, opts.Delay, payload)
	summary := DigestSummary(samples, errs, opts.Quantiles)
	return Result{Target: target, Summary: &summary}
}

// samplePings sends opts.Samples echo requests at opts.Delay intervals,
// each from its own child goroutine so in-flight requests overlap. The
// sequence number is captured before the goroutine is spawned, so the
// result slot a reply lands in never depends on arrival order.
func samplePings(ctx context.Context, addr netip.Addr, samples int, delay time.Duration, payload []byte) ([]float32, []ErrorKind) {
	if samples == 0 {
		return nil, nil
	}

	c, err := newClient(addr)
	if err != nil {
		errs := make([]ErrorKind, samples)
		for i := range errs {
			errs[i] = IOErrorKind(err.Error())
		}
		return nanSamples(samples), errs
	}

	results := nanSamples(samples)
	var errs []ErrorKind
	var mu sync.Mutex
	var wg sync.WaitGroup

	for seq := 0; seq < samples; seq++ {
		seq := seq
		wg.Add(1)
		go func() {
			defer wg.Done()
			rtt, kind, err := c.ping(ctx, seq, payload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, kind)
				return
			}
			results[seq] = float32(rtt.Seconds() * 1000)
		}()

		if seq < samples-1 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}
	wg.Wait()
	return results, errs
}

func nanSamples(n int) []float32 {
	nan := float32(math.NaN())
	out := make([]float32, n)
	for i := range out {
		out[i] = nan
	}
	return out
}

// WriteProm emits this target's result, scoped under its `target` label.
func (r Result) WriteProm(b *prom.Builder) {
	pop := b.WithLabel(prom.MustName("target"), r.Target.String())
	defer pop()

	if r.Summary != nil {
		r.Summary.WriteProm(b)
	}
	if r.Error != "" {
		b.AddMetric(prom.MustName("ping_error"), prom.TypeCounter, "ping error", func(g *prom.MetricGroup) {
			g.AddLineLabeled(prom.MustName("error"), r.Error, 1, nil)
		})
	}
}
