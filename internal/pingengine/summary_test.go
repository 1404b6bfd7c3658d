package pingengine

import (
	"math"
	"strings"
	"testing"

	"github.com/netqual/exporter/internal/prom"
)

func TestDigestSummaryPartitionsLossAndComputesStats(t *testing.T) {
	nan := float32(math.NaN())
	samples := []float32{nan, 10, 20, nan, 30}
	quantiles := []float64{0, 0.5, 1}

	got := DigestSummary(samples, nil, quantiles)

	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
	if math.Abs(float64(got.LossPercent)-0.4) > 1e-6 {
		t.Errorf("LossPercent = %v, want 0.4", got.LossPercent)
	}
	if math.Abs(float64(got.MeanMS)-20) > 1e-4 {
		t.Errorf("MeanMS = %v, want 20", got.MeanMS)
	}
	if math.Abs(float64(got.StddevMS)-8.164966) > 1e-3 {
		t.Errorf("StddevMS = %v, want ~8.164966", got.StddevMS)
	}

	var median float32
	found := false
	for _, qs := range got.Quantiles {
		if qs.Quantile == 0.5 {
			median = qs.MS
			found = true
		}
	}
	if !found {
		t.Fatal("expected a 0.5 quantile entry")
	}
	if math.Abs(float64(median)-20) > 1.0/16 {
		t.Errorf("median = %v, want ~20 (±1/16)", median)
	}
}

func TestDigestSummaryAllLostSamples(t *testing.T) {
	nan := float32(math.NaN())
	samples := []float32{nan, nan, nan}

	got := DigestSummary(samples, nil, []float64{0, 0.5, 1})

	if got.Count != 0 {
		t.Errorf("Count = %d, want 0", got.Count)
	}
	if got.LossPercent != 1 {
		t.Errorf("LossPercent = %v, want 1", got.LossPercent)
	}
	if len(got.Quantiles) != 0 {
		t.Errorf("Quantiles = %v, want empty", got.Quantiles)
	}
	if !math.IsNaN(float64(got.MeanMS)) {
		t.Errorf("MeanMS = %v, want NaN", got.MeanMS)
	}
}

func TestDigestSummaryZeroSamples(t *testing.T) {
	got := DigestSummary(nil, nil, []float64{0, 0.5, 1})

	if got.Count != 0 {
		t.Errorf("Count = %d, want 0", got.Count)
	}
	if got.LossPercent != 1 {
		t.Errorf("LossPercent = %v, want 1", got.LossPercent)
	}
	if len(got.Quantiles) != 0 {
		t.Errorf("Quantiles = %v, want empty", got.Quantiles)
	}
}

func TestSummaryWritePromEmitsCountUnderItsOwnName(t *testing.T) {
	s := Summary{
		Quantiles: []QuantileSample{{Quantile: 0.5, MS: 12.5}},
		MeanMS:    12.5,
		StddevMS:  0,
		Count:     3,
		Errors:    map[ErrorKind]int{},
	}

	b := prom.NewBuilder(256)
	s.WriteProm(b)
	out := b.String()

	if !strings.Contains(out, "ping_ms_count 3\n") {
		t.Errorf("expected a ping_ms_count line, got:\n%s", out)
	}
	if strings.Contains(out, "ping_ms 3\n") {
		t.Errorf("count value leaked onto the ping_ms group:\n%s", out)
	}
}

func TestDigestSummaryCountsErrorKinds(t *testing.T) {
	errs := []ErrorKind{Timeout, Timeout, NetworkError}
	got := DigestSummary([]float32{10}, errs, nil)

	if got.Errors[Timeout] != 2 {
		t.Errorf("Errors[Timeout] = %d, want 2", got.Errors[Timeout])
	}
	if got.Errors[NetworkError] != 1 {
		t.Errorf("Errors[NetworkError] = %d, want 1", got.Errors[NetworkError])
	}
}
