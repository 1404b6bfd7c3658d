package speedtest

import (
	"math"
	"strings"
	"testing"

	"github.com/netqual/exporter/internal/prom"
)

func TestDigestSummaryWeightedQuantiles(t *testing.T) {
	// Two one-second samples at very different speeds: 1 MB/s then
	// 10 MB/s. Their midpoints sit at 0.25 and 0.75 of the total
	// duration, so quantile 0 lands on the first (slower) sample while
	// the median and the tail quantile land on the second.
	data := Data{
		Samples: []Sample{
			{Bytes: 1_000_000, Seconds: 1},
			{Bytes: 10_000_000, Seconds: 1},
		},
		Total: Sample{Bytes: 11_000_000, Seconds: 2},
	}

	got := DigestSummary(data, []float64{0, 0.5, 1})

	if got.Count != 2 {
		t.Fatalf("Count = %d, want 2", got.Count)
	}
	if len(got.Quantiles) != 3 {
		t.Fatalf("Quantiles = %v, want 3 entries", got.Quantiles)
	}
	if got.Quantiles[0].BPS != data.Samples[0].BPS() {
		t.Errorf("q0 bps = %d, want the slower sample's bps %d", got.Quantiles[0].BPS, data.Samples[0].BPS())
	}
	if got.Quantiles[2].BPS != data.Samples[1].BPS() {
		t.Errorf("q1.0 bps = %d, want the faster sample's bps %d", got.Quantiles[2].BPS, data.Samples[1].BPS())
	}

	wantMean := data.Total.BPS()
	if got.MeanBPS != wantMean {
		t.Errorf("MeanBPS = %d, want %d", got.MeanBPS, wantMean)
	}
}

func TestDigestSummaryZeroDurationYieldsNoQuantiles(t *testing.T) {
	// Bytes > 0 with Seconds == 0 is the realistic case: a batching
	// window short enough that no sample ever crosses minSampleTime
	// still accumulates bytes into Total while Total.Seconds stays 0.
	data := Data{Total: Sample{Bytes: 12345, Seconds: 0}}
	got := DigestSummary(data, []float64{0, 0.5, 1})

	if len(got.Quantiles) != 0 {
		t.Errorf("Quantiles = %v, want empty for zero-duration total", got.Quantiles)
	}
	if got.Count != 0 {
		t.Errorf("Count = %d, want 0", got.Count)
	}
	if got.MeanBPS != 0 {
		t.Errorf("MeanBPS = %d, want 0 for zero-duration total", got.MeanBPS)
	}
}

func TestSummaryWritePromEmitsSumAndCountUnderTheirOwnNames(t *testing.T) {
	s := Summary{
		Quantiles: []QuantileSample{{Quantile: 0.5, BPS: 8000}},
		MeanBPS:   8000,
		Sum:       16000,
		Count:     2,
	}

	b := prom.NewBuilder(256)
	s.WriteProm(b)
	out := b.String()

	if !strings.Contains(out, "network_speed_bps_sum 16000\n") {
		t.Errorf("expected a network_speed_bps_sum line, got:\n%s", out)
	}
	if !strings.Contains(out, "network_speed_bps_count 2\n") {
		t.Errorf("expected a network_speed_bps_count line, got:\n%s", out)
	}
	if strings.Contains(out, "network_speed_bps 16000\n") || strings.Contains(out, "network_speed_bps 2\n") {
		t.Errorf("sum/count values leaked onto the network_speed_bps group:\n%s", out)
	}
}

func TestDigestSummaryStddevZeroForUniformSpeed(t *testing.T) {
	data := Data{
		Samples: []Sample{
			{Bytes: 1_000_000, Seconds: 1},
			{Bytes: 1_000_000, Seconds: 1},
		},
		Total: Sample{Bytes: 2_000_000, Seconds: 2},
	}

	got := DigestSummary(data, nil)
	if math.Abs(got.Stddev) > 1e-6 {
		t.Errorf("Stddev = %v, want ~0 for uniform-speed samples", got.Stddev)
	}
}
