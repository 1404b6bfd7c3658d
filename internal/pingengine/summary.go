package pingengine

import (
	"math"
	"strconv"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/netqual/exporter/internal/prom"
)

// histMaxValue bounds the HDR histogram at sixty seconds of RTT stored at
// 1/16ms granularity; comfortably above any sane ping timeout while
// keeping the histogram's fixed memory footprint small.
const histMaxValue = 60_000 * 16

// Summary is the digested result of one target's probe samples:
// quantile/mean/stddev/loss plus the observed error taxonomy counts.
type Summary struct {
	Quantiles   []QuantileSample
	MeanMS      float32
	StddevMS    float32
	Count       int
	LossPercent float32
	Errors      map[ErrorKind]int
}

// QuantileSample is one (quantile, value) pair in milliseconds.
type QuantileSample struct {
	Quantile float64
	MS       float32
}

// DigestSummary partitions samples into valid timings and NaN losses,
// counts the observed error kinds, and computes quantiles (via an HDR
// histogram at 1/16ms granularity), mean, population stddev, and loss
// fraction. quantiles must already be sorted ascending.
func DigestSummary(samples []float32, errs []ErrorKind, quantiles []float64) Summary {
	errorBuckets := make(map[ErrorKind]int, 8)
	for _, e := range errs {
		errorBuckets[e]++
	}

	total := len(samples)
	valid := make([]float32, 0, total)
	lost := 0
	for _, s := range samples {
		if math.IsNaN(float64(s)) {
			lost++
		} else {
			valid = append(valid, s)
		}
	}

	if len(valid) == 0 {
		return Summary{
			Quantiles:   nil,
			MeanMS:      float32(math.NaN()),
			StddevMS:    float32(math.NaN()),
			Count:       0,
			LossPercent: 1,
			Errors:      errorBuckets,
		}
	}

	hist := hdrhistogram.New(1, histMaxValue, 3)
	for _, v := range valid {
		hist.RecordValue(int64(math.Round(float64(v) * 16)))
	}

	n := float32(len(valid))
	var sum float32
	for _, v := range valid {
		sum += v
	}
	mean := sum / n

	var sqDiff float32
	for _, v := range valid {
		d := v - mean
		sqDiff += d * d
	}
	stddev := float32(math.Sqrt(float64(sqDiff / n)))

	qSamples := make([]QuantileSample, len(quantiles))
	for i, q := range quantiles {
		qSamples[i] = QuantileSample{
			Quantile: q,
			MS:       float32(hist.ValueAtQuantile(q*100)) / 16,
		}
	}

	return Summary{
		Quantiles:   qSamples,
		MeanMS:      mean,
		StddevMS:    stddev,
		Count:       len(valid),
		LossPercent: float32(lost) / float32(total),
		Errors:      errorBuckets,
	}
}

// WriteProm emits this summary's metrics onto builder, already scoped
// under the target's label (see Result.WriteProm).
func (s Summary) WriteProm(b *prom.Builder) {
	b.AddMetric(prom.MustName("ping_ms"), prom.TypeSummary, "ping to target", func(g *prom.MetricGroup) {
		for _, qs := range s.Quantiles {
			qText := strconv.FormatFloat(qs.Quantile, 'g', -1, 64)
			g.AddLineLabeled(prom.NameQuantile, qText, qs.MS, nil)
		}
		g.WithName(prom.SuffixCount, func() {
			g.AddLine(s.Count, nil)
		})
	})

	b.AddMetric(prom.MustName("ping_mean_ms"), prom.TypeGauge, "mean ping to target", func(g *prom.MetricGroup) {
		g.AddLine(s.MeanMS, nil)
	})

	b.AddMetric(prom.MustName("ping_stddev"), prom.TypeGauge, "ping standard deviation", func(g *prom.MetricGroup) {
		g.AddLine(s.StddevMS, nil)
	})

	b.AddMetric(prom.MustName("packet_loss"), prom.TypeGauge, "packet loss (0 to 1)", func(g *prom.MetricGroup) {
		g.AddLine(s.LossPercent, nil)
	})

	b.AddMetric(prom.MustName("ping_errors"), prom.TypeCounter, "number of ping errors", func(g *prom.MetricGroup) {
		for kind, count := range s.Errors {
			g.AddLineLabeled(prom.MustName("error"), kind.String(), count, nil)
		}
	})
}
