package speedtest

import (
	"math"
	"sort"
	"strconv"

	"github.com/netqual/exporter/internal/prom"
)

// QuantileSample is one (quantile, bps) pair.
type QuantileSample struct {
	Quantile float64
	BPS      int64
}

// Summary is the digested result of one direction's measurement.
type Summary struct {
	Quantiles []QuantileSample
	MeanBPS   int64
	Stddev    float64
	Sum       int64
	Count     int
}

// DigestSummary sorts data's samples by ascending bps and computes
// duration-weighted quantiles (midpoint convention, C = 1/2), the mean
// from the measurement totals, and the duration-weighted population
// stddev about that mean. quantiles must be sorted ascending; any
// quantile >= 1 that the walk never reaches receives the fastest
// sample's bps. If quantiles is empty or the total duration is zero, no
// quantiles are emitted.
func DigestSummary(data Data, quantiles []float64) Summary {
	samples := append([]Sample(nil), data.Samples...)
	sort.Slice(samples, func(i, j int) bool { return samples[i].BPS() < samples[j].BPS() })

	var quantileSamples []QuantileSample
	if len(quantiles) > 0 && data.Total.Seconds > 0 {
		quantileSamples = make([]QuantileSample, 0, len(quantiles))
		covered := 0.0
		current := 0
	outer:
		for _, sample := range samples {
			mid := covered + sample.Seconds*0.5
			covered += sample.Seconds

			for current < len(quantiles) {
				q := quantiles[current]
				if mid/data.Total.Seconds >= q {
					quantileSamples = append(quantileSamples, QuantileSample{Quantile: q, BPS: sample.BPS()})
					current++
					if current >= len(quantiles) {
						break outer
					}
				} else {
					break
				}
			}
		}
		if current < len(quantiles) && len(samples) > 0 {
			last := samples[len(samples)-1].BPS()
			for _, q := range quantiles[current:] {
				if q >= 1 {
					quantileSamples = append(quantileSamples, QuantileSample{Quantile: q, BPS: last})
				}
			}
		}
	}

	var mean int64
	var meanF float64
	if data.Total.Seconds > 0 {
		mean = data.Total.BPS()
		meanF = data.Total.BPSFloat()
	}

	var stddev float64
	if data.Total.Seconds > 0 {
		var weightedSqDiff float64
		for _, sample := range samples {
			diff := meanF - sample.BPSFloat()
			weightedSqDiff += sample.Seconds * (diff * diff)
		}
		stddev = math.Sqrt(weightedSqDiff / data.Total.Seconds)
	}

	var sum int64
	for _, sample := range samples {
		sum += sample.BPS()
	}

	return Summary{
		Quantiles: quantileSamples,
		MeanBPS:   mean,
		Stddev:    stddev,
		Sum:       sum,
		Count:     len(samples),
	}
}

// WriteProm emits this summary's metrics onto builder, scoped under a
// `direction="down"`/`direction="up"` label pushed by the caller.
func (s Summary) WriteProm(b *prom.Builder) {
	b.AddMetric(prom.MustName("network_speed_bps"), prom.TypeSummary, "network speed in bits per second", func(g *prom.MetricGroup) {
		for _, qs := range s.Quantiles {
			qText := strconv.FormatFloat(qs.Quantile, 'g', -1, 64)
			g.AddLineLabeled(prom.NameQuantile, qText, qs.BPS, nil)
		}
		g.WithName(prom.SuffixSum, func() {
			g.AddLine(s.Sum, nil)
		})
		g.WithName(prom.SuffixCount, func() {
			g.AddLine(s.Count, nil)
		})
	})

	b.AddMetric(prom.MustName("network_speed_mean_bps"), prom.TypeGauge, "mean network speed in bits per second", func(g *prom.MetricGroup) {
		g.AddLine(s.MeanBPS, nil)
	})

	b.AddMetric(prom.MustName("network_speed_stddev"), prom.TypeGauge, "network speed standard deviation", func(g *prom.MetricGroup) {
		g.AddLine(s.Stddev, nil)
	})
}
