// Package speedtest measures download/upload throughput against a
// configured HTTP endpoint and digests the resulting samples into
// duration-weighted quantile/mean/stddev summaries.
package speedtest

// Sample is one bandwidth observation: bytes transferred over a span of
// wall-clock time.
type Sample struct {
	Bytes   float64
	Seconds float64
}

// BPS returns the sample's bits per second, truncated to an integer.
func (s Sample) BPS() int64 {
	return int64(s.Bytes/s.Seconds) * 8
}

// BPSFloat returns bits per second at full precision, used for
// stddev weighting.
func (s Sample) BPSFloat() float64 {
	return s.Bytes / s.Seconds * 8
}

// Add combines two samples by summing their bytes and durations.
func (s Sample) Add(o Sample) Sample {
	return Sample{Bytes: s.Bytes + o.Bytes, Seconds: s.Seconds + o.Seconds}
}

// Data is the raw result of one direction's measurement: the
// chunk-arrival-ordered samples plus the running total across the whole
// measurement window.
type Data struct {
	Samples []Sample
	Total   Sample
}
