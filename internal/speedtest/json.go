package speedtest

import "encoding/json"

type summaryJSON struct {
	Quantiles [][2]float64 `json:"quantiles"`
	Mean      int64        `json:"mean"`
	Stddev    float64      `json:"stddev"`
	Sum       int64        `json:"sum"`
	Count     int          `json:"count"`
}

// MarshalJSON renders quantiles as [q, bps] pairs, matching the ping
// summary's pair convention.
func (s Summary) MarshalJSON() ([]byte, error) {
	quantiles := make([][2]float64, len(s.Quantiles))
	for i, qs := range s.Quantiles {
		quantiles[i] = [2]float64{qs.Quantile, float64(qs.BPS)}
	}
	return json.Marshal(summaryJSON{
		Quantiles: quantiles,
		Mean:      s.MeanBPS,
		Stddev:    s.Stddev,
		Sum:       s.Sum,
		Count:     s.Count,
	})
}
