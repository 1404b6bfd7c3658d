package pingengine

import (
	"encoding/json"
	"math"
)

// resultJSON mirrors Result for pretty-printed JSON output: whichever
// of Summary/Error is unset is omitted from the document.
type resultJSON struct {
	Target  Target   `json:"target"`
	Summary *Summary `json:"summary,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{Target: r.Target, Summary: r.Summary, Error: r.Error})
}

// summaryJSON mirrors Summary, rendering quantiles as [q, ms] pairs and
// the error taxonomy as a plain kind-string-keyed map. A NaN mean or
// stddev (no valid samples) is rendered as null.
type summaryJSON struct {
	Quantiles   [][2]float64   `json:"quantiles"`
	MeanMS      *float32       `json:"mean_ms"`
	StddevMS    *float32       `json:"stddev"`
	Count       int            `json:"count"`
	LossPercent float32        `json:"loss_percent"`
	Errors      map[string]int `json:"errors"`
}

func (s Summary) MarshalJSON() ([]byte, error) {
	quantiles := make([][2]float64, len(s.Quantiles))
	for i, qs := range s.Quantiles {
		quantiles[i] = [2]float64{qs.Quantile, float64(qs.MS)}
	}
	errors := make(map[string]int, len(s.Errors))
	for kind, count := range s.Errors {
		errors[kind.String()] = count
	}
	return json.Marshal(summaryJSON{
		Quantiles:   quantiles,
		MeanMS:      finiteOrNil(s.MeanMS),
		StddevMS:    finiteOrNil(s.StddevMS),
		Count:       s.Count,
		LossPercent: s.LossPercent,
		Errors:      errors,
	})
}

// finiteOrNil maps NaN to nil, since encoding/json refuses to encode NaN.
func finiteOrNil(v float32) *float32 {
	if math.IsNaN(float64(v)) {
		return nil
	}
	return &v
}
