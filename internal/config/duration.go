package config

import "time"

// Duration wraps time.Duration with text (de)serialization through
// time.ParseDuration/Duration.String, so TOML keys like delay = "1s" or
// download_duration = "30s" parse with Go's native ms/s/m/h syntax.
type Duration struct {
	time.Duration
}

func NewDuration(d time.Duration) Duration { return Duration{d} }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
