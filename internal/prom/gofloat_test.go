package prom

import (
	"math"
	"testing"
)

func TestGoFloatFloat32(t *testing.T) {
	cases := []struct {
		name string
		bits uint32
		want string
	}{
		{"one", math.Float32bits(1), "+0x1.p0"},
		{"large", 0x7f000000, "+0x1.p127"},
		{"small", math.Float32bits(0.15625), "+0x1.4p-3"},
		{"small_negative", math.Float32bits(-0.15625), "-0x1.4p-3"},
		{"subnormal", 1, "+0x0.000002p-127"},
		{"nan", 0x7f80cafe, "NaN"},
		{"zero", math.Float32bits(0), "0"},
		{"inf", 0x7f800000, "+Inf"},
		{"neg_inf", 0xff800000, "-Inf"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GoFloat(math.Float32frombits(c.bits))
			if got != c.want {
				t.Errorf("GoFloat(bits=%#x) = %q, want %q", c.bits, got, c.want)
			}
		})
	}
}

func TestGoFloatFloat64(t *testing.T) {
	cases := []struct {
		name string
		bits uint64
		want string
	}{
		{"one", math.Float64bits(1), "+0x1.p0"},
		{"large", 0x7fe0000000000000, "+0x1.p1023"},
		{"small", math.Float64bits(0.15625), "+0x1.4p-3"},
		{"small_negative", math.Float64bits(-0.15625), "-0x1.4p-3"},
		{"subnormal", 1, "+0x0.0000000000001p-1023"},
		{"nan", 0x7ff00000cafebabe, "NaN"},
		{"zero", math.Float64bits(0), "0"},
		{"inf", 0x7ff0000000000000, "+Inf"},
		{"neg_inf", 0xfff0000000000000, "-Inf"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GoFloat(math.Float64frombits(c.bits))
			if got != c.want {
				t.Errorf("GoFloat(bits=%#x) = %q, want %q", c.bits, got, c.want)
			}
		})
	}
}

func TestGoFloatIntsAndBool(t *testing.T) {
	if got := GoFloat(true); got != "1" {
		t.Errorf("GoFloat(true) = %q, want 1", got)
	}
	if got := GoFloat(false); got != "0" {
		t.Errorf("GoFloat(false) = %q, want 0", got)
	}
	if got := GoFloat(42); got != "42" {
		t.Errorf("GoFloat(42) = %q, want 42", got)
	}
	if got := GoFloat(uint64(7)); got != "7" {
		t.Errorf("GoFloat(uint64(7)) = %q, want 7", got)
	}
}
