package speedtest

import "github.com/netqual/exporter/internal/prom"

// WriteProm emits both directions, each scoped under its own
// `direction="down"`/`direction="up"` label.
func (r Result) WriteProm(b *prom.Builder) {
	pop := b.WithLabel(prom.MustName("direction"), "down")
	r.Down.WriteProm(b)
	pop()

	pop = b.WithLabel(prom.MustName("direction"), "up")
	r.Up.WriteProm(b)
	pop()
}
