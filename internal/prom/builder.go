package prom

import (
	"strconv"
	"strings"
	"time"
)

// MetricType is the Prometheus `# TYPE` value for a metric group.
type MetricType int

const (
	TypeCounter MetricType = iota
	TypeGauge
	TypeHistogram
	TypeSummary
	TypeUntyped
)

func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	case TypeSummary:
		return "summary"
	default:
		return "untyped"
	}
}

// group holds the rendered `# HELP`/`# TYPE` header and the accumulated
// sample lines for one fully-qualified metric name.
type group struct {
	help  string
	lines []string
}

// Builder accumulates a complete Prometheus text-exposition document for a
// single scrape request. It preserves first-seen metric order (so output
// is deterministic across scrapes with the same code path) and
// deduplicates `# HELP`/`# TYPE` headers per metric name.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	arena   *Arena
	order   []Name
	entries map[Name]*group
	scratch strings.Builder

	Labels LabelStack
	Name   NameStack
}

// NewBuilder returns an empty Builder backed by a fresh Arena sized to
// capacity bytes.
func NewBuilder(capacity int) *Builder {
	return &Builder{
		arena:   NewArena(capacity),
		entries: make(map[Name]*group),
	}
}

// WithLabel pushes a label onto the active label scope and returns the
// matching pop. Callers defer the pop so the scope unwinds on every exit
// path, panics included.
func (b *Builder) WithLabel(name Name, value string) func() {
	b.Labels.Push(name, value)
	return func() { b.Labels.Pop() }
}

// WithName pushes a name component onto the active fully-qualified name
// and returns the matching pop.
func (b *Builder) WithName(name Name) func() {
	b.Name.Push(name)
	return func() { b.Name.Pop() }
}

// MetricGroup is a scoped handle for adding sample lines to one metric
// name, passed to the callback given to AddMetric.
type MetricGroup struct {
	b    *Builder
	name Name
}

// AddMetric pushes metricSuffix onto the current name, ensures a
// `# HELP`/`# TYPE` header exists for the resulting fully-qualified name
// (writing one on first use only), runs fn with a MetricGroup scoped to
// that name, then pops the name back off. helpText's embedded newlines
// are folded to spaces, matching Prometheus's single-line HELP
// requirement.
func (b *Builder) AddMetric(metricSuffix Name, metricType MetricType, helpText string, fn func(*MetricGroup)) {
	pop := b.WithName(metricSuffix)
	defer pop()

	name := b.Name.AsName()
	if _, ok := b.entries[name]; !ok {
		b.scratch.Reset()
		b.scratch.WriteString("# HELP ")
		b.scratch.WriteString(string(name))
		b.scratch.WriteByte(' ')
		writeFoldedHelpText(&b.scratch, helpText)
		b.scratch.WriteString("\n# TYPE ")
		b.scratch.WriteString(string(name))
		b.scratch.WriteByte(' ')
		b.scratch.WriteString(metricType.String())
		b.scratch.WriteByte('\n')

		help := b.arena.Intern(b.scratch.String())
		b.entries[name] = &group{help: help}
		b.order = append(b.order, name)
	}

	fn(&MetricGroup{b: b, name: name})
}

func writeFoldedHelpText(out *strings.Builder, helpText string) {
	for i := 0; i < len(helpText); i++ {
		if helpText[i] == '\n' {
			out.WriteByte(' ')
		} else {
			out.WriteByte(helpText[i])
		}
	}
}

// AddLine appends a sample line using the builder's currently pushed
// labels, with value rendered via GoFloat. If at is non-nil, its Unix
// millisecond timestamp is appended per the Prometheus exposition
// format.
func (g *MetricGroup) AddLine(value any, at *time.Time) {
	g.addLineEntry(g.b.Labels.Render(), value, at)
}

// AddLineLabeled is AddLine with one additional label pushed for the
// duration of this call only.
func (g *MetricGroup) AddLineLabeled(label Name, labelValue string, value any, at *time.Time) {
	pop := g.b.WithLabel(label, labelValue)
	labels := g.b.Labels.Render()
	pop()
	g.addLineEntry(labels, value, at)
}

func (g *MetricGroup) addLineEntry(labels string, value any, at *time.Time) {
	g.b.scratch.Reset()
	g.b.scratch.WriteString(labels)
	g.b.scratch.WriteByte(' ')
	g.b.scratch.WriteString(GoFloat(value))
	if at != nil {
		g.b.scratch.WriteByte(' ')
		g.b.scratch.WriteString(strconv.FormatInt(at.UnixMilli(), 10))
	}
	g.b.scratch.WriteByte('\n')

	line := g.b.arena.Intern(g.b.scratch.String())

	// The fully-qualified name is read live off the builder's name stack,
	// not g.name, so a WithName suffix pushed inside the AddMetric body
	// (e.g. _sum/_count) routes its lines into their own group instead of
	// the parent metric's.
	name := g.b.Name.AsName()
	entry, ok := g.b.entries[name]
	if !ok {
		entry = &group{}
		g.b.entries[name] = entry
		g.b.order = append(g.b.order, name)
	}
	entry.lines = append(entry.lines, line)
}

// WithLabel pushes a label for the duration of fn and pops it afterward,
// even on panic.
func (g *MetricGroup) WithLabel(name Name, value string, fn func()) {
	pop := g.b.WithLabel(name, value)
	defer pop()
	fn()
}

// WithName pushes a name component for the duration of fn and pops it
// afterward, even on panic.
func (g *MetricGroup) WithName(name Name, fn func()) {
	pop := g.b.WithName(name)
	defer pop()
	fn()
}

// String renders the full exposition document: each metric's HELP/TYPE
// header in first-seen order, followed by its accumulated lines prefixed
// with the metric's fully-qualified name. Metrics with no recorded lines
// are omitted entirely.
func (b *Builder) String() string {
	var out strings.Builder
	for _, name := range b.order {
		g := b.entries[name]
		if len(g.lines) == 0 {
			continue
		}
		out.WriteString(g.help)
		for _, line := range g.lines {
			out.WriteString(string(name))
			out.WriteString(line)
		}
	}
	return out.String()
}

// Reset clears the builder so it can be reused for another scrape,
// releasing the arena's storage for reuse as well.
func (b *Builder) Reset() {
	b.arena.Reset()
	b.order = b.order[:0]
	for k := range b.entries {
		delete(b.entries, k)
	}
	b.scratch.Reset()
}
