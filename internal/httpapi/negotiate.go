package httpapi

import (
	"mime"
	"sort"
	"strconv"
	"strings"
)

// mediaRange is one weighted entry from a parsed Accept header.
type mediaRange struct {
	typ, subtype string
	q            float64
}

// parseAccept splits header into its comma-separated media ranges,
// highest q first (ties keep header order). A missing or unparseable
// header is treated as "*/*", matching HTTP's default-accept-anything
// semantics.
func parseAccept(header string) []mediaRange {
	if strings.TrimSpace(header) == "" {
		return []mediaRange{{typ: "*", subtype: "*", q: 1}}
	}

	var out []mediaRange
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		full, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}
		typ, subtype, ok := strings.Cut(full, "/")
		if !ok {
			continue
		}
		q := 1.0
		if qs, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		out = append(out, mediaRange{typ: typ, subtype: subtype, q: q})
	}

	if len(out) == 0 {
		return []mediaRange{{typ: "*", subtype: "*", q: 1}}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].q > out[j].q })
	return out
}

// negotiate walks accept in priority order and returns the first member
// of available ("type/subtype" strings) it matches. "*/*" always
// selects preferred, available's first entry. Entries with q=0 are
// explicitly rejected, never matched. Returns ok=false if nothing in
// accept ever matched, i.e. the caller should answer 406.
func negotiate(accept []mediaRange, available []string, preferred string) (string, bool) {
	for _, a := range accept {
		if a.q <= 0 {
			continue
		}
		if a.typ == "*" && a.subtype == "*" {
			return preferred, true
		}
		for _, avail := range available {
			at, as, _ := strings.Cut(avail, "/")
			if a.typ != at {
				continue
			}
			if a.subtype != as && a.subtype != "*" {
				continue
			}
			return avail, true
		}
	}
	return "", false
}
