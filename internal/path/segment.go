package path

import (
	"errors"
	"strconv"
	"strings"
)

// Segment is one level of a BIP32 path.
type Segment struct {
	Index    uint32
	Hardened bool
}

// Child returns the 32-bit BIP32 child number.
func (s Segment) Child() uint32 {
	if s.Hardened {
		return s.Index + HardenedOffset
	}
	return s.Index
}

func (s Segment) String() string {
	out := strconv.FormatUint(uint64(s.Index), 10)
	if s.Hardened {
		out += "'"
	}
	return out
}

// SegmentFromChild splits a 32-bit child number into index and hardened flag.
func SegmentFromChild(child uint32) Segment {
	if child >= HardenedOffset {
		return Segment{Index: child - HardenedOffset, Hardened: true}
	}
	return Segment{Index: child}
}

// ParseSegments parses an arbitrary BIP32 path such as m/0'/1/2h.
// A bare "m" yields no segments.
func ParseSegments(s string) ([]Segment, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if parts[0] != "m" {
		return nil, invalid(s, "path must start with m")
	}
	if len(parts)-1 > MaxDepth {
		return nil, invalid(s, "deeper than %d levels", MaxDepth)
	}

	segs := make([]Segment, 0, len(parts)-1)
	for i, part := range parts[1:] {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, invalid(s, "level %d: %v", i+1, err)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// FormatSegments renders segments as m/a/b'/c.
func FormatSegments(segs []Segment) string {
	var b strings.Builder
	b.WriteByte('m')
	for _, seg := range segs {
		b.WriteByte('/')
		b.WriteString(seg.String())
	}
	return b.String()
}

// parseSegment accepts a decimal index below 2^31 with an optional
// hardened marker: ' or h or H.
func parseSegment(part string) (Segment, error) {
	var seg Segment
	if n := len(part); n > 0 {
		switch part[n-1] {
		case '\'', 'h', 'H':
			seg.Hardened = true
			part = part[:n-1]
		}
	}
	if part == "" {
		return seg, errEmptySegment
	}
	for i := 0; i < len(part); i++ {
		if part[i] < '0' || part[i] > '9' {
			return seg, errNotNumeric
		}
	}

	v, err := strconv.ParseUint(part, 10, 32)
	if err != nil || v >= uint64(HardenedOffset) {
		return seg, errOutOfRange
	}
	seg.Index = uint32(v)
	return seg, nil
}

//nolint:gochecknoglobals // segment parse reasons
var (
	errEmptySegment = errors.New("empty segment")
	errNotNumeric   = errors.New("segment is not a decimal number")
	errOutOfRange   = errors.New("index must be below 2^31")
)
