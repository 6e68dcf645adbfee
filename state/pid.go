package state

import (
	"cmp"
	"strconv"
	"strings"
)

// PID is a provider identifier. External PIDs are globally scoped (ASN style),
// internal ones are numbered by the ISP itself. ISP is always set, even for
// external PIDs.
type PID struct {
	Num      uint32
	External bool
	ISP      string
}

func NewPID(num uint32, external bool, isp string) PID {
	return PID{Num: num, External: external, ISP: isp}
}

// ParsePID parses the canonical form "<num>.<i|e>.<isp>". Only the first two
// dots separate fields, the ISP label keeps any further dots.
func ParsePID(s string) (PID, error) {
	numStr, rest, ok := strings.Cut(s, ".")
	if !ok {
		return PID{}, &FormatError{Kind: "pid", Text: s, Reason: "missing separator"}
	}
	scope, isp, ok := strings.Cut(rest, ".")
	if !ok {
		return PID{}, &FormatError{Kind: "pid", Text: s, Reason: "missing separator"}
	}
	var ext bool
	switch scope {
	case ScopeInternal:
		ext = false
	case ScopeExternal:
		ext = true
	default:
		return PID{}, &FormatError{Kind: "pid", Text: s, Reason: "scope must be i or e"}
	}
	if numStr == "" || numStr[0] == '+' || numStr[0] == '-' {
		return PID{}, &FormatError{Kind: "pid", Text: s, Reason: "invalid number"}
	}
	num, err := strconv.ParseUint(numStr, 10, 32)
	if err != nil {
		return PID{}, &FormatError{Kind: "pid", Text: s, Reason: "invalid number", Err: err}
	}
	return PID{Num: uint32(num), External: ext, ISP: isp}, nil
}

func MustParsePID(s string) PID {
	p, err := ParsePID(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p PID) String() string {
	sb := strings.Builder{}
	sb.Grow(16 + len(p.ISP))
	sb.WriteString(strconv.FormatUint(uint64(p.Num), 10))
	if p.External {
		sb.WriteString("." + ScopeExternal + ".")
	} else {
		sb.WriteString("." + ScopeInternal + ".")
	}
	sb.WriteString(p.ISP)
	return sb.String()
}

// Compare orders by number, then internal before external, then ISP label.
func (p PID) Compare(o PID) int {
	if c := cmp.Compare(p.Num, o.Num); c != 0 {
		return c
	}
	if p.External != o.External {
		if !p.External {
			return -1
		}
		return 1
	}
	return strings.Compare(p.ISP, o.ISP)
}

func ComparePID(a, b PID) int {
	return a.Compare(b)
}

func (p PID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PID) UnmarshalText(text []byte) error {
	v, err := ParsePID(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
