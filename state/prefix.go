package state

import (
	"cmp"
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// InetPrefix is an IP address with a prefix length. The address is kept
// unmasked: 10.0.0.1/8 and 10.0.0.0/8 are different values and compare by
// their address text. Use Prefix for the masked network.
type InetPrefix struct {
	addr netip.Addr
	bits int
}

// NewInetPrefix panics if addr is invalid or bits is out of range for its family.
func NewInetPrefix(addr netip.Addr, bits int) InetPrefix {
	if !addr.IsValid() {
		panic("InetPrefix: address must be valid")
	}
	if bits < 0 || bits > addr.BitLen() {
		panic(fmt.Sprintf("InetPrefix: length %d out of range for %s", bits, addr))
	}
	return InetPrefix{addr: addr, bits: bits}
}

// HostPrefix returns a full-length prefix for addr (/32 or /128).
func HostPrefix(addr netip.Addr) InetPrefix {
	return NewInetPrefix(addr, addr.BitLen())
}

func (p InetPrefix) Addr() netip.Addr {
	return p.addr
}

func (p InetPrefix) Bits() int {
	return p.bits
}

func (p InetPrefix) IsValid() bool {
	return p.addr.IsValid()
}

// Prefix returns the masked network covered by p.
func (p InetPrefix) Prefix() netip.Prefix {
	return netip.PrefixFrom(p.addr.WithZone(""), p.bits).Masked()
}

func (p InetPrefix) String() string {
	if !p.addr.IsValid() {
		return "invalid InetPrefix"
	}
	return p.addr.String() + "/" + strconv.Itoa(p.bits)
}

// Compare orders by address text, then by length.
func (p InetPrefix) Compare(o InetPrefix) int {
	if c := strings.Compare(p.addr.String(), o.addr.String()); c != 0 {
		return c
	}
	return cmp.Compare(p.bits, o.bits)
}

func CompareInetPrefix(a, b InetPrefix) int {
	return a.Compare(b)
}

func (p InetPrefix) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *InetPrefix) UnmarshalText(text []byte) error {
	v, err := ParseInetPrefixLiteral(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseInetPrefix parses "<address>[/<length>]". A missing length defaults to
// the full host length. Hostnames are resolved, which may block; pass literals
// to avoid it.
func ParseInetPrefix(s string) (InetPrefix, error) {
	return ParseInetPrefixContext(context.Background(), s)
}

// ParseInetPrefixContext is ParseInetPrefix with a context bounding name resolution.
func ParseInetPrefixContext(ctx context.Context, s string) (InetPrefix, error) {
	return parseInetPrefix(ctx, s, true)
}

// ParseInetPrefixLiteral is ParseInetPrefix without name resolution.
func ParseInetPrefixLiteral(s string) (InetPrefix, error) {
	return parseInetPrefix(context.Background(), s, false)
}

func MustParseInetPrefix(s string) InetPrefix {
	p, err := ParseInetPrefixLiteral(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseInetPrefix(ctx context.Context, s string, resolve bool) (InetPrefix, error) {
	addrStr, lenStr, hasLen := strings.Cut(s, "/")

	var is4 bool
	switch {
	case strings.Contains(addrStr, "."):
		is4 = true
	case strings.Contains(addrStr, ":"):
		is4 = false
	default:
		return InetPrefix{}, &FormatError{Kind: "prefix", Text: s, Reason: "not an IPv4 or IPv6 address"}
	}

	bits := 128
	if is4 {
		bits = 32
	}
	if hasLen {
		if lenStr == "" || strings.ContainsAny(lenStr, "+-") {
			return InetPrefix{}, &FormatError{Kind: "prefix", Text: s, Reason: "invalid length"}
		}
		l, err := strconv.Atoi(lenStr)
		if err != nil {
			return InetPrefix{}, &FormatError{Kind: "prefix", Text: s, Reason: "invalid length", Err: err}
		}
		bits = l
	}

	addr, err := netip.ParseAddr(addrStr)
	if err != nil {
		if !resolve {
			return InetPrefix{}, &FormatError{Kind: "prefix", Text: s, Reason: "invalid address", Err: err}
		}
		addr, err = resolveFamily(ctx, addrStr, is4)
		if err != nil {
			return InetPrefix{}, &FormatError{Kind: "prefix", Text: s, Reason: "cannot resolve address", Err: err}
		}
	}
	// a mapped address keeps its IPv6 form when the length only fits IPv6
	if is4 && addr.Is4In6() && bits <= 32 {
		addr = addr.Unmap()
	}
	if bits > addr.BitLen() {
		return InetPrefix{}, &FormatError{Kind: "prefix", Text: s, Reason: fmt.Sprintf("length %d out of range", bits)}
	}
	return InetPrefix{addr: addr, bits: bits}, nil
}

func resolveFamily(ctx context.Context, host string, is4 bool) (netip.Addr, error) {
	addrs, err := ResolveName(ctx, host)
	if err != nil {
		return netip.Addr{}, err
	}
	for _, a := range addrs {
		a = a.Unmap()
		if a.Is4() == is4 {
			return a, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("no matching address for %s", host)
}
