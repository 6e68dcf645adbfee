package state

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// InetService is a portal location, "<host>:<port>".
type InetService struct {
	Host string
	Port uint16
}

// ParseInetService splits at the last ':' so bracketless IPv6 hosts keep their colons.
// Hostnames are normalised to their ASCII form.
func ParseInetService(s string) (InetService, error) {
	sep := strings.LastIndexByte(s, ':')
	if sep < 0 {
		return InetService{}, &FormatError{Kind: "service", Text: s, Reason: "missing port"}
	}
	host, portStr := s[:sep], s[sep+1:]
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return InetService{}, &FormatError{Kind: "service", Text: s, Reason: "missing host"}
	}
	if portStr == "" || strings.ContainsAny(portStr, "+-") {
		return InetService{}, &FormatError{Kind: "service", Text: s, Reason: "missing port"}
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return InetService{}, &FormatError{Kind: "service", Text: s, Reason: "invalid port", Err: err}
	}
	if !strings.Contains(host, ":") {
		host, err = idna.Lookup.ToASCII(host)
		if err != nil {
			return InetService{}, &FormatError{Kind: "service", Text: s, Reason: "invalid host", Err: err}
		}
	}
	return InetService{Host: host, Port: uint16(port)}, nil
}

func (s InetService) IsValid() bool {
	return s.Host != ""
}

// Addr returns the dialable "host:port" form, bracketing IPv6 hosts.
func (s InetService) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port)))
}

func (s InetService) String() string {
	return s.Host + ":" + strconv.Itoa(int(s.Port))
}

func (s InetService) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *InetService) UnmarshalText(text []byte) error {
	v, err := ParseInetService(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
