package state

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// SetResolvers points the default resolver at the given servers, tried in order.
// An empty list keeps the system resolver.
func SetResolvers(resolvers []string) {
	if len(resolvers) == 0 {
		return
	}
	net.DefaultResolver = &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: ResolverDialTimeout}
			var lastErr error
			for _, r := range resolvers {
				conn, err := d.DialContext(ctx, network, r)
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			return nil, lastErr
		},
	}
}

// ResolveName resolves a hostname to its addresses. Literal addresses are returned as is.
func ResolveName(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	ips, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	var addrs []netip.Addr
	for _, ipStr := range ips {
		if addr, err := netip.ParseAddr(ipStr); err == nil {
			addrs = append(addrs, addr)
		}
	}
	return addrs, nil
}
