package state

import (
	"maps"
	"net"
	"net/netip"
	"slices"

	"github.com/cilium/cilium/pkg/ip"
	"github.com/gaissmai/bart"
)

// PIDLocator maps addresses to PIDs by longest prefix match over a PID map.
type PIDLocator struct {
	table bart.Table[PID]
	size  int
}

// NewPIDLocator indexes every prefix of pidMap. When two PIDs claim the same
// network the lower PID in the PID order wins, so the result does not depend
// on map iteration order.
func NewPIDLocator(pidMap map[PID][]InetPrefix) *PIDLocator {
	l := &PIDLocator{}
	for _, pid := range slices.SortedFunc(maps.Keys(pidMap), ComparePID) {
		for _, p := range pidMap[pid] {
			if !p.IsValid() {
				continue
			}
			pfx := p.Prefix()
			if _, exists := l.table.Get(pfx); exists {
				continue
			}
			l.table.Insert(pfx, pid)
			l.size++
		}
	}
	return l
}

// Lookup returns the PID owning the most specific prefix containing addr.
func (l *PIDLocator) Lookup(addr netip.Addr) (PID, bool) {
	return l.table.Lookup(addr.Unmap().WithZone(""))
}

// Size returns the number of indexed networks.
func (l *PIDLocator) Size() int {
	return l.size
}

// CoalescePrefixes merges adjacent and overlapping networks. Host bits are
// dropped, IPv4 results come before IPv6.
func CoalescePrefixes(prefixes []InetPrefix) []InetPrefix {
	ipv4, ipv6 := ip.CoalesceCIDRs(toIPNets(prefixes))
	return fromIPNets(append(ipv4, ipv6...))
}

func toIPNets(prefixes []InetPrefix) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(prefixes))
	for _, p := range prefixes {
		if !p.IsValid() {
			continue
		}
		pfx := p.Prefix()
		nets = append(nets, &net.IPNet{
			IP:   pfx.Addr().AsSlice(),
			Mask: net.CIDRMask(pfx.Bits(), pfx.Addr().BitLen()),
		})
	}
	return nets
}

func fromIPNets(nets []*net.IPNet) []InetPrefix {
	output := make([]InetPrefix, 0, len(nets))
	for _, n := range nets {
		if addr, ok := netip.AddrFromSlice(n.IP); ok {
			ones, bits := n.Mask.Size()
			if bits == 128 && addr.Is4In6() {
				ones -= 96
			}
			addr = addr.Unmap()
			if ones < 0 || ones > addr.BitLen() {
				continue
			}
			output = append(output, NewInetPrefix(addr, ones))
		}
	}
	return output
}
