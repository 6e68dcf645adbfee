package protocol

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/encodeous/p4p/state"
)

// EncodeAddresses writes the pid request body, one address per line.
func EncodeAddresses(w *Writer, addrs []netip.Addr) {
	for _, a := range addrs {
		w.WriteAddr(a)
		w.EndRecord()
	}
}

// EncodeDestVectors writes the pdistance request body. Each vector is a single line:
// <src> <reverse-flag> <count> <dst>...
func EncodeDestVectors(w *Writer, vectors []state.PIDDestVector) {
	for _, v := range vectors {
		w.WritePID(v.Src)
		w.Sep()
		w.WriteToken(v.ReverseToken())
		w.Sep()
		w.WriteUint(uint64(len(v.Dsts)))
		for _, dst := range v.Dsts {
			w.Sep()
			w.WritePID(dst)
		}
		w.EndRecord()
	}
}

// DecodeAddressPIDs reads <prefix> <pid> records until end of stream and keys
// each PID by the prefix's address.
func DecodeAddressPIDs(r *Reader) (map[netip.Addr]state.PID, error) {
	result := make(map[netip.Addr]state.PID)
	for {
		prefix, ok, err := r.NextInetPrefix()
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		pid, err := r.ReadPID()
		if err != nil {
			return nil, err
		}
		result[prefix.Addr()] = pid
	}
}

// DecodePDistances reads pdistance records until end of stream. Every
// destination carries a forward distance, followed by a reverse distance when
// the record is flagged inc-reverse.
func DecodePDistances(r *Reader) (*state.PIDMatrix, error) {
	result := state.NewPIDMatrix()
	for {
		src, ok, err := r.NextPID()
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}

		flag, err := r.ReadToken()
		if err != nil {
			return nil, err
		}
		var reverse bool
		switch flag {
		case state.IncReverse:
			reverse = true
		case state.NoReverse:
			reverse = false
		default:
			return nil, &state.ProtocolError{Reason: fmt.Sprintf("unknown reverse flag %q", flag)}
		}

		numDsts, err := r.ReadCount()
		if err != nil {
			return nil, err
		}
		for i := int64(0); i < numDsts; i++ {
			dst, err := r.ReadPID()
			if err != nil {
				return nil, err
			}
			dist, err := r.ReadDouble()
			if err != nil {
				return nil, err
			}
			result.Set(src, dst, dist)
			if !reverse {
				continue
			}
			dist, err = r.ReadDouble()
			if err != nil {
				return nil, err
			}
			result.Set(dst, src, dist)
		}
	}
}

// DecodePIDMap reads <pid> <count> <prefix>... records until end of stream.
// Each PID's prefixes form a set, sorted by the InetPrefix order. A PID that
// appears twice keeps the prefixes of its last record.
func DecodePIDMap(r *Reader) (map[state.PID][]state.InetPrefix, error) {
	result := make(map[state.PID][]state.InetPrefix)
	for {
		pid, ok, err := r.NextPID()
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		count, err := r.ReadCount()
		if err != nil {
			return nil, err
		}
		prefixes := make([]state.InetPrefix, 0, min(count, 1024))
		for i := int64(0); i < count; i++ {
			p, err := r.ReadInetPrefix()
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, p)
		}
		slices.SortFunc(prefixes, state.CompareInetPrefix)
		result[pid] = slices.Compact(prefixes)
	}
}

// DecodeInetService reads the single record of a portal discovery response.
func DecodeInetService(r *Reader) (state.InetService, error) {
	return r.ReadInetService()
}
