package protocol

import (
	"bufio"
	"io"
	"net/netip"
	"strconv"

	"github.com/encodeous/p4p/state"
)

const (
	FieldSep  = '\t'
	RecordEnd = '\n'
)

// Writer encodes a request body. The first error sticks: later writes are
// skipped and Flush reports it.
type Writer struct {
	w   *bufio.Writer
	err error
	n   int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) fail(err error) {
	if w.err == nil && err != nil {
		w.err = &state.TransportError{Op: "write", Err: err}
	}
}

func (w *Writer) WriteToken(s string) {
	if w.err != nil {
		return
	}
	n, err := w.w.WriteString(s)
	w.n += int64(n)
	w.fail(err)
}

func (w *Writer) writeByte(c byte) {
	if w.err != nil {
		return
	}
	w.fail(w.w.WriteByte(c))
	if w.err == nil {
		w.n++
	}
}

// Sep writes the field separator.
func (w *Writer) Sep() {
	w.writeByte(FieldSep)
}

// EndRecord terminates the current line.
func (w *Writer) EndRecord() {
	w.writeByte(RecordEnd)
}

func (w *Writer) WriteUint(v uint64) {
	w.WriteToken(strconv.FormatUint(v, 10))
}

func (w *Writer) WritePID(p state.PID) {
	w.WriteToken(p.String())
}

func (w *Writer) WriteInetPrefix(p state.InetPrefix) {
	w.WriteToken(p.String())
}

func (w *Writer) WriteAddr(a netip.Addr) {
	w.WriteToken(a.String())
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.fail(w.w.Flush())
	return w.err
}

func (w *Writer) Err() error {
	return w.err
}

// BytesWritten counts bytes accepted by the writer, including unflushed ones.
func (w *Writer) BytesWritten() int64 {
	return w.n
}
