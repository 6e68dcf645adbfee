package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/encodeous/p4p/state"
)

// MaxTokenLength bounds a single token so a broken stream cannot grow a token without limit.
var MaxTokenLength = 4096

// Reader decodes tokens from a response stream. Tokens are separated by runs
// of tab, space, CR or LF.
//
// Every read comes in two modes. Read* methods require a value: end of stream
// is a ProtocolError. Next* methods return ok=false on a clean end of stream,
// which is how a response signals that no records remain.
type Reader struct {
	r   *bufio.Reader
	n   int64
	buf []byte
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// BytesRead returns the number of bytes consumed from the stream so far.
func (r *Reader) BytesRead() int64 {
	return r.n
}

func isSep(c byte) bool {
	return c == '\t' || c == '\n' || c == '\r' || c == ' '
}

// NextToken reads the next token, ok is false at end of stream.
func (r *Reader) NextToken() (string, bool, error) {
	r.buf = r.buf[:0]
	for {
		c, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(r.buf) == 0 {
					return "", false, nil
				}
				return string(r.buf), true, nil
			}
			return "", false, &state.TransportError{Op: "read", Err: err}
		}
		r.n++
		if isSep(c) {
			if len(r.buf) == 0 {
				continue
			}
			return string(r.buf), true, nil
		}
		if len(r.buf) >= MaxTokenLength {
			return "", false, &state.ProtocolError{Reason: fmt.Sprintf("token longer than %d bytes", MaxTokenLength)}
		}
		r.buf = append(r.buf, c)
	}
}

// ReadToken reads a token that must be present.
func (r *Reader) ReadToken() (string, error) {
	tok, ok, err := r.NextToken()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &state.ProtocolError{Reason: "unexpected end of stream", Err: io.ErrUnexpectedEOF}
	}
	return tok, nil
}

func (r *Reader) NextPID() (state.PID, bool, error) {
	tok, ok, err := r.NextToken()
	if err != nil || !ok {
		return state.PID{}, false, err
	}
	pid, err := state.ParsePID(tok)
	if err != nil {
		return state.PID{}, false, &state.ProtocolError{Reason: err.Error()}
	}
	return pid, true, nil
}

func (r *Reader) ReadPID() (state.PID, error) {
	tok, err := r.ReadToken()
	if err != nil {
		return state.PID{}, err
	}
	pid, err := state.ParsePID(tok)
	if err != nil {
		return state.PID{}, &state.ProtocolError{Reason: err.Error()}
	}
	return pid, nil
}

// NextInetPrefix reads a prefix. Only address literals are accepted, a
// response never triggers name resolution.
func (r *Reader) NextInetPrefix() (state.InetPrefix, bool, error) {
	tok, ok, err := r.NextToken()
	if err != nil || !ok {
		return state.InetPrefix{}, false, err
	}
	p, err := state.ParseInetPrefixLiteral(tok)
	if err != nil {
		return state.InetPrefix{}, false, &state.ProtocolError{Reason: err.Error()}
	}
	return p, true, nil
}

func (r *Reader) ReadInetPrefix() (state.InetPrefix, error) {
	p, ok, err := r.NextInetPrefix()
	if err != nil {
		return state.InetPrefix{}, err
	}
	if !ok {
		return state.InetPrefix{}, &state.ProtocolError{Reason: "unexpected end of stream", Err: io.ErrUnexpectedEOF}
	}
	return p, nil
}

func (r *Reader) ReadInetService() (state.InetService, error) {
	tok, err := r.ReadToken()
	if err != nil {
		return state.InetService{}, err
	}
	svc, err := state.ParseInetService(tok)
	if err != nil {
		return state.InetService{}, &state.ProtocolError{Reason: err.Error()}
	}
	return svc, nil
}

func (r *Reader) ReadLong() (int64, error) {
	tok, err := r.ReadToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, invalidNumber(tok)
	}
	return v, nil
}

// ReadCount reads a non-negative record count.
func (r *Reader) ReadCount() (int64, error) {
	v, err := r.ReadLong()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &state.ProtocolError{Reason: fmt.Sprintf("negative count %d", v)}
	}
	return v, nil
}

func (r *Reader) ReadDouble() (float64, error) {
	tok, err := r.ReadToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, invalidNumber(tok)
	}
	return v, nil
}

// numeric failures all look the same to the caller
func invalidNumber(tok string) error {
	return &state.ProtocolError{Reason: fmt.Sprintf("invalid number %q", tok)}
}
