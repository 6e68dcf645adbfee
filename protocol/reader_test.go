package protocol

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/encodeous/p4p/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Tokens(t *testing.T) {
	r := NewReader(strings.NewReader("  a\tb\r\n\n c  d"))
	var got []string
	for {
		tok, ok, err := r.NextToken()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, tok)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.Equal(t, int64(13), r.BytesRead())
}

func TestReader_EmptyStream(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, ok, err := r.NextToken()
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.NextPID()
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = r.ReadToken()
	assert.ErrorIs(t, err, state.ErrInvalidResponse)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_WhitespaceOnly(t *testing.T) {
	r := NewReader(strings.NewReader("\n\t \r\n"))
	_, ok, err := r.NextInetPrefix()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestReader_Numbers(t *testing.T) {
	r := NewReader(strings.NewReader("12\t-3\t2.5\t1e3\t7"))
	v, err := r.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	v, err = r.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, int64(-3), v)

	d, err := r.ReadDouble()
	require.NoError(t, err)
	assert.Equal(t, 2.5, d)

	d, err = r.ReadDouble()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, d)

	c, err := r.ReadCount()
	require.NoError(t, err)
	assert.Equal(t, int64(7), c)
}

// A bad long and a bad double fail with the same kind of error.
func TestReader_InvalidNumberUniform(t *testing.T) {
	_, errLong := NewReader(strings.NewReader("x1")).ReadLong()
	_, errDouble := NewReader(strings.NewReader("x1")).ReadDouble()
	for _, err := range []error{errLong, errDouble} {
		var pe *state.ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Nil(t, pe.Err)
		assert.ErrorIs(t, err, state.ErrInvalidResponse)
	}
	assert.Equal(t, errLong.Error(), errDouble.Error())
}

func TestReader_NegativeCount(t *testing.T) {
	_, err := NewReader(strings.NewReader("-1")).ReadCount()
	assert.True(t, state.IsProtocolError(err))
}

func TestReader_MalformedValues(t *testing.T) {
	_, _, err := NewReader(strings.NewReader("notapid")).NextPID()
	assert.True(t, state.IsProtocolError(err))

	_, err = NewReader(strings.NewReader("10.0.0.0/40")).ReadInetPrefix()
	assert.True(t, state.IsProtocolError(err))

	// names are never resolved while decoding
	_, _, err = NewReader(strings.NewReader("localhost/8")).NextInetPrefix()
	assert.True(t, state.IsProtocolError(err))

	_, err = NewReader(strings.NewReader("portal:notaport")).ReadInetService()
	assert.True(t, state.IsProtocolError(err))
}

func TestReader_TokenTooLong(t *testing.T) {
	r := NewReader(strings.NewReader(strings.Repeat("a", MaxTokenLength+1)))
	_, _, err := r.NextToken()
	assert.True(t, state.IsProtocolError(err))
}

func TestReader_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewReader(io.MultiReader(strings.NewReader("1.i.x\t"), iotest.ErrReader(boom)))
	_, err := r.ReadPID()
	require.NoError(t, err)
	_, err = r.ReadToken()
	assert.True(t, state.IsTransportError(err))
	assert.False(t, state.IsProtocolError(err))
	assert.ErrorIs(t, err, boom)
}

func TestReader_PartialTokenAtEnd(t *testing.T) {
	r := NewReader(strings.NewReader("1.e.isp"))
	pid, err := r.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, state.MustParsePID("1.e.isp"), pid)
}
