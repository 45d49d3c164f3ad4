package testconn

import (
	"io"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnRead(t *testing.T) {
	c := NewChunked([]byte("abcdefg"), 3)

	buf := make([]byte, 10)
	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	rest, err := ioutil.ReadAll(c)
	require.NoError(t, err)
	assert.Equal(t, "defg", string(rest))

	_, err = c.Read(buf)
	assert.Equal(t, io.EOF, err)
}

func TestConnWrite(t *testing.T) {
	c := New(nil)

	_, err := c.Write([]byte("ab"))
	require.NoError(t, err)
	_, err = c.Write([]byte("cd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(c.Written()))

	require.NoError(t, c.Close())
	_, err = c.Write([]byte("e"))
	assert.Equal(t, ErrClosed, err)
	_, err = c.Read(make([]byte, 1))
	assert.Equal(t, ErrClosed, err)
}
