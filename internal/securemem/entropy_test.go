package securemem

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMockReaderNotConfigured = errors.New("mock reader not configured")

// mockReader implements io.Reader for testing.
type mockReader struct {
	readFunc func(p []byte) (int, error)
}

func (m *mockReader) Read(p []byte) (int, error) {
	if m.readFunc != nil {
		return m.readFunc(p)
	}
	return 0, errMockReaderNotConfigured
}

// swapReader replaces Reader for the duration of a test.
// Tests that call it must not run in parallel.
func swapReader(t *testing.T, r io.Reader) {
	t.Helper()
	orig := Reader
	Reader = r
	t.Cleanup(func() { Reader = orig })
}

func TestRandomBytes(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantLen int
	}{
		{name: "zero bytes", n: 0, wantLen: 0},
		{name: "16 bytes", n: 16, wantLen: 16},
		{name: "32 bytes", n: 32, wantLen: 32},
		{name: "1024 bytes", n: 1024, wantLen: 1024},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := RandomBytes(tc.n)
			require.NoError(t, err)
			assert.Len(t, data, tc.wantLen)
		})
	}
}

func TestRandomBytes_Randomness(t *testing.T) {
	data1, err := RandomBytes(32)
	require.NoError(t, err)

	data2, err := RandomBytes(32)
	require.NoError(t, err)

	assert.NotEqual(t, data1, data2, "consecutive calls should produce different random bytes")
}

func TestRandomBytes_Deterministic(t *testing.T) {
	swapReader(t, bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)))

	data, err := RandomBytes(16)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xab}, 16), data)
}

func TestRandomBytes_ReaderError(t *testing.T) {
	swapReader(t, &mockReader{})

	data, err := RandomBytes(16)
	require.ErrorIs(t, err, errMockReaderNotConfigured)
	assert.Nil(t, data)
}

func TestRandomBytes_ShortRead(t *testing.T) {
	swapReader(t, bytes.NewReader([]byte{1, 2, 3}))

	_, err := RandomBytes(16)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSecureRandomBytes(t *testing.T) {
	swapReader(t, bytes.NewReader(bytes.Repeat([]byte{0x5a}, 32)))

	sb, err := SecureRandomBytes(32)
	require.NoError(t, err)
	defer sb.Destroy()

	assert.Equal(t, bytes.Repeat([]byte{0x5a}, 32), sb.Bytes())
}

func TestSecureRandomBytes_ReaderError(t *testing.T) {
	swapReader(t, &mockReader{
		readFunc: func(_ []byte) (int, error) {
			return 0, io.ErrClosedPipe
		},
	})

	sb, err := SecureRandomBytes(32)
	require.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Nil(t, sb)
}

func TestMlock_EmptyBuffer(t *testing.T) {
	t.Parallel()
	assert.False(t, mlock(nil))
	assert.False(t, mlock([]byte{}))
	munlock(nil)
}
