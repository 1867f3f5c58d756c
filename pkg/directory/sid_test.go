package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Binary form of S-1-5-21-1004336348-1177238915-682003330.
var domainSIDBytes = []byte{
	0x01, 0x04,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x15, 0x00, 0x00, 0x00,
	0xdc, 0xf4, 0xdc, 0x3b,
	0x83, 0x3d, 0x2b, 0x46,
	0x82, 0x8b, 0xa6, 0x28,
}

func TestSIDString(t *testing.T) {
	s, err := SIDString(domainSIDBytes)
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-21-1004336348-1177238915-682003330", s)
}

func TestSIDStringRejectsTruncatedInput(t *testing.T) {
	_, err := SIDString(nil)
	assert.Error(t, err)
	_, err = SIDString(domainSIDBytes[:6])
	assert.Error(t, err)
	// Claims four sub-authorities but carries only three.
	bad := append([]byte{}, domainSIDBytes...)
	bad[1] = 4
	_, err = SIDString(bad)
	assert.Error(t, err)
}
