package directory

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// SIDString decodes the binary objectSid layout into its S-1-... string form:
// one revision byte, a sub-authority count, a 48-bit big-endian identifier
// authority, then count little-endian uint32 sub-authorities.
func SIDString(b []byte) (string, error) {
	if len(b) < 8 {
		return "", fmt.Errorf("SID too short: %d bytes", len(b))
	}
	revision := b[0]
	count := int(b[1])
	if len(b) < 8+4*count {
		return "", fmt.Errorf("SID truncated: %d sub-authorities in %d bytes", count, len(b))
	}
	var authority uint64
	for i := 2; i < 8; i++ {
		authority = authority<<8 | uint64(b[i])
	}
	s := "S-" + strconv.Itoa(int(revision)) + "-" + strconv.FormatUint(authority, 10)
	for i := 0; i < count; i++ {
		sub := binary.LittleEndian.Uint32(b[8+4*i:])
		s += "-" + strconv.FormatUint(uint64(sub), 10)
	}
	return s, nil
}
