package unsafer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceBytesToUint32(t *testing.T) {
	// The SPIR-V magic number in little endian byte order.
	words := SliceBytesToUint32([]byte{0x03, 0x02, 0x23, 0x07})
	assert.Equal(t, []uint32{0x07230203}, words)

	words = SliceBytesToUint32([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	assert.Equal(t, []uint32{1, 2}, words)

	assert.Empty(t, SliceBytesToUint32(nil))
}
