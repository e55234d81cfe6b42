package optional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptional(t *testing.T) {
	var opt Optional[uint32]

	assert.False(t, opt.HasValue())
	assert.Panics(t, func() { opt.Get() })

	opt.Set(42)
	assert.True(t, opt.HasValue())
	assert.Equal(t, uint32(42), opt.Get())

	// The zero value counts as set too.
	opt = Optional[uint32]{}
	opt.Set(0)
	assert.True(t, opt.HasValue())
	assert.Equal(t, uint32(0), opt.Get())
}
