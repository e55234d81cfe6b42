package unsafer

import (
	"reflect"
	"unsafe"
)

// SliceBytesToUint32 interprets a byte slice as a slice of uint32 words.
// SPIR-V bytecode is a stream of 32 bit words and this is the form in which
// the Vulkan API accepts it.
//
// Note that the returned slice points to the same underlying data in memory. It
// does not make a copy.
func SliceBytesToUint32(input []byte) []uint32 {
	header := *(*reflect.SliceHeader)(unsafe.Pointer(&input))
	header.Len = len(input) / 4
	header.Cap = header.Len
	wordsSlice := *(*[]uint32)(unsafe.Pointer(&header))
	return wordsSlice
}
