package queues

import (
	"vkboot/optional"
)

// FamilyIndices holds the indexes of the Vulkan queue families needed for
// rendering and presenting. The graphics and present families may resolve to
// the same index or to two different ones. Device creation must not proceed
// until both have been resolved.
type FamilyIndices struct {

	// Graphics is the index of the graphics queue family.
	Graphics optional.Optional[uint32]

	// Present is the index of the queue family used for presenting to the drawing
	// surface.
	Present optional.Optional[uint32]
}

// IsComplete returns true if all families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Graphics.HasValue() && f.Present.HasValue()
}
