package optional

// Optional stores a value which may or may not have been set.
type Optional[T any] struct {
	value T
	isSet bool
}

// Set stores val into the optional.
func (o *Optional[T]) Set(val T) {
	o.value = val
	o.isSet = true
}

// HasValue returns true if a value has been set.
func (o *Optional[T]) HasValue() bool {
	return o.isSet
}

// Get returns the stored value. It panics when no value has been set so
// callers must check HasValue first.
func (o *Optional[T]) Get() T {
	if !o.isSet {
		panic("getting the value of an empty optional")
	}

	return o.value
}
