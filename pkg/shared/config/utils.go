package config

// BoolOr returns the value of an optional flag, or def when it is unset.
func BoolOr(value *bool, def bool) bool {
	if value == nil {
		return def
	}
	return *value
}

// SetThen returns value unless it is the zero value of its type.
func SetThen[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
