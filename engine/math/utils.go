package math

import "golang.org/x/exp/constraints"

// IsMultiple reports whether v is an exact multiple of block. A zero block
// never divides anything.
func IsMultiple[T constraints.Unsigned](v, block T) bool {
	if block == 0 {
		return false
	}
	return v%block == 0
}
