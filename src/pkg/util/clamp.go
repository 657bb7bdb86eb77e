package util

import "cmp"

// Clamp limits val to [lo, hi] for any ordered type. hi wins when lo > hi.
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return min(max(val, lo), hi)
}
