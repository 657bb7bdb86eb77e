// Package textlayout wraps text into lines that fit a given width.
package textlayout

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// MeasureFunc returns the rendered width of s at the given point size.
type MeasureFunc func(s string, size float64) float64

// LayoutError reports a width that cannot hold any content.
type LayoutError struct {
	MaxWidth float64
	Reason   string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout: %s (max width %.2f)", e.Reason, e.MaxWidth)
}

/*
Wrap splits text into lines no wider than maxWidth.

Words are packed greedily while measure(line, size) <= maxWidth. A word that
alone exceeds maxWidth is broken rune by rune into the longest fitting
fragments; the last fragment stays open so following words can join it. A
single rune wider than maxWidth is emitted on its own line.

The returned sequence is lazy and can be ranged over any number of times.
Empty or whitespace-only text yields no lines.
*/
func Wrap(text string, measure MeasureFunc, size float64, maxWidth float64) (iter.Seq[string], error) {
	if maxWidth <= 0 {
		return nil, &LayoutError{MaxWidth: maxWidth, Reason: "max width must be positive"}
	}
	if measure == nil {
		return nil, &LayoutError{MaxWidth: maxWidth, Reason: "no measure function"}
	}

	fits := func(s string) bool {
		return measure(s, size) <= maxWidth
	}

	seq := func(yield func(string) bool) {
		current := ""
		for _, word := range strings.Fields(text) {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if fits(candidate) {
				current = candidate
				continue
			}

			if current != "" {
				if !yield(current) {
					return
				}
				current = ""
			}
			if fits(word) {
				current = word
				continue
			}

			// force-break the word
			fragment := ""
			for _, r := range word {
				next := fragment + string(r)
				if fragment != "" && !fits(next) {
					if !yield(fragment) {
						return
					}
					next = string(r)
				}
				fragment = next
			}
			current = fragment
		}
		if current != "" {
			yield(current)
		}
	}

	return seq, nil
}

// Lines is Wrap collected into a slice.
func Lines(text string, measure MeasureFunc, size float64, maxWidth float64) ([]string, error) {
	seq, err := Wrap(text, measure, size, maxWidth)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// LineCount returns how many lines text wraps into, at least 1.
func LineCount(text string, measure MeasureFunc, size float64, maxWidth float64) (int, error) {
	lines, err := Lines(text, measure, size, maxWidth)
	if err != nil {
		return 0, err
	}
	return max(1, len(lines)), nil
}
