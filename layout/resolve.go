// Package layout computes concrete byte offsets for an ordered sequence of
// message fields forming one continuous buffer.
//
// A layout is continuous: the start of every field equals the stop of the
// previous one, with no gaps and no overlap. At most one field may be dynamic,
// meaning its byte length is unknown until the total message length is known.
// The dynamic field may sit anywhere in the sequence, so the resolver works in
// two passes: forward from byte 0 up to and including the dynamic field, then
// backward from the buffer end down to the field right after it. Fields behind
// the dynamic one receive negative, from-the-end offsets, which stay correct
// for any total message length.
package layout

import (
	"fmt"

	"github.com/arloliu/wirebin/errs"
)

// Item describes one field to place: its name and fixed byte size.
// A size of zero or less marks the field as dynamic.
type Item struct {
	Name string
	Size int
}

// IsDynamic reports whether the item has no fixed size.
func (it Item) IsDynamic() bool {
	return it.Size <= 0
}

// Placement is the resolved position of one field.
//
// Start and Stop are signed byte offsets; negative values count from the end
// of the buffer. Open means the field extends to the end of the buffer and
// Stop is meaningless.
type Placement struct {
	Name  string
	Start int
	Stop  int
	Open  bool
}

// Resolve assigns every item a concrete placement.
//
// The forward pass walks items in declared order, accumulating fixed sizes
// from offset 0, and stops at the first dynamic item. If any items remain
// after the dynamic one, the backward pass walks them in reverse, accumulating
// negative offsets from the buffer end; the dynamic item's stop becomes the
// last offset reached, or stays open when the dynamic item is last.
//
// Parameters:
//   - items: Fields in physical order
//
// Returns:
//   - []Placement: One placement per item, same order
//   - error: errs.ErrMultipleDynamicFields if more than one item is dynamic
func Resolve(items []Item) ([]Placement, error) {
	places := make([]Placement, len(items))

	dyn := -1
	cursor := 0
	for i, it := range items {
		if it.IsDynamic() {
			dyn = i
			places[i] = Placement{Name: it.Name, Start: cursor, Open: true}

			break
		}
		places[i] = Placement{Name: it.Name, Start: cursor, Stop: cursor + it.Size}
		cursor += it.Size
	}

	if dyn == -1 {
		return places, nil
	}

	cursor = 0
	for i := len(items) - 1; i > dyn; i-- {
		it := items[i]
		if it.IsDynamic() {
			return nil, fmt.Errorf(
				"%w: %q and %q", errs.ErrMultipleDynamicFields, items[dyn].Name, it.Name,
			)
		}

		start := cursor - it.Size
		// A stop of zero means "end of buffer" here, which only the last
		// field can claim; it is recorded as open instead.
		places[i] = Placement{Name: it.Name, Start: start, Stop: cursor, Open: cursor == 0}
		cursor = start
	}

	if cursor != 0 {
		places[dyn].Stop = cursor
		places[dyn].Open = false
	}

	return places, nil
}

// MinSize returns the sum of all fixed item sizes: the minimal buffer length
// the layout can bind to.
func MinSize(items []Item) int {
	total := 0
	for _, it := range items {
		if !it.IsDynamic() {
			total += it.Size
		}
	}

	return total
}

// HasDynamic reports whether any item is dynamic.
func HasDynamic(items []Item) bool {
	for _, it := range items {
		if it.IsDynamic() {
			return true
		}
	}

	return false
}
