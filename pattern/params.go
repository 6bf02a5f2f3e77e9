// Package pattern implements reusable message templates.
//
// A FieldPattern stores the constructor parameters of one field without
// concrete offsets; a StoragePattern composes named field patterns in
// physical order. Get materializes a concrete storage: the layout resolver
// assigns every field its offsets, then field structures and the storage are
// built from the merged parameters. Patterns are immutable after Configure
// and safe to share between goroutines producing storages.
package pattern

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/arloliu/wirebin/errs"
)

// Params is a named parameter set for a pattern target. Values keep the
// types the target constructor expects (int, []byte, format.Scalar, ...).
type Params map[string]any

// Copy returns a shallow copy.
func (p Params) Copy() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}

	return c
}

// Merged joins p with extra. A key present in both fails with
// errs.ErrParameterConflict unless changesAllowed is true, in which case the
// extra value wins.
func (p Params) Merged(changesAllowed bool, extra Params) (Params, error) {
	merged := p.Copy()
	for k, v := range extra {
		if _, dup := merged[k]; dup && !changesAllowed {
			return nil, fmt.Errorf("%w: %q", errs.ErrParameterConflict, k)
		}
		merged[k] = v
	}

	return merged, nil
}

// Equal compares parameter sets structurally.
func (p Params) Equal(other Params) bool {
	return reflect.DeepEqual(p, other)
}

// canonical renders the parameter set as a deterministic string, used as
// hash input. Key order is sorted; values use their default formatting.
func (p Params) canonical() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]byte, 0, 32*len(keys))
	for _, k := range keys {
		out = fmt.Appendf(out, "%s=%v;", k, p[k])
	}

	return string(out)
}
