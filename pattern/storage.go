package pattern

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/layout"
	"github.com/arloliu/wirebin/storage"
)

// Sub is one named sub-pattern of a storage pattern. The order of a Sub
// slice is the physical field order of the message.
type Sub struct {
	Name    string
	Pattern *FieldPattern
}

// StoragePattern is a reusable message template. Configure attaches the
// field patterns in order; Get materializes concrete storages. A configured
// pattern is immutable and safe for concurrent Get calls; Configure itself
// must not race with other uses of the same pattern.
type StoragePattern struct {
	typename string
	name     string
	params   Params
	subs     []Sub
}

// Overrides carries per-Get parameter overrides: storage-level parameters
// and field-level parameters addressed by field name.
type Overrides struct {
	Storage Params
	Fields  map[string]Params
}

// SplitFlat translates the flat "field__param" override convention into
// structured Overrides: a key containing "__" addresses a field parameter,
// any other key a storage parameter.
func SplitFlat(flat map[string]any) Overrides {
	ov := Overrides{Storage: Params{}, Fields: map[string]Params{}}
	for key, value := range flat {
		name, param, found := strings.Cut(key, "__")
		if !found {
			ov.Storage[key] = value
			continue
		}
		if ov.Fields[name] == nil {
			ov.Fields[name] = Params{}
		}
		ov.Fields[name][param] = value
	}

	return ov
}

// New creates a storage pattern.
//
// Parameters:
//   - typename: Pattern target typename; only "continuous" is defined
//   - name: Message format name
//   - params: Storage-level parameters
//
// Returns:
//   - *StoragePattern: Unconfigured pattern; call Configure before Get
//   - error: errs.ErrUnknownTypename
func New(typename, name string, params Params) (*StoragePattern, error) {
	if typename != "continuous" {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownTypename, typename)
	}

	return &StoragePattern{typename: typename, name: name, params: params.Copy()}, nil
}

// Configure attaches the field patterns in the order given, which is the
// physical field order. It returns the pattern for chaining.
func (p *StoragePattern) Configure(subs ...Sub) *StoragePattern {
	p.subs = append([]Sub(nil), subs...)

	return p
}

// Name returns the message format name.
func (p *StoragePattern) Name() string { return p.name }

// Typename returns the pattern target typename.
func (p *StoragePattern) Typename() string { return p.typename }

// Subs returns the configured sub-patterns in order.
func (p *StoragePattern) Subs() []Sub {
	return append([]Sub(nil), p.subs...)
}

// Get materializes a concrete storage.
//
// The stored parameters of every sub-pattern are merged with the matching
// field overrides; overlapping keys fail with errs.ErrParameterConflict
// unless changesAllowed is true. The layout resolver then assigns every
// field its offsets, and the storage is built from the resulting field
// structures.
//
// Returns:
//   - *storage.Storage: Empty storage with resolved fields
//   - error: errs.ErrNotConfigured before Configure;
//     errs.ErrUnknownPatternField for an override naming no sub-pattern;
//     errs.ErrAutoParameter for "start"/"stop" overrides;
//     errs.ErrMultipleDynamicFields and field construction errors
func (p *StoragePattern) Get(changesAllowed bool, ov Overrides) (*storage.Storage, error) {
	if len(p.subs) == 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrNotConfigured, p.name)
	}

	for name := range ov.Fields {
		if !p.hasSub(name) {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownPatternField, name)
		}
	}

	merged := make([]Params, len(p.subs))
	items := make([]layout.Item, len(p.subs))
	for i, sub := range p.subs {
		m, err := sub.Pattern.merge(changesAllowed, ov.Fields[sub.Name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", sub.Name, err)
		}
		merged[i] = m
		items[i] = layout.Item{Name: sub.Name, Size: sizeOf(m)}
	}

	places, err := layout.Resolve(items)
	if err != nil {
		return nil, err
	}

	fields := make([]storage.Field, len(p.subs))
	for i, sub := range p.subs {
		fs, err := sub.Pattern.build(merged[i], &places[i])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", sub.Name, err)
		}
		fields[i] = storage.Field{Name: sub.Name, Struct: fs}
	}

	name := p.name
	storageParams, err := p.params.Merged(changesAllowed, ov.Storage)
	if err != nil {
		return nil, err
	}
	if v, has := storageParams["name"]; has {
		n, ok := v.(string)
		if !ok {
			return nil, typeErr("name", v)
		}
		name = n
	}

	return storage.New(name, fields)
}

// GetDefault materializes a storage with no overrides.
func (p *StoragePattern) GetDefault() (*storage.Storage, error) {
	return p.Get(false, Overrides{})
}

// InitParams returns the reconstructable parameter set of the storage level:
// typename, name and the stored parameters. Sub-pattern parameters are
// reachable through Subs.
func (p *StoragePattern) InitParams() Params {
	params := p.params.Copy()
	params["typename"] = p.typename
	params["name"] = p.name

	return params
}

// Equal compares patterns structurally: storage parameters plus every
// sub-pattern's name, order and parameters.
func (p *StoragePattern) Equal(other *StoragePattern) bool {
	if other == nil || !p.InitParams().Equal(other.InitParams()) {
		return false
	}
	if len(p.subs) != len(other.subs) {
		return false
	}
	for i, sub := range p.subs {
		o := other.subs[i]
		if sub.Name != o.Name || !sub.Pattern.Equal(o.Pattern) {
			return false
		}
	}

	return true
}

// Hash returns a 64-bit digest of the pattern's canonical parameter
// encoding, including sub-patterns in order. Equal patterns hash equally, so
// the digest serves as a registry key and an equality fast-path.
func (p *StoragePattern) Hash() uint64 {
	digest := xxhash.New()
	_, _ = digest.WriteString(p.InitParams().canonical())
	for _, sub := range p.subs {
		_, _ = digest.WriteString(sub.Name)
		_, _ = digest.WriteString("{" + sub.Pattern.InitParams().canonical() + "}")
	}

	return digest.Sum64()
}

func (p *StoragePattern) hasSub(name string) bool {
	for _, sub := range p.subs {
		if sub.Name == name {
			return true
		}
	}

	return false
}
