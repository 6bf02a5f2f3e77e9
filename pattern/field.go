package pattern

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/wirebin/endian"
	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/field"
	"github.com/arloliu/wirebin/format"
	"github.com/arloliu/wirebin/layout"
)

// fieldRoles maps field pattern typenames to roles.
var fieldRoles = map[string]field.Role{
	"basic":       field.RoleBasic,
	"single":      field.RoleSingle,
	"static":      field.RoleStatic,
	"address":     field.RoleAddress,
	"data":        field.RoleData,
	"data_length": field.RoleDataLength,
	"id":          field.RoleID,
	"operation":   field.RoleOperation,
	"response":    field.RoleResponse,
	"crc":         field.RoleCRC,
}

// FieldPattern is a template for one field structure: a typename naming the
// field role plus constructor parameters without concrete offsets.
//
// Recognized parameter keys: "fmt" (format.Scalar, required),
// "bytes_expected" (int; absent or non-positive marks the field dynamic),
// "order" (endian.Order), "default" ([]byte), "poly" and "init" (int, CRC),
// "wo_fields" ([]string, CRC), "descs" (map[int]field.Desc) and
// "compression" (format.CompressionType). The offsets "start" and "stop" are
// assigned by the layout resolver and may not appear.
type FieldPattern struct {
	typename string
	params   Params
}

// NewField creates a field pattern.
//
// Returns:
//   - *FieldPattern: Immutable field template
//   - error: errs.ErrUnknownTypename, errs.ErrAutoParameter for offset keys,
//     or a missing "fmt" parameter
func NewField(typename string, params Params) (*FieldPattern, error) {
	if _, ok := fieldRoles[typename]; !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownTypename, typename)
	}
	for _, key := range []string{"start", "stop"} {
		if _, has := params[key]; has {
			return nil, fmt.Errorf("%w: %q", errs.ErrAutoParameter, key)
		}
	}
	if _, has := params["fmt"]; !has {
		return nil, fmt.Errorf("field pattern %q requires a 'fmt' parameter", typename)
	}

	return &FieldPattern{typename: typename, params: params.Copy()}, nil
}

// Typename returns the pattern target typename.
func (p *FieldPattern) Typename() string { return p.typename }

// Size returns the fixed byte count declared by the pattern, or 0 when the
// pattern is dynamic.
func (p *FieldPattern) Size() int {
	return sizeOf(p.params)
}

// IsDynamic reports whether the pattern declares no fixed size.
func (p *FieldPattern) IsDynamic() bool {
	return p.Size() <= 0
}

// Get builds a concrete field structure from the stored parameters merged
// with extra. Overlapping keys fail with errs.ErrParameterConflict unless
// changesAllowed is true.
func (p *FieldPattern) Get(changesAllowed bool, extra Params) (field.Struct, error) {
	merged, err := p.merge(changesAllowed, extra)
	if err != nil {
		return field.Struct{}, err
	}

	return p.build(merged, nil)
}

// InitParams returns the reconstructable parameter set: the stored parameters
// plus the typename under the "typename" key.
func (p *FieldPattern) InitParams() Params {
	params := p.params.Copy()
	params["typename"] = p.typename

	return params
}

// Equal compares patterns structurally by their reconstructable parameter
// sets.
func (p *FieldPattern) Equal(other *FieldPattern) bool {
	return other != nil && p.InitParams().Equal(other.InitParams())
}

// Hash returns a 64-bit digest of the canonical parameter encoding.
func (p *FieldPattern) Hash() uint64 {
	return xxhash.Sum64String(p.InitParams().canonical())
}

func (p *FieldPattern) merge(changesAllowed bool, extra Params) (Params, error) {
	for _, key := range []string{"start", "stop"} {
		if _, has := extra[key]; has {
			return nil, fmt.Errorf("%w: %q", errs.ErrAutoParameter, key)
		}
	}

	return p.params.Merged(changesAllowed, extra)
}

// build constructs the field structure from merged parameters, applying the
// resolved placement when one is given.
func (p *FieldPattern) build(merged Params, place *layout.Placement) (field.Struct, error) {
	scalar, ok := merged["fmt"].(format.Scalar)
	if !ok {
		return field.Struct{}, fmt.Errorf("field pattern %q: 'fmt' must be a format.Scalar", p.typename)
	}

	opts := []field.Option{field.WithRole(fieldRoles[p.typename])}
	if place != nil {
		opts = append(opts, field.WithStart(place.Start))
		// Fixed fields derive their stop from start and size. The dynamic
		// field needs an explicit stop, unless it runs to the buffer end.
		if sizeOf(merged) <= 0 && !place.Open {
			opts = append(opts, field.WithStop(place.Stop))
		}
	}

	var crcPoly, crcInit = 0x1021, 0
	var crcSet bool

	for key, value := range merged {
		var err error
		switch key {
		case "fmt":
			// Handled above.
		case "bytes_expected":
			err = applyTyped(&opts, key, value, field.WithBytesExpected)
		case "order":
			err = applyTyped(&opts, key, value, func(o endian.Order) field.Option {
				return field.WithOrder(o)
			})
		case "default":
			err = applyTyped(&opts, key, value, func(b []byte) field.Option {
				return field.WithDefault(b)
			})
		case "poly":
			if crcPoly, crcSet = asInt(value), true; !isInt(value) {
				err = typeErr(key, value)
			}
		case "init":
			if crcInit, crcSet = asInt(value), true; !isInt(value) {
				err = typeErr(key, value)
			}
		case "wo_fields":
			err = applyTyped(&opts, key, value, func(names []string) field.Option {
				return field.WithCRCWoFields(names...)
			})
		case "descs":
			err = applyTyped(&opts, key, value, func(d map[int]field.Desc) field.Option {
				return field.WithDescs(d)
			})
		case "compression":
			err = applyTyped(&opts, key, value, func(c format.CompressionType) field.Option {
				return field.WithCompression(c)
			})
		default:
			err = fmt.Errorf("field pattern %q: unknown parameter %q", p.typename, key)
		}
		if err != nil {
			return field.Struct{}, err
		}
	}

	if crcSet {
		opts = append(opts, field.WithCRC(uint16(crcPoly), uint16(crcInit)))
	}

	return field.New(scalar, opts...)
}

// sizeOf reads the declared fixed size out of a parameter set.
func sizeOf(params Params) int {
	if v, has := params["bytes_expected"]; has && isInt(v) {
		return asInt(v)
	}

	return 0
}

func applyTyped[T any](opts *[]field.Option, key string, value any, mk func(T) field.Option) error {
	v, ok := value.(T)
	if !ok {
		return typeErr(key, value)
	}
	*opts = append(*opts, mk(v))

	return nil
}

func typeErr(key string, value any) error {
	return fmt.Errorf("parameter %q has unsupported type %T", key, value)
}

func isInt(v any) bool {
	_, ok := v.(int)

	return ok
}

func asInt(v any) int {
	n, _ := v.(int)

	return n
}
