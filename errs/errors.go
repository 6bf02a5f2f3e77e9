// Package errs defines sentinel errors for the wirebin library.
//
// All errors are wrapped with fmt.Errorf("%w: ...") at the call site so that
// callers can match them with errors.Is while still getting contextual
// details in the message.
package errs

import "errors"

// Field structure construction errors.
var (
	// ErrZeroStop indicates a field was declared with stop == 0, which is
	// ambiguous between "zero length" and "open ended from byte 0".
	ErrZeroStop = errors.New("'stop' cannot be equal to zero")

	// ErrStopConflict indicates both an explicit stop and a positive
	// bytes_expected were given; only one may determine the geometry.
	ErrStopConflict = errors.New("'bytes_expected' and 'stop' cannot both be set")

	// ErrStartOutOfBounds indicates a negative start that lies closer to the
	// buffer end than the field's own length allows.
	ErrStartOutOfBounds = errors.New("field is out of bounds")

	// ErrWordSizeMismatch indicates a field size that is not an integer
	// number of words.
	ErrWordSizeMismatch = errors.New("'bytes_expected' does not match an integer word count")

	// ErrInvalidCompression indicates payload compression was requested for a
	// field that cannot carry compressed content (fixed size or word size > 1).
	ErrInvalidCompression = errors.New("compression requires a dynamic single-byte-word field")

	// ErrInvalidRoleParams indicates role parameters outside the supported set,
	// e.g. a CRC polynomial the library does not implement.
	ErrInvalidRoleParams = errors.New("invalid role parameters")
)

// Layout resolution errors.
var (
	// ErrMultipleDynamicFields indicates more than one dynamic field in a
	// single layout.
	ErrMultipleDynamicFields = errors.New("only one dynamic field is allowed")
)

// Scalar codec errors.
var (
	// ErrValueOutOfRange indicates a value that cannot be represented in the
	// target scalar format.
	ErrValueOutOfRange = errors.New("value out of range for format")

	// ErrWordMisaligned indicates content whose byte length is not a multiple
	// of the format word size.
	ErrWordMisaligned = errors.New("content length is not a multiple of word size")
)

// Storage errors.
var (
	// ErrContentTooShort indicates extracted content shorter than the sum of
	// the fixed fields.
	ErrContentTooShort = errors.New("bytes content too short")

	// ErrContentTooLong indicates extracted content longer than a fully fixed
	// storage expects.
	ErrContentTooLong = errors.New("bytes content too long")

	// ErrInvalidFieldContent indicates encoded content that fails the owning
	// field's verification.
	ErrInvalidFieldContent = errors.New("invalid content for field")

	// ErrMissingOrExtraFields indicates a field-by-field encode that omits a
	// required field or names an unknown one.
	ErrMissingOrExtraFields = errors.New("missing or extra fields")

	// ErrEmptyMessage indicates a per-field operation on a storage that holds
	// no content yet.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnknownField indicates a field name not present in the storage.
	ErrUnknownField = errors.New("unknown field")

	// ErrStaticMismatch indicates an attempt to change a static field to
	// content different from its default.
	ErrStaticMismatch = errors.New("static field content cannot change")

	// ErrNoSuchRole indicates a role-specific storage operation on a storage
	// without a field of that role.
	ErrNoSuchRole = errors.New("no field with required role")

	// ErrCRCMismatch indicates a stored checksum that does not match the
	// recomputed one.
	ErrCRCMismatch = errors.New("crc mismatch")
)

// Pattern errors.
var (
	// ErrNotConfigured indicates Get was called on a storage pattern before
	// Configure.
	ErrNotConfigured = errors.New("pattern is not configured yet")

	// ErrParameterConflict indicates an override key that collides with a
	// stored pattern parameter while changes are not allowed.
	ErrParameterConflict = errors.New("keyword argument repeated")

	// ErrAutoParameter indicates an override for a parameter that can only be
	// set automatically by the layout resolver.
	ErrAutoParameter = errors.New("parameter can only be set automatically")

	// ErrUnknownTypename indicates a pattern typename with no registered
	// target.
	ErrUnknownTypename = errors.New("unknown pattern typename")

	// ErrUnknownPatternField indicates an override addressed to a sub-pattern
	// name that was never configured.
	ErrUnknownPatternField = errors.New("override for unknown sub-pattern")
)
