package cbor

import "fmt"

// MaxDepth is the deepest level of array/map/tag nesting the decoder will
// follow before failing. A bare top-level scalar is depth 1.
const MaxDepth = 1000

// DepthError is returned when an input nests arrays, maps or tags more than
// MaxDepth levels deep.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("cbor: nesting exceeds maximum depth of %d", e.Limit)
}

// LengthError is returned when a length-prefixed item (byte string, text
// string, definite-length array/map) declares a length that runs past the
// end of the remaining input.
type LengthError struct {
	Field string
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("cbor: insufficient length for %s", e.Field)
}

// UnsupportedSimpleError is returned for any major-7 value that is not
// true, false or null (floats and the other simple values). Reserved
// additional-info values 28-30 are reported as ReservedAdditionalInfoError
// instead, and a "break" stop code outside of an indefinite-length
// array/map as UnexpectedBreakError.
type UnsupportedSimpleError struct {
	AdditionalInfo byte
}

func (e *UnsupportedSimpleError) Error() string {
	return fmt.Sprintf("cbor: unsupported simple value (additional info %d)", e.AdditionalInfo)
}

// ReservedAdditionalInfoError is returned for additional-info values 28-30,
// which RFC 8949 reserves and this decoder treats as malformed input.
type ReservedAdditionalInfoError struct {
	Major          Major
	AdditionalInfo byte
}

func (e *ReservedAdditionalInfoError) Error() string {
	return fmt.Sprintf("cbor: reserved additional info %d for major type %d", e.AdditionalInfo, e.Major)
}

// IndefiniteLengthError is returned when an indefinite-length item appears
// for a major type other than array or map (byte/text strings, for
// instance, must be definite-length under this decoder).
type IndefiniteLengthError struct {
	Major Major
}

func (e *IndefiniteLengthError) Error() string {
	return fmt.Sprintf("cbor: indefinite length not supported for major type %d", e.Major)
}

// NegativeIntegerRangeError is returned when a CBOR negative integer's value
// cannot be represented in the range [math.MinInt64, -1].
type NegativeIntegerRangeError struct{}

func (e *NegativeIntegerRangeError) Error() string {
	return "cbor: negative integer out of representable range"
}

// SizeOverflowError is returned when a declared byte/text string length
// overflows a signed machine size.
type SizeOverflowError struct {
	Field string
}

func (e *SizeOverflowError) Error() string {
	return fmt.Sprintf("cbor: declared length for %s overflows signed size", e.Field)
}

// UnexpectedBreakError is returned when the 0xFF break marker shows up
// somewhere other than terminating an indefinite-length array or map.
type UnexpectedBreakError struct{}

func (e *UnexpectedBreakError) Error() string {
	return "cbor: unexpected break marker"
}

// TypeError is returned by the typed accessors (AsArray, AsMap, ...) when
// the underlying item (after following semantic-tag wrapping) is not of the
// requested kind.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cbor: expected %s, got %s", e.Want, e.Got)
}

// KeyNotFoundError is returned by Map lookups that miss.
type KeyNotFoundError struct {
	Key interface{}
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("cbor: key not found: %v", e.Key)
}
