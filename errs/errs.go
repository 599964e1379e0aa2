// Package errs defines the sentinel errors shared across the codec, the
// protocol envelope, and the reactive layer.
//
// Call sites wrap a sentinel with detail using fmt.Errorf("%w: ...", errs.ErrX, ...)
// so callers can still errors.Is against the kind while getting a readable message.
package errs

import "errors"

// Field-graph and codec errors.
var (
	// ErrRangeError is returned when a value falls outside its declared bit
	// width or numeric range.
	ErrRangeError = errors.New("range error")
	// ErrTypeError is returned when an attribute has the wrong shape, e.g. a
	// numlist field that is not a slice, or a delimiter-array lookahead that
	// fails mid-element.
	ErrTypeError = errors.New("type error")
	// ErrReferenceError is returned when a dotted path resolves to an
	// attribute that does not exist, or was not yet decoded.
	ErrReferenceError = errors.New("reference error")
	// ErrPathError is returned when a dotted path descends through a
	// non-composite attribute.
	ErrPathError = errors.New("path error")
	// ErrStaticMismatch is returned when a decoded value differs from its
	// declared static constant.
	ErrStaticMismatch = errors.New("static field mismatch")
	// ErrValidationError is returned when a recomputed header/footer value
	// differs from the decoded value.
	ErrValidationError = errors.New("header/footer validation failed")
	// ErrUnknownType is returned when an envelope type name is not present in
	// the protocol's registry.
	ErrUnknownType = errors.New("unknown message type")
	// ErrIncomplete signals that the input is too short to decide; it never
	// reaches the caller, it drives the protocol's buffer cache.
	ErrIncomplete = errors.New("incomplete input")
	// ErrEncoding is returned for internal codec failures, such as invalid
	// UTF-8 in a str field.
	ErrEncoding = errors.New("encoding error")
)

// Structural/declaration errors raised while building a spec or protocol,
// rather than while encoding or decoding a particular message.
var (
	// ErrDuplicateMessageName is returned when a message name is registered
	// twice in the same protocol.
	ErrDuplicateMessageName = errors.New("duplicate message name in protocol registry")
	// ErrBitByteModeMixed is returned when a partial mixes bit-packed and
	// byte-aligned fields.
	ErrBitByteModeMixed = errors.New("partial mixes bit-packed and byte-aligned fields")
	// ErrForwardNumlistReference is returned when a numlist count references a
	// field that has not been decoded yet.
	ErrForwardNumlistReference = errors.New("numlist references a field not yet decoded")
	// ErrNonStaticHeaderField is returned when a header/footer field's type
	// does not have a statically computable size.
	ErrNonStaticHeaderField = errors.New("header/footer field does not have a static size")
	// ErrComputeCycle is returned when computed-field dependencies form a
	// cycle; this module fails fast rather than accept an unresolvable graph.
	ErrComputeCycle = errors.New("cyclic computed-field dependency")
	// ErrInvalidInterval is returned when a scheduler interval is not
	// positive.
	ErrInvalidInterval = errors.New("scheduler interval must be positive")
	// ErrUnknownHandle is returned when cancelling a scheduler or auto-reply
	// handle that does not exist.
	ErrUnknownHandle = errors.New("unknown handle")
)
