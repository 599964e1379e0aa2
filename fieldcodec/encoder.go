// Package fieldcodec implements the pluggable FieldEncoder registry: custom
// per-field wire encodings a FieldSpec can opt into instead of the standard
// ScalarCodec table.
//
// The shipped encoders mirror the Python reference implementation's
// (original_source/src/packerpy/protocols/message_partial.py) FixedPoint,
// Enum, RunLength, and SevenBitASCII encoders, expressed in
// arloliu-mebo's length-prefixed-payload idiom (arloliu-mebo/encoding/tag.go's
// varint tag list, arloliu-mebo/encoding/varstring.go's length-prefixed
// string).
package fieldcodec

import (
	"encoding/binary"
)

// FieldEncoder is a custom wire encoding for a single field. A field whose
// spec includes an encoder takes its wire form entirely from that encoder;
// the framework adds no length prefix of its own.
type FieldEncoder interface {
	// Encode serializes value into its wire form using the given byte order.
	Encode(value any, order binary.ByteOrder) ([]byte, error)
	// Decode reads one value from the front of data and reports how many
	// bytes were consumed.
	Decode(data []byte, order binary.ByteOrder) (value any, consumed int, err error)
	// Size reports the encoder's fixed wire size in bytes, when it has one.
	// ok is false for a variable-size encoding (e.g. RunLength), meaning the
	// field cannot be used in a header or footer, which require a size known
	// ahead of any particular value.
	Size() (n int, ok bool)
}
