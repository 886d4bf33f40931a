package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated means the buffer is shorter than the record's fixed length.
	ErrTruncated = errors.New("truncated buffer")
	// ErrUnknownVariant means an enum tag is outside its known set.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrDiscriminator means the leading 8 bytes name a different record kind.
	ErrDiscriminator = errors.New("discriminator mismatch")
	// ErrInvalidValue means a field holds a value its type cannot represent
	// (a card byte of 60, a bool of 2, a vector longer than its bound).
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvariant means every field decoded but the record as a whole is inconsistent.
	ErrInvariant = errors.New("invariant violated")
)

// DecodeError describes where decoding failed. Offset is absolute within the
// buffer, discriminator included. Use errors.Is against the Err* sentinels.
type DecodeError struct {
	Kind   Kind
	Field  string
	Offset int
	Value  uint64
	Err    error

	// Want and Got are set for truncation.
	Want, Got int
	// Detail is set for invariant violations.
	Detail string
}

func (e *DecodeError) Error() string {
	switch {
	case errors.Is(e.Err, ErrTruncated):
		return fmt.Sprintf("decode %s: %v: need %d bytes, got %d", e.Kind, e.Err, e.Want, e.Got)
	case errors.Is(e.Err, ErrDiscriminator):
		return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
	case errors.Is(e.Err, ErrInvariant):
		return fmt.Sprintf("decode %s: %v: %s", e.Kind, e.Err, e.Detail)
	default:
		return fmt.Sprintf("decode %s: %s at offset %d: %v %d", e.Kind, e.Field, e.Offset, e.Err, e.Value)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func truncated(kind Kind, want, got int) *DecodeError {
	return &DecodeError{Kind: kind, Err: ErrTruncated, Want: want, Got: got}
}

func invariant(kind Kind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Err: ErrInvariant, Detail: fmt.Sprintf(format, args...)}
}
