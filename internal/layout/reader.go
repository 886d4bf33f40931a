package layout

import (
	"encoding/binary"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/poker"
	"lukechampine.com/uint128"
)

// reader walks a record front to back. The first failure sticks: later reads
// return zero values and err reports the original problem.
type reader struct {
	kind Kind
	buf  []byte
	off  int
	err  error
}

// newReader checks the fixed length and discriminator before any field is read.
func newReader(kind Kind, buf []byte) *reader {
	r := &reader{kind: kind, buf: buf}
	if len(buf) < kind.Size() {
		r.err = truncated(kind, kind.Size(), len(buf))
		return r
	}
	if !HasDiscriminator(buf, kind) {
		r.err = &DecodeError{Kind: kind, Field: "discriminator", Err: ErrDiscriminator}
		return r
	}
	r.off = DiscriminatorSize
	return r
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = truncated(r.kind, r.off+n, len(r.buf))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) fail(field string, offset int, value uint64, err error) {
	if r.err == nil {
		r.err = &DecodeError{Kind: r.kind, Field: field, Offset: offset, Value: value, Err: err}
	}
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

func (r *reader) u128() uint128.Uint128 {
	b := r.take(16)
	if b == nil {
		return uint128.Zero
	}
	return uint128.FromBytes(b)
}

func (r *reader) bytes32() [32]byte {
	var out [32]byte
	copy(out[:], r.take(32))
	return out
}

func (r *reader) address() address.Address {
	return address.Address(r.bytes32())
}

func (r *reader) bool(field string) bool {
	at := r.off
	v := r.u8()
	if v > 1 {
		r.fail(field, at, uint64(v), ErrInvalidValue)
	}
	return v == 1
}

// variant reads a one-byte enum tag that must be below n.
func (r *reader) variant(field string, n uint8) uint8 {
	at := r.off
	v := r.u8()
	if v >= n {
		r.fail(field, at, uint64(v), ErrUnknownVariant)
	}
	return v
}

// card reads a card byte: 0..51, or the 255 sentinel.
func (r *reader) card(field string) poker.Card {
	at := r.off
	c := poker.Card(r.u8())
	if !c.Valid() && c != poker.NoCard {
		r.fail(field, at, uint64(c), ErrInvalidValue)
		return poker.NoCard
	}
	return c
}

// writer appends little-endian fields; encoders mirror the readers above.
type writer struct {
	buf []byte
}

func newWriter(kind Kind) *writer {
	d := kind.Discriminator()
	w := &writer{buf: make([]byte, 0, kind.Size())}
	w.buf = append(w.buf, d[:]...)
	return w
}

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *writer) i64(v int64) { w.u64(uint64(v)) }
func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *writer) card(c poker.Card) { w.u8(uint8(c)) }

func (w *writer) u128(v uint128.Uint128) {
	var b [16]byte
	v.PutBytes(b[:])
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
