package elf

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Cursor reads fixed-width fields from a byte buffer. A failed read leaves
// the position unchanged.
type Cursor struct {
	buf []byte
	pos int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// SeekTo moves the read position to off, which must lie in [0, len(buf)].
func (c *Cursor) SeekTo(off int64) error {
	if off < 0 || off > int64(len(c.buf)) {
		return errors.Wrapf(ErrInvalidOffset, "seek to %d in buffer of %d bytes", off, len(c.buf))
	}
	c.pos = int(off)
	return nil
}

func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, errors.Wrapf(ErrOutOfBounds, "reading %d bytes at offset %d, %d remaining", n, c.pos, c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Bytes returns the next n bytes. The result aliases the underlying buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.next(n)
}

func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) Uint16(order binary.ByteOrder) (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

func (c *Cursor) Uint32(order binary.ByteOrder) (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

func (c *Cursor) Uint64(order binary.ByteOrder) (uint64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(b), nil
}

// Word reads an address-sized field: 4 bytes for ELFCLASS32 and 8 bytes
// for ELFCLASS64.
func (c *Cursor) Word(order binary.ByteOrder, class Class) (uint64, error) {
	if class == ELFCLASS64 {
		return c.Uint64(order)
	}
	v, err := c.Uint32(order)
	return uint64(v), err
}

// fieldReader decodes a sequence of fields, stopping at the first error.
// The width of each field follows the Go type of its target.
type fieldReader struct {
	c     *Cursor
	order binary.ByteOrder
	err   error
}

func (r *fieldReader) read(data any) bool {
	if r.err != nil {
		return false
	}
	c, order := r.c, r.order
	switch v := data.(type) {
	case *uint8:
		*v, r.err = c.Uint8()
	case *uint16:
		*v, r.err = c.Uint16(order)
	case *uint32:
		*v, r.err = c.Uint32(order)
	case *uint64:
		*v, r.err = c.Uint64(order)
	case *Type:
		var x uint16
		x, r.err = c.Uint16(order)
		*v = Type(x)
	case *Machine:
		var x uint16
		x, r.err = c.Uint16(order)
		*v = Machine(x)
	default:
		r.err = errors.Errorf("unsupported field type %T", data)
	}
	return r.err == nil
}
