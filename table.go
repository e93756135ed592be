package elf

import (
	"encoding/binary"
	"iter"
	"math"

	"github.com/pkg/errors"
)

// Table is a bounds-checked view of a table of fixed-size entries. The whole
// table range is checked against the file when the Table is created, so
// entries are decoded lazily and never past the end of the buffer. A Table
// holds no iteration state; All can be called any number of times.
type Table[T any] struct {
	off     uint64
	entsize int
	count   int

	data   []byte
	order  binary.ByteOrder
	decode func(r *fieldReader) T
}

func newTable[T any](f *File, off, entsize, count uint64, want int, decode func(*fieldReader) T) (*Table[T], error) {
	t := &Table[T]{
		off:     off,
		entsize: want,
		data:    f.data,
		order:   f.ByteOrder(),
		decode:  decode,
	}
	if count == 0 {
		return t, nil
	}
	if entsize != uint64(want) {
		return nil, errors.Wrapf(ErrInconsistentEntrySize, "entry size %d, want %d", entsize, want)
	}

	if count > math.MaxUint64/entsize {
		return nil, errors.Wrapf(ErrTruncatedTable, "%d entries of %d bytes overflow", count, entsize)
	}
	size := count * entsize
	end := off + size
	if end < off || end > uint64(len(f.data)) {
		return nil, errors.Wrapf(ErrTruncatedTable, "table [%#x, %#x) past end of %#x byte file", off, off+size, len(f.data))
	}

	t.count = int(count)
	return t, nil
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	return t.count
}

// Descriptor returns the location of the table in the file.
func (t *Table[T]) Descriptor() (offset uint64, entrySize, count int) {
	return t.off, t.entsize, t.count
}

// At decodes entry i.
func (t *Table[T]) At(i int) (T, error) {
	if i < 0 || i >= t.count {
		var zero T
		return zero, errors.Wrapf(ErrIndexOutOfRange, "index %d, table has %d entries", i, t.count)
	}
	return t.at(i), nil
}

func (t *Table[T]) at(i int) T {
	start := t.off + uint64(i)*uint64(t.entsize)
	r := &fieldReader{
		c:     NewCursor(t.data[start : start+uint64(t.entsize)]),
		order: t.order,
	}
	return t.decode(r)
}

// All yields every entry with its index.
func (t *Table[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < t.count; i++ {
			if !yield(i, t.at(i)) {
				return
			}
		}
	}
}

// Collect decodes all entries into a slice.
func (t *Table[T]) Collect() []T {
	out := make([]T, 0, t.count)
	for _, v := range t.All() {
		out = append(out, v)
	}
	return out
}
