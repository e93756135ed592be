package elf

import (
	"bytes"

	"github.com/pkg/errors"
)

// cString converts ASCII byte sequence b to string.
// It stops once it finds 0 or reaches end of b.
func cString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		i = len(b)
	}
	return string(b[:i])
}

// StringTable is the contents of an SHT_STRTAB section.
type StringTable []byte

// StringTable returns the contents of the string table section s.
func (f *File) StringTable(s SectionHeader) (StringTable, error) {
	if s.Type != SHT_STRTAB {
		return nil, errors.Wrapf(ErrNotStringTable, "section type %s", s.Type)
	}
	b, err := f.slice(s.Offset, s.Size)
	if err != nil {
		return nil, errors.WithMessage(err, "string table")
	}
	return b, nil
}

// String extracts the string starting at offset start.
func (st StringTable) String(start uint32) (string, error) {
	if uint64(start) >= uint64(len(st)) {
		return "", errors.Wrapf(ErrOutOfBounds, "offset %d is beyond the end of string table", start)
	}
	return cString(st[start:]), nil
}

// SectionNames returns the section name string table, or nil if the file
// has none.
func (f *File) SectionNames() (StringTable, error) {
	idx, err := f.SectionNameIndex()
	if err != nil {
		return nil, err
	}
	if idx == SHN_UNDEF {
		return nil, nil
	}
	s, err := f.Section(idx)
	if err != nil {
		return nil, errors.WithMessage(err, "section name string table")
	}
	return f.StringTable(s)
}
