package elf

import (
	"github.com/pkg/errors"
)

// Serialize encodes the identification block and file header of f in the
// byte order f declares. Parsing the result yields an equal Ident and
// Header. Table and section contents are not written.
func Serialize(f *File) ([]byte, error) {
	if f == nil || f.Header == nil {
		return nil, errors.New("serializing a file without a header")
	}
	if err := f.Ident.validate(); err != nil {
		return nil, err
	}
	if f.Header.Class() != f.Class {
		return nil, errors.Wrapf(ErrUnknownClass, "%s header in %s file", f.Header.Class(), f.Class)
	}
	if err := validateHeader(f.Header); err != nil {
		return nil, err
	}

	id := f.Ident.bytes()
	b := make([]byte, 0, EI_NIDENT+f.Header.Size())
	b = append(b, id[:]...)
	b, err := writeHeader(b, f.ByteOrder(), f.Header)
	if err != nil {
		return nil, errors.WithMessage(err, "failure to write header")
	}
	return b, nil
}

// MarshalBinary implements encoding.BinaryMarshaler with Serialize.
func (f *File) MarshalBinary() ([]byte, error) {
	return Serialize(f)
}
