package elf

import "github.com/pkg/errors"

var (
	ErrTooShort        = errors.New("not an ELF file, smaller than identification block")
	ErrBadMagic        = errors.New("invalid ELF magic")
	ErrUnknownClass    = errors.New("unknown ELF class")
	ErrUnknownEncoding = errors.New("unknown ELF data encoding")
)

var (
	ErrInconsistentEntrySize = errors.New("table entry size is inconsistent with ELF class")

	// ErrInconsistentHeaderSize also matches ErrInconsistentEntrySize.
	ErrInconsistentHeaderSize = errors.WithMessage(ErrInconsistentEntrySize, "e_ehsize")

	// ErrUnsupportedVersion is only returned when parsing with WithStrictVersion.
	ErrUnsupportedVersion = errors.New("unsupported ELF version")
)

var (
	ErrOutOfBounds     = errors.New("reading data outside boundary")
	ErrInvalidOffset   = errors.New("offset outside of buffer")
	ErrTruncatedTable  = errors.New("table extends past end of file")
	ErrIndexOutOfRange = errors.New("table index out of range")
	ErrNotSymbolTable  = errors.New("section is not a symbol table")
	ErrNotStringTable  = errors.New("section is not a string table")
	ErrValueOverflow   = errors.New("value does not fit ELF class")
)
