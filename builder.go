package elf

import (
	"math"

	"github.com/pkg/errors"
)

// Builder assembles a file header. Parsed files are immutable; use
// BuilderFrom to derive a modified copy.
type Builder struct {
	ident Ident
	h     Header64
}

// NewBuilder starts a header for the given class and byte order with
// current versions and table entry sizes filled in.
func NewBuilder(class Class, data Data) *Builder {
	b := &Builder{
		ident: Ident{
			Magic:   Magic,
			Class:   class,
			Data:    data,
			Version: EV_CURRENT,
		},
	}
	b.h.Version = EV_CURRENT
	l := layoutOf(class)
	b.h.Ehsize = uint16(l.header)
	b.h.Phentsize = uint16(l.prog)
	b.h.Shentsize = uint16(l.section)
	return b
}

// BuilderFrom starts a builder holding the identification block and header
// of f.
func BuilderFrom(f *File) *Builder {
	b := &Builder{ident: f.Ident}
	h := f.Header
	ph, sh := h.ProgramTable(), h.SectionTable()
	b.h = Header64{
		Type:      h.FileType(),
		Machine:   h.Arch(),
		Version:   h.FormatVersion(),
		Entry:     h.EntryPoint(),
		Phoff:     ph.Offset,
		Shoff:     sh.Offset,
		Flags:     h.ProcessorFlags(),
		Ehsize:    h.HeaderSize(),
		Phentsize: ph.EntrySize,
		Phnum:     ph.Count,
		Shentsize: sh.EntrySize,
		Shnum:     sh.Count,
		Shstrndx:  h.StringIndex(),
	}
	return b
}

func (b *Builder) Type(t Type) *Builder {
	b.h.Type = t
	return b
}

func (b *Builder) Machine(m Machine) *Builder {
	b.h.Machine = m
	return b
}

func (b *Builder) OSABI(abi OSABI, version uint8) *Builder {
	b.ident.OSABI = abi
	b.ident.ABIVersion = version
	return b
}

// Version sets EI_VERSION and e_version.
func (b *Builder) Version(ident uint8, format uint32) *Builder {
	b.ident.Version = ident
	b.h.Version = format
	return b
}

func (b *Builder) Entry(addr uint64) *Builder {
	b.h.Entry = addr
	return b
}

func (b *Builder) Flags(flags uint32) *Builder {
	b.h.Flags = flags
	return b
}

// ProgramTable sets e_phoff and e_phnum.
func (b *Builder) ProgramTable(off uint64, count uint16) *Builder {
	b.h.Phoff = off
	b.h.Phnum = count
	return b
}

// SectionTable sets e_shoff, e_shnum and e_shstrndx.
func (b *Builder) SectionTable(off uint64, count, strndx uint16) *Builder {
	b.h.Shoff = off
	b.h.Shnum = count
	b.h.Shstrndx = strndx
	return b
}

// Build validates the header and returns a File backed by its own
// serialization.
func (b *Builder) Build() (*File, error) {
	if err := b.ident.validate(); err != nil {
		return nil, err
	}

	var h Header
	switch b.ident.Class {
	case ELFCLASS64:
		h64 := b.h
		h = &h64
	case ELFCLASS32:
		for _, v := range []struct {
			name string
			val  uint64
		}{
			{"entry point", b.h.Entry},
			{"program header offset", b.h.Phoff},
			{"section header offset", b.h.Shoff},
		} {
			if v.val > math.MaxUint32 {
				return nil, errors.Wrapf(ErrValueOverflow, "%s %#x", v.name, v.val)
			}
		}
		h = &Header32{
			Type:      b.h.Type,
			Machine:   b.h.Machine,
			Version:   b.h.Version,
			Entry:     uint32(b.h.Entry),
			Phoff:     uint32(b.h.Phoff),
			Shoff:     uint32(b.h.Shoff),
			Flags:     b.h.Flags,
			Ehsize:    b.h.Ehsize,
			Phentsize: b.h.Phentsize,
			Phnum:     b.h.Phnum,
			Shentsize: b.h.Shentsize,
			Shnum:     b.h.Shnum,
			Shstrndx:  b.h.Shstrndx,
		}
	}

	f := &File{Ident: b.ident, Header: h, opts: defaultOptions()}
	data, err := Serialize(f)
	if err != nil {
		return nil, err
	}
	f.data = data
	return f, nil
}
