package elf

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Type is the e_type field.
type Type uint16

const (
	ET_NONE   Type = 0
	ET_REL    Type = 1
	ET_EXEC   Type = 2
	ET_DYN    Type = 3
	ET_CORE   Type = 4
	ET_LOOS   Type = 0xfe00
	ET_HIOS   Type = 0xfeff
	ET_LOPROC Type = 0xff00
	ET_HIPROC Type = 0xffff
)

func (t Type) String() string {
	switch t {
	case ET_NONE:
		return "NONE (None)"
	case ET_REL:
		return "REL (Relocatable file)"
	case ET_EXEC:
		return "EXEC (Executable file)"
	case ET_DYN:
		return "DYN (Shared object file)"
	case ET_CORE:
		return "CORE (Core file)"
	}
	switch {
	case t >= ET_LOPROC:
		return fmt.Sprintf("Processor Specific: (%#x)", uint16(t))
	case t >= ET_LOOS && t <= ET_HIOS:
		return fmt.Sprintf("OS Specific: (%#x)", uint16(t))
	}
	return fmt.Sprintf("Type(%#x)", uint16(t))
}

// TableDescriptor locates a table of fixed-size entries in the file.
type TableDescriptor struct {
	Offset    uint64
	EntrySize uint16
	Count     uint16
}

// Size returns the size of the whole table in bytes.
func (d TableDescriptor) Size() uint64 {
	return uint64(d.EntrySize) * uint64(d.Count)
}

// Header is the file header that follows the identification block. It is
// either a *Header32 or a *Header64; the accessors widen every field so
// callers rarely need to tell them apart.
type Header interface {
	Class() Class
	FileType() Type
	Arch() Machine
	FormatVersion() uint32
	EntryPoint() uint64
	ProcessorFlags() uint32
	HeaderSize() uint16
	ProgramTable() TableDescriptor
	SectionTable() TableDescriptor
	StringIndex() uint16

	// Size is the on-disk size of the header for its class.
	Size() int
}

type Header32 struct {
	Type      Type
	Machine   Machine
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type Header64 struct {
	Type      Type
	Machine   Machine
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

var (
	_ Header = (*Header32)(nil)
	_ Header = (*Header64)(nil)
)

func (h *Header32) Class() Class           { return ELFCLASS32 }
func (h *Header32) FileType() Type         { return h.Type }
func (h *Header32) Arch() Machine          { return h.Machine }
func (h *Header32) FormatVersion() uint32  { return h.Version }
func (h *Header32) EntryPoint() uint64     { return uint64(h.Entry) }
func (h *Header32) ProcessorFlags() uint32 { return h.Flags }
func (h *Header32) HeaderSize() uint16     { return h.Ehsize }
func (h *Header32) StringIndex() uint16    { return h.Shstrndx }
func (h *Header32) Size() int              { return Header32Size }

func (h *Header32) ProgramTable() TableDescriptor {
	return TableDescriptor{Offset: uint64(h.Phoff), EntrySize: h.Phentsize, Count: h.Phnum}
}

func (h *Header32) SectionTable() TableDescriptor {
	return TableDescriptor{Offset: uint64(h.Shoff), EntrySize: h.Shentsize, Count: h.Shnum}
}

func (h *Header64) Class() Class           { return ELFCLASS64 }
func (h *Header64) FileType() Type         { return h.Type }
func (h *Header64) Arch() Machine          { return h.Machine }
func (h *Header64) FormatVersion() uint32  { return h.Version }
func (h *Header64) EntryPoint() uint64     { return h.Entry }
func (h *Header64) ProcessorFlags() uint32 { return h.Flags }
func (h *Header64) HeaderSize() uint16     { return h.Ehsize }
func (h *Header64) StringIndex() uint16    { return h.Shstrndx }
func (h *Header64) Size() int              { return Header64Size }

func (h *Header64) ProgramTable() TableDescriptor {
	return TableDescriptor{Offset: h.Phoff, EntrySize: h.Phentsize, Count: h.Phnum}
}

func (h *Header64) SectionTable() TableDescriptor {
	return TableDescriptor{Offset: h.Shoff, EntrySize: h.Shentsize, Count: h.Shnum}
}

func readHeader(c *Cursor, id Ident) (Header, error) {
	r := &fieldReader{c: c, order: id.ByteOrder()}

	switch id.Class {
	case ELFCLASS32:
		var h Header32
		if !r.read(&h.Type) ||
			!r.read(&h.Machine) ||
			!r.read(&h.Version) ||
			!r.read(&h.Entry) ||
			!r.read(&h.Phoff) ||
			!r.read(&h.Shoff) ||
			!r.read(&h.Flags) ||
			!r.read(&h.Ehsize) ||
			!r.read(&h.Phentsize) ||
			!r.read(&h.Phnum) ||
			!r.read(&h.Shentsize) ||
			!r.read(&h.Shnum) ||
			!r.read(&h.Shstrndx) {
			return nil, errors.WithMessage(r.err, "failure to read ELF32 header")
		}
		return &h, nil
	case ELFCLASS64:
		var h Header64
		if !r.read(&h.Type) ||
			!r.read(&h.Machine) ||
			!r.read(&h.Version) ||
			!r.read(&h.Entry) ||
			!r.read(&h.Phoff) ||
			!r.read(&h.Shoff) ||
			!r.read(&h.Flags) ||
			!r.read(&h.Ehsize) ||
			!r.read(&h.Phentsize) ||
			!r.read(&h.Phnum) ||
			!r.read(&h.Shentsize) ||
			!r.read(&h.Shnum) ||
			!r.read(&h.Shstrndx) {
			return nil, errors.WithMessage(r.err, "failure to read ELF64 header")
		}
		return &h, nil
	}
	return nil, errors.Wrapf(ErrUnknownClass, "EI_CLASS %d", uint8(id.Class))
}

// layout holds the fixed structure sizes of one ELF class.
type layout struct {
	header, prog, section, sym int
}

func layoutOf(class Class) layout {
	if class == ELFCLASS64 {
		return layout{Header64Size, Prog64Size, Section64Size, Sym64Size}
	}
	return layout{Header32Size, Prog32Size, Section32Size, Sym32Size}
}

func validateHeader(h Header) error {
	l := layoutOf(h.Class())
	if int(h.HeaderSize()) != l.header {
		return errors.Wrapf(ErrInconsistentHeaderSize, "e_ehsize %d, want %d for %s",
			h.HeaderSize(), l.header, h.Class())
	}
	if err := validateEntrySize(h.ProgramTable(), l.prog); err != nil {
		return errors.WithMessage(err, "program header table")
	}
	if err := validateEntrySize(h.SectionTable(), l.section); err != nil {
		return errors.WithMessage(err, "section header table")
	}
	return nil
}

// validateEntrySize accepts a zero entry size for an empty table; linkers
// leave e_phentsize zero in relocatable objects.
func validateEntrySize(d TableDescriptor, want int) error {
	if d.EntrySize == 0 && d.Count == 0 {
		return nil
	}
	if int(d.EntrySize) != want {
		return errors.Wrapf(ErrInconsistentEntrySize, "entry size %d, want %d", d.EntrySize, want)
	}
	return nil
}

func writeHeader(b []byte, order binary.ByteOrder, h Header) ([]byte, error) {
	switch h := h.(type) {
	case *Header32:
		return binary.Append(b, order, h)
	case *Header64:
		return binary.Append(b, order, h)
	}
	return nil, errors.Errorf("unsupported header type %T", h)
}
