package elf

import (
	"fmt"

	"github.com/pkg/errors"
)

// SymBind is the binding half of st_info.
type SymBind uint8

const (
	STB_LOCAL  SymBind = 0
	STB_GLOBAL SymBind = 1
	STB_WEAK   SymBind = 2
	STB_LOOS   SymBind = 10
	STB_HIOS   SymBind = 12
	STB_LOPROC SymBind = 13
	STB_HIPROC SymBind = 15
)

func (b SymBind) String() string {
	switch b {
	case STB_LOCAL:
		return "LOCAL"
	case STB_GLOBAL:
		return "GLOBAL"
	case STB_WEAK:
		return "WEAK"
	}
	return fmt.Sprintf("<unknown>: %d", uint8(b))
}

// SymType is the type half of st_info.
type SymType uint8

const (
	STT_NOTYPE  SymType = 0
	STT_OBJECT  SymType = 1
	STT_FUNC    SymType = 2
	STT_SECTION SymType = 3
	STT_FILE    SymType = 4
	STT_COMMON  SymType = 5
	STT_TLS     SymType = 6
	STT_LOOS    SymType = 10
	STT_HIOS    SymType = 12
	STT_LOPROC  SymType = 13
	STT_HIPROC  SymType = 15
)

var symTypeNames = map[SymType]string{
	STT_NOTYPE:  "NOTYPE",
	STT_OBJECT:  "OBJECT",
	STT_FUNC:    "FUNC",
	STT_SECTION: "SECTION",
	STT_FILE:    "FILE",
	STT_COMMON:  "COMMON",
	STT_TLS:     "TLS",
}

func (t SymType) String() string {
	if s, ok := symTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("<unknown>: %d", uint8(t))
}

// SymVis is the visibility held in the low bits of st_other.
type SymVis uint8

const (
	STV_DEFAULT   SymVis = 0
	STV_INTERNAL  SymVis = 1
	STV_HIDDEN    SymVis = 2
	STV_PROTECTED SymVis = 3
)

func (v SymVis) String() string {
	switch v {
	case STV_DEFAULT:
		return "DEFAULT"
	case STV_INTERNAL:
		return "INTERNAL"
	case STV_HIDDEN:
		return "HIDDEN"
	case STV_PROTECTED:
		return "PROTECTED"
	}
	return fmt.Sprintf("SymVis(%d)", uint8(v))
}

// Symbol is a symbol table entry in class-independent form. Name is an
// offset into the string table named by the symbol section's sh_link.
type Symbol struct {
	Name  uint32
	Value uint64
	Size  uint64
	Info  uint8
	Other uint8
	Shndx uint16
}

func (s Symbol) Bind() SymBind {
	return SymBind(s.Info >> 4)
}

func (s Symbol) Type() SymType {
	return SymType(s.Info & 0xf)
}

func (s Symbol) Visibility() SymVis {
	return SymVis(s.Other & 0x3)
}

// SymInfo packs a binding and type into an st_info byte.
func SymInfo(b SymBind, t SymType) uint8 {
	return uint8(b)<<4 | uint8(t)&0xf
}

// Sym32 is the on-disk Elf32_Sym.
type Sym32 struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

// Sym64 is the on-disk Elf64_Sym. The byte-sized fields come before Value.
type Sym64 struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

func decodeSym32(r *fieldReader) Symbol {
	var s Sym32
	r.read(&s.Name)
	r.read(&s.Value)
	r.read(&s.Size)
	r.read(&s.Info)
	r.read(&s.Other)
	r.read(&s.Shndx)
	return Symbol{
		Name:  s.Name,
		Value: uint64(s.Value),
		Size:  uint64(s.Size),
		Info:  s.Info,
		Other: s.Other,
		Shndx: s.Shndx,
	}
}

func decodeSym64(r *fieldReader) Symbol {
	var s Sym64
	r.read(&s.Name)
	r.read(&s.Info)
	r.read(&s.Other)
	r.read(&s.Shndx)
	r.read(&s.Value)
	r.read(&s.Size)
	return Symbol{
		Name:  s.Name,
		Value: s.Value,
		Size:  s.Size,
		Info:  s.Info,
		Other: s.Other,
		Shndx: s.Shndx,
	}
}

// Symbols returns the entries of the symbol table held in section s, which
// must be of type SHT_SYMTAB or SHT_DYNSYM.
func (f *File) Symbols(s SectionHeader) (*Table[Symbol], error) {
	if s.Type != SHT_SYMTAB && s.Type != SHT_DYNSYM {
		return nil, errors.Wrapf(ErrNotSymbolTable, "section type %s", s.Type)
	}

	decode := decodeSym32
	if f.Class == ELFCLASS64 {
		decode = decodeSym64
	}

	want := layoutOf(f.Class).sym
	if s.Size == 0 {
		return newTable(f, s.Offset, s.Entsize, 0, want, decode)
	}
	if s.Entsize != uint64(want) || s.Size%s.Entsize != 0 {
		return nil, errors.Wrapf(ErrInconsistentEntrySize, "symbol section of %d bytes with entry size %d, want %d",
			s.Size, s.Entsize, want)
	}

	t, err := newTable(f, s.Offset, s.Entsize, s.Size/s.Entsize, want, decode)
	if err != nil {
		return nil, errors.WithMessage(err, "symbol table")
	}
	return t, nil
}
