package elf

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ProgType is the p_type field.
type ProgType uint32

const (
	PT_NULL         ProgType = 0
	PT_LOAD         ProgType = 1
	PT_DYNAMIC      ProgType = 2
	PT_INTERP       ProgType = 3
	PT_NOTE         ProgType = 4
	PT_SHLIB        ProgType = 5
	PT_PHDR         ProgType = 6
	PT_TLS          ProgType = 7
	PT_LOOS         ProgType = 0x60000000
	PT_GNU_EH_FRAME ProgType = 0x6474e550
	PT_GNU_STACK    ProgType = 0x6474e551
	PT_GNU_RELRO    ProgType = 0x6474e552
	PT_GNU_PROPERTY ProgType = 0x6474e553
	PT_HIOS         ProgType = 0x6fffffff
	PT_LOPROC       ProgType = 0x70000000
	PT_HIPROC       ProgType = 0x7fffffff
)

var progTypeNames = map[ProgType]string{
	PT_NULL:         "NULL",
	PT_LOAD:         "LOAD",
	PT_DYNAMIC:      "DYNAMIC",
	PT_INTERP:       "INTERP",
	PT_NOTE:         "NOTE",
	PT_SHLIB:        "SHLIB",
	PT_PHDR:         "PHDR",
	PT_TLS:          "TLS",
	PT_GNU_EH_FRAME: "GNU_EH_FRAME",
	PT_GNU_STACK:    "GNU_STACK",
	PT_GNU_RELRO:    "GNU_RELRO",
	PT_GNU_PROPERTY: "GNU_PROPERTY",
}

func (t ProgType) String() string {
	if s, ok := progTypeNames[t]; ok {
		return s
	}
	switch {
	case t >= PT_LOPROC && t <= PT_HIPROC:
		return fmt.Sprintf("LOPROC+%#x", uint32(t-PT_LOPROC))
	case t >= PT_LOOS && t <= PT_HIOS:
		return fmt.Sprintf("LOOS+%#x", uint32(t-PT_LOOS))
	}
	return fmt.Sprintf("ProgType(%#x)", uint32(t))
}

// ProgFlag is the p_flags field.
type ProgFlag uint32

const (
	PF_X ProgFlag = 0x1
	PF_W ProgFlag = 0x2
	PF_R ProgFlag = 0x4
)

// String renders the flags the way readelf does, e.g. "R E".
func (f ProgFlag) String() string {
	b := []byte("   ")
	if f&PF_R != 0 {
		b[0] = 'R'
	}
	if f&PF_W != 0 {
		b[1] = 'W'
	}
	if f&PF_X != 0 {
		b[2] = 'E'
	}
	return string(b)
}

// ProgramHeader is a program header table entry in class-independent form.
type ProgramHeader struct {
	Type   ProgType
	Flags  ProgFlag
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Prog32 is the on-disk Elf32_Phdr. Flags comes after Memsz.
type Prog32 struct {
	Type   uint32
	Off    uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

// Prog64 is the on-disk Elf64_Phdr. Flags comes right after Type.
type Prog64 struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

func decodeProg32(r *fieldReader) ProgramHeader {
	var p Prog32
	r.read(&p.Type)
	r.read(&p.Off)
	r.read(&p.Vaddr)
	r.read(&p.Paddr)
	r.read(&p.Filesz)
	r.read(&p.Memsz)
	r.read(&p.Flags)
	r.read(&p.Align)
	return ProgramHeader{
		Type:   ProgType(p.Type),
		Flags:  ProgFlag(p.Flags),
		Off:    uint64(p.Off),
		Vaddr:  uint64(p.Vaddr),
		Paddr:  uint64(p.Paddr),
		Filesz: uint64(p.Filesz),
		Memsz:  uint64(p.Memsz),
		Align:  uint64(p.Align),
	}
}

func decodeProg64(r *fieldReader) ProgramHeader {
	var p Prog64
	r.read(&p.Type)
	r.read(&p.Flags)
	r.read(&p.Off)
	r.read(&p.Vaddr)
	r.read(&p.Paddr)
	r.read(&p.Filesz)
	r.read(&p.Memsz)
	r.read(&p.Align)
	return ProgramHeader{
		Type:   ProgType(p.Type),
		Flags:  ProgFlag(p.Flags),
		Off:    p.Off,
		Vaddr:  p.Vaddr,
		Paddr:  p.Paddr,
		Filesz: p.Filesz,
		Memsz:  p.Memsz,
		Align:  p.Align,
	}
}

// ProgramHeaders returns the program header table. An e_phnum of PN_XNUM
// takes the real count from sh_info of section 0.
func (f *File) ProgramHeaders() (*Table[ProgramHeader], error) {
	d := f.Header.ProgramTable()
	count := uint64(d.Count)
	if d.Count == PN_XNUM {
		s0, ok, err := f.section0()
		if err != nil {
			return nil, errors.WithMessage(err, "reading extended program header count")
		}
		if ok {
			count = uint64(s0.Info)
		}
	}

	decode := decodeProg32
	if f.Class == ELFCLASS64 {
		decode = decodeProg64
	}
	t, err := newTable(f, d.Offset, uint64(d.EntrySize), count, layoutOf(f.Class).prog, decode)
	if err != nil {
		return nil, errors.WithMessage(err, "program header table")
	}
	return t, nil
}

// Prog returns program header i.
func (f *File) Prog(i int) (ProgramHeader, error) {
	t, err := f.ProgramHeaders()
	if err != nil {
		return ProgramHeader{}, err
	}
	return t.At(i)
}

// SegmentReader returns a reader over the file image of segment p.
func (f *File) SegmentReader(p ProgramHeader) (*io.SectionReader, error) {
	b, err := f.slice(p.Off, p.Filesz)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s segment", p.Type)
	}
	return io.NewSectionReader(bytesReaderAt(b), 0, int64(len(b))), nil
}
