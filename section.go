package elf

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// SectionType is the sh_type field.
type SectionType uint32

const (
	SHT_NULL           SectionType = 0
	SHT_PROGBITS       SectionType = 1
	SHT_SYMTAB         SectionType = 2
	SHT_STRTAB         SectionType = 3
	SHT_RELA           SectionType = 4
	SHT_HASH           SectionType = 5
	SHT_DYNAMIC        SectionType = 6
	SHT_NOTE           SectionType = 7
	SHT_NOBITS         SectionType = 8
	SHT_REL            SectionType = 9
	SHT_SHLIB          SectionType = 10
	SHT_DYNSYM         SectionType = 11
	SHT_INIT_ARRAY     SectionType = 14
	SHT_FINI_ARRAY     SectionType = 15
	SHT_PREINIT_ARRAY  SectionType = 16
	SHT_GROUP          SectionType = 17
	SHT_SYMTAB_SHNDX   SectionType = 18
	SHT_LOOS           SectionType = 0x60000000
	SHT_GNU_ATTRIBUTES SectionType = 0x6ffffff5
	SHT_GNU_HASH       SectionType = 0x6ffffff6
	SHT_GNU_LIBLIST    SectionType = 0x6ffffff7
	SHT_GNU_VERDEF     SectionType = 0x6ffffffd
	SHT_GNU_VERNEED    SectionType = 0x6ffffffe
	SHT_GNU_VERSYM     SectionType = 0x6fffffff
	SHT_HIOS           SectionType = 0x6fffffff
	SHT_LOPROC         SectionType = 0x70000000
	SHT_HIPROC         SectionType = 0x7fffffff
	SHT_LOUSER         SectionType = 0x80000000
	SHT_HIUSER         SectionType = 0xffffffff
)

var sectionTypeNames = map[SectionType]string{
	SHT_NULL:           "NULL",
	SHT_PROGBITS:       "PROGBITS",
	SHT_SYMTAB:         "SYMTAB",
	SHT_STRTAB:         "STRTAB",
	SHT_RELA:           "RELA",
	SHT_HASH:           "HASH",
	SHT_DYNAMIC:        "DYNAMIC",
	SHT_NOTE:           "NOTE",
	SHT_NOBITS:         "NOBITS",
	SHT_REL:            "REL",
	SHT_SHLIB:          "SHLIB",
	SHT_DYNSYM:         "DYNSYM",
	SHT_INIT_ARRAY:     "INIT_ARRAY",
	SHT_FINI_ARRAY:     "FINI_ARRAY",
	SHT_PREINIT_ARRAY:  "PREINIT_ARRAY",
	SHT_GROUP:          "GROUP",
	SHT_SYMTAB_SHNDX:   "SYMTAB_SHNDX",
	SHT_GNU_ATTRIBUTES: "GNU_ATTRIBUTES",
	SHT_GNU_HASH:       "GNU_HASH",
	SHT_GNU_LIBLIST:    "GNU_LIBLIST",
	SHT_GNU_VERDEF:     "VERDEF",
	SHT_GNU_VERNEED:    "VERNEED",
	SHT_GNU_VERSYM:     "VERSYM",
}

func (t SectionType) String() string {
	if s, ok := sectionTypeNames[t]; ok {
		return s
	}
	switch {
	case t >= SHT_LOUSER:
		return fmt.Sprintf("LOUSER+%#x", uint32(t-SHT_LOUSER))
	case t >= SHT_LOPROC:
		return fmt.Sprintf("LOPROC+%#x", uint32(t-SHT_LOPROC))
	case t >= SHT_LOOS:
		return fmt.Sprintf("LOOS+%#x", uint32(t-SHT_LOOS))
	}
	return fmt.Sprintf("SectionType(%#x)", uint32(t))
}

// SectionFlag is the sh_flags field.
type SectionFlag uint64

const (
	SHF_WRITE            SectionFlag = 0x1
	SHF_ALLOC            SectionFlag = 0x2
	SHF_EXECINSTR        SectionFlag = 0x4
	SHF_MERGE            SectionFlag = 0x10
	SHF_STRINGS          SectionFlag = 0x20
	SHF_INFO_LINK        SectionFlag = 0x40
	SHF_LINK_ORDER       SectionFlag = 0x80
	SHF_OS_NONCONFORMING SectionFlag = 0x100
	SHF_GROUP            SectionFlag = 0x200
	SHF_TLS              SectionFlag = 0x400
	SHF_COMPRESSED       SectionFlag = 0x800
)

var sectionFlagKeys = []struct {
	flag SectionFlag
	key  byte
}{
	{SHF_WRITE, 'W'},
	{SHF_ALLOC, 'A'},
	{SHF_EXECINSTR, 'X'},
	{SHF_MERGE, 'M'},
	{SHF_STRINGS, 'S'},
	{SHF_INFO_LINK, 'I'},
	{SHF_LINK_ORDER, 'L'},
	{SHF_OS_NONCONFORMING, 'O'},
	{SHF_GROUP, 'G'},
	{SHF_TLS, 'T'},
	{SHF_COMPRESSED, 'C'},
}

// String renders the flags as readelf's key letters, e.g. "AX".
func (f SectionFlag) String() string {
	var b []byte
	for _, k := range sectionFlagKeys {
		if f&k.flag != 0 {
			b = append(b, k.key)
		}
	}
	return string(b)
}

// SectionHeader is a section header table entry in class-independent form.
// Name is an offset into the section name string table.
type SectionHeader struct {
	Name      uint32
	Type      SectionType
	Flags     SectionFlag
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// Section32 is the on-disk Elf32_Shdr.
type Section32 struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Off       uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32
}

// Section64 is the on-disk Elf64_Shdr.
type Section64 struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Off       uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

func decodeSection32(r *fieldReader) SectionHeader {
	var s Section32
	r.read(&s.Name)
	r.read(&s.Type)
	r.read(&s.Flags)
	r.read(&s.Addr)
	r.read(&s.Off)
	r.read(&s.Size)
	r.read(&s.Link)
	r.read(&s.Info)
	r.read(&s.Addralign)
	r.read(&s.Entsize)
	return SectionHeader{
		Name:      s.Name,
		Type:      SectionType(s.Type),
		Flags:     SectionFlag(s.Flags),
		Addr:      uint64(s.Addr),
		Offset:    uint64(s.Off),
		Size:      uint64(s.Size),
		Link:      s.Link,
		Info:      s.Info,
		Addralign: uint64(s.Addralign),
		Entsize:   uint64(s.Entsize),
	}
}

func decodeSection64(r *fieldReader) SectionHeader {
	var s Section64
	r.read(&s.Name)
	r.read(&s.Type)
	r.read(&s.Flags)
	r.read(&s.Addr)
	r.read(&s.Off)
	r.read(&s.Size)
	r.read(&s.Link)
	r.read(&s.Info)
	r.read(&s.Addralign)
	r.read(&s.Entsize)
	return SectionHeader{
		Name:      s.Name,
		Type:      SectionType(s.Type),
		Flags:     SectionFlag(s.Flags),
		Addr:      s.Addr,
		Offset:    s.Off,
		Size:      s.Size,
		Link:      s.Link,
		Info:      s.Info,
		Addralign: s.Addralign,
		Entsize:   s.Entsize,
	}
}

func (f *File) decodeSection() func(*fieldReader) SectionHeader {
	if f.Class == ELFCLASS64 {
		return decodeSection64
	}
	return decodeSection32
}

// section0 reads the first section header, which carries the real counts
// when extended numbering is in use. ok is false when the file has no
// readable section 0.
func (f *File) section0() (SectionHeader, bool, error) {
	d := f.Header.SectionTable()
	want := layoutOf(f.Class).section
	if d.Offset == 0 || int(d.EntrySize) != want {
		return SectionHeader{}, false, nil
	}
	b, err := f.slice(d.Offset, uint64(want))
	if err != nil {
		return SectionHeader{}, false, errors.Wrapf(ErrTruncatedTable, "section 0 at %#x", d.Offset)
	}
	r := &fieldReader{c: NewCursor(b), order: f.ByteOrder()}
	return f.decodeSection()(r), true, nil
}

// SectionHeaders returns the section header table. When e_shnum is zero and
// e_shoff is not, the count is taken from sh_size of section 0.
func (f *File) SectionHeaders() (*Table[SectionHeader], error) {
	d := f.Header.SectionTable()
	count := uint64(d.Count)
	if d.Count == 0 && d.Offset != 0 {
		// An unreadable section 0 means there is no extended count; an
		// empty table is still valid.
		if s0, ok, err := f.section0(); err == nil && ok {
			count = s0.Size
		}
	}

	t, err := newTable(f, d.Offset, uint64(d.EntrySize), count, layoutOf(f.Class).section, f.decodeSection())
	if err != nil {
		return nil, errors.WithMessage(err, "section header table")
	}
	return t, nil
}

// Section returns section header i.
func (f *File) Section(i int) (SectionHeader, error) {
	t, err := f.SectionHeaders()
	if err != nil {
		return SectionHeader{}, err
	}
	return t.At(i)
}

// SectionNameIndex returns the index of the section name string table,
// resolving SHN_XINDEX through sh_link of section 0.
func (f *File) SectionNameIndex() (int, error) {
	idx := f.Header.StringIndex()
	if idx != SHN_XINDEX {
		return int(idx), nil
	}
	s0, ok, err := f.section0()
	if err != nil {
		return 0, errors.WithMessage(err, "reading extended string table index")
	}
	if !ok {
		return 0, errors.Wrap(ErrInvalidOffset, "e_shstrndx is SHN_XINDEX but there is no section 0")
	}
	return int(s0.Link), nil
}

// SectionReader returns a reader over the file contents of s. SHT_NOBITS
// sections occupy no file space and read as zeros.
func (f *File) SectionReader(s SectionHeader) (*io.SectionReader, error) {
	if s.Type == SHT_NOBITS {
		if s.Size > math.MaxInt64 {
			return nil, errors.Wrapf(ErrOutOfBounds, "NOBITS section of %#x bytes", s.Size)
		}
		return io.NewSectionReader(zeroReaderAt{}, 0, int64(s.Size)), nil
	}
	b, err := f.slice(s.Offset, s.Size)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s section", s.Type)
	}
	return io.NewSectionReader(bytesReaderAt(b), 0, int64(len(b))), nil
}
