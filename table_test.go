package elf

import (
	"bytes"
	stdelf "debug/elf"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleStrtab = []byte("\x00main\x00data\x00")

var sampleSymbols = []Symbol{
	{},
	{Name: 1, Value: 0x401000, Size: 16, Info: SymInfo(STB_GLOBAL, STT_FUNC), Shndx: 1},
	{Name: 6, Value: 0x402000, Size: 8, Info: SymInfo(STB_LOCAL, STT_OBJECT), Other: uint8(STV_HIDDEN), Shndx: 4},
}

// sampleImage returns a small executable with two segments and the sections
// NULL, .text, .strtab, .symtab and .bss.
func sampleImage(t *testing.T, class Class, data Data) *image {
	t.Helper()
	l := layoutOf(class)
	im := &image{
		class:   class,
		data:    data,
		typ:     ET_EXEC,
		machine: EM_X86_64,
		entry:   0x401000,
		progs:   make([]ProgramHeader, 2),
	}
	po := im.payloadOffset()

	text := bytes.Repeat([]byte{0x90}, 16)
	syms := encodeSymbols(t, class, data.ByteOrder(), sampleSymbols)
	im.payload = append(append(append([]byte{}, text...), sampleStrtab...), syms...)

	strOff := po + uint64(len(text))
	symOff := strOff + uint64(len(sampleStrtab))
	end := po + uint64(len(im.payload))

	im.progs[0] = ProgramHeader{
		Type: PT_LOAD, Flags: PF_R | PF_X, Off: po, Vaddr: 0x401000, Paddr: 0x401000,
		Filesz: 16, Memsz: 16, Align: 0x1000,
	}
	im.progs[1] = ProgramHeader{Type: PT_GNU_STACK, Flags: PF_R | PF_W, Align: 16}

	im.sections = []SectionHeader{
		{},
		{Type: SHT_PROGBITS, Flags: SHF_ALLOC | SHF_EXECINSTR, Addr: 0x401000, Offset: po, Size: 16, Addralign: 16},
		{Type: SHT_STRTAB, Offset: strOff, Size: uint64(len(sampleStrtab)), Addralign: 1},
		{Type: SHT_SYMTAB, Offset: symOff, Size: uint64(len(syms)), Link: 2, Info: 2, Addralign: 8, Entsize: uint64(l.sym)},
		{Type: SHT_NOBITS, Flags: SHF_ALLOC | SHF_WRITE, Addr: 0x402000, Offset: end, Size: 0x100, Addralign: 32},
	}
	return im
}

var classes = []struct {
	name  string
	class Class
	data  Data
}{
	{"ELF32LSB", ELFCLASS32, ELFDATA2LSB},
	{"ELF32MSB", ELFCLASS32, ELFDATA2MSB},
	{"ELF64LSB", ELFCLASS64, ELFDATA2LSB},
	{"ELF64MSB", ELFCLASS64, ELFDATA2MSB},
}

func TestTables_MatchDebugElf(t *testing.T) {
	for _, tt := range classes {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleImage(t, tt.class, tt.data).build(t)

			f, err := Parse(b)
			require.NoError(t, err)
			std, err := stdelf.NewFile(bytes.NewReader(b))
			require.NoError(t, err)

			progs, err := f.ProgramHeaders()
			require.NoError(t, err)
			require.Equal(t, len(std.Progs), progs.Len())
			for i, p := range progs.All() {
				want := std.Progs[i].ProgHeader
				assert.Equal(t, uint32(want.Type), uint32(p.Type))
				assert.Equal(t, uint32(want.Flags), uint32(p.Flags))
				assert.Equal(t, want.Off, p.Off)
				assert.Equal(t, want.Vaddr, p.Vaddr)
				assert.Equal(t, want.Paddr, p.Paddr)
				assert.Equal(t, want.Filesz, p.Filesz)
				assert.Equal(t, want.Memsz, p.Memsz)
				assert.Equal(t, want.Align, p.Align)
			}

			sections, err := f.SectionHeaders()
			require.NoError(t, err)
			require.Equal(t, len(std.Sections), sections.Len())
			for i, s := range sections.All() {
				want := std.Sections[i].SectionHeader
				assert.Equal(t, uint32(want.Type), uint32(s.Type))
				assert.Equal(t, uint64(want.Flags), uint64(s.Flags))
				assert.Equal(t, want.Addr, s.Addr)
				assert.Equal(t, want.Offset, s.Offset)
				assert.Equal(t, want.Size, s.Size)
				assert.Equal(t, want.Link, s.Link)
				assert.Equal(t, want.Info, s.Info)
				assert.Equal(t, want.Addralign, s.Addralign)
				assert.Equal(t, want.Entsize, s.Entsize)
			}

			symtab, err := f.Section(3)
			require.NoError(t, err)
			syms, err := f.Symbols(symtab)
			require.NoError(t, err)
			assert.Equal(t, sampleSymbols, syms.Collect())

			stdSyms, err := std.Symbols()
			require.NoError(t, err)
			// debug/elf drops the null symbol.
			require.Len(t, stdSyms, len(sampleSymbols)-1)
			for i, want := range stdSyms {
				got := sampleSymbols[i+1]
				assert.Equal(t, want.Value, got.Value)
				assert.Equal(t, want.Size, got.Size)
				assert.Equal(t, want.Info, got.Info)
				assert.Equal(t, want.Other, got.Other)
				assert.Equal(t, uint16(want.Section), got.Shndx)
				assert.Equal(t, uint8(stdelf.ST_BIND(want.Info)), uint8(got.Bind()))
				assert.Equal(t, uint8(stdelf.ST_TYPE(want.Info)), uint8(got.Type()))
			}
			assert.Equal(t, "main", stdSyms[0].Name)
		})
	}
}

func TestTable_At(t *testing.T) {
	f, err := Parse(sampleImage(t, ELFCLASS64, ELFDATA2LSB).build(t))
	require.NoError(t, err)

	sections, err := f.SectionHeaders()
	require.NoError(t, err)
	require.Equal(t, 5, sections.Len())

	s, err := sections.At(4)
	require.NoError(t, err)
	assert.Equal(t, SHT_NOBITS, s.Type)
	assert.Equal(t, "WA", s.Flags.String())

	for _, i := range []int{-1, 5, 1 << 20} {
		_, err := sections.At(i)
		require.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}

	_, err = f.Section(5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	p, err := f.Prog(0)
	require.NoError(t, err)
	assert.Equal(t, PT_LOAD, p.Type)
	assert.Equal(t, "R E", p.Flags.String())

	_, err = f.Prog(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestTable_AllIsRestartable(t *testing.T) {
	f, err := Parse(sampleImage(t, ELFCLASS32, ELFDATA2LSB).build(t))
	require.NoError(t, err)

	sections, err := f.SectionHeaders()
	require.NoError(t, err)

	var seen []int
	for i := range sections.All() {
		if i == 2 {
			break
		}
		seen = append(seen, i)
	}
	assert.Equal(t, []int{0, 1}, seen)

	// A second walk starts from the first entry again.
	assert.Len(t, sections.Collect(), 5)

	off, entsize, count := sections.Descriptor()
	assert.Equal(t, Section32Size, entsize)
	assert.Equal(t, 5, count)
	assert.NotZero(t, off)
}

func TestTables_Empty(t *testing.T) {
	f, err := Parse(x86_64Header())
	require.NoError(t, err)

	progs, err := f.ProgramHeaders()
	require.NoError(t, err)
	assert.Equal(t, 0, progs.Len())
	assert.Empty(t, progs.Collect())

	sections, err := f.SectionHeaders()
	require.NoError(t, err)
	assert.Equal(t, 0, sections.Len())

	n := 0
	for range sections.All() {
		n++
	}
	assert.Zero(t, n)
}

func TestTables_Truncated(t *testing.T) {
	for _, tt := range classes {
		t.Run(tt.name, func(t *testing.T) {
			im := sampleImage(t, tt.class, tt.data)
			b := im.build(t)

			// The section header table is the last thing in the image.
			f, err := Parse(b[:len(b)-1])
			require.NoError(t, err)
			_, err = f.SectionHeaders()
			require.ErrorIs(t, err, ErrTruncatedTable)

			progs, err := f.ProgramHeaders()
			require.NoError(t, err)
			assert.Equal(t, 2, progs.Len())

			// Only the header and part of the program headers remain.
			l := layoutOf(tt.class)
			f, err = Parse(b[:l.header+l.prog+1])
			require.NoError(t, err)
			_, err = f.ProgramHeaders()
			require.ErrorIs(t, err, ErrTruncatedTable)
		})
	}
}

func TestTables_OffsetOverflow(t *testing.T) {
	b := x86_64Header()
	binary.LittleEndian.PutUint64(b[32:], 0xffffffffffffff00)
	b = putHalf(b, binary.LittleEndian, headerHalves[ELFCLASS64].phnum, 16)

	f, err := Parse(b)
	require.NoError(t, err)
	_, err = f.ProgramHeaders()
	require.ErrorIs(t, err, ErrTruncatedTable)
}

func TestExtendedProgramCount(t *testing.T) {
	for _, tt := range classes {
		t.Run(tt.name, func(t *testing.T) {
			im := sampleImage(t, tt.class, tt.data)
			im.sections[0].Info = uint32(len(im.progs))
			b := im.build(t)
			b = putHalf(b, tt.data.ByteOrder(), headerHalves[tt.class].phnum, PN_XNUM)

			f, err := Parse(b)
			require.NoError(t, err)
			assert.Equal(t, uint16(PN_XNUM), f.Header.ProgramTable().Count)

			progs, err := f.ProgramHeaders()
			require.NoError(t, err)
			assert.Equal(t, 2, progs.Len())

			p, err := progs.At(1)
			require.NoError(t, err)
			assert.Equal(t, PT_GNU_STACK, p.Type)
		})
	}
}

func TestExtendedProgramCount_NoSections(t *testing.T) {
	// Without a section 0 the count stays at PN_XNUM, which does not fit.
	im := &image{class: ELFCLASS64, data: ELFDATA2LSB, typ: ET_CORE, progs: make([]ProgramHeader, 1)}
	b := im.build(t)
	b = putHalf(b, binary.LittleEndian, headerHalves[ELFCLASS64].phnum, PN_XNUM)

	f, err := Parse(b)
	require.NoError(t, err)
	_, err = f.ProgramHeaders()
	require.ErrorIs(t, err, ErrTruncatedTable)
}

func TestExtendedSectionCount(t *testing.T) {
	for _, tt := range classes {
		t.Run(tt.name, func(t *testing.T) {
			im := sampleImage(t, tt.class, tt.data)
			im.sections[0].Size = uint64(len(im.sections))
			b := im.build(t)
			b = putHalf(b, tt.data.ByteOrder(), headerHalves[tt.class].shnum, 0)

			f, err := Parse(b)
			require.NoError(t, err)
			assert.Equal(t, uint16(0), f.Header.SectionTable().Count)

			sections, err := f.SectionHeaders()
			require.NoError(t, err)
			assert.Equal(t, 5, sections.Len())

			s, err := sections.At(3)
			require.NoError(t, err)
			assert.Equal(t, SHT_SYMTAB, s.Type)
		})
	}
}

func TestExtendedSectionCount_UnreadableSection0(t *testing.T) {
	b := x86_64Header()
	binary.LittleEndian.PutUint64(b[40:], 0x4000)

	f, err := Parse(b)
	require.NoError(t, err)

	sections, err := f.SectionHeaders()
	require.NoError(t, err)
	assert.Equal(t, 0, sections.Len())
}

func TestSectionNameIndex(t *testing.T) {
	im := sampleImage(t, ELFCLASS64, ELFDATA2MSB)
	im.sections[0].Link = 2
	b := im.build(t)
	order := binary.BigEndian
	shstrndx := headerHalves[ELFCLASS64].shstrndx

	f, err := Parse(b)
	require.NoError(t, err)
	idx, err := f.SectionNameIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	f, err = Parse(putHalf(b, order, shstrndx, 3))
	require.NoError(t, err)
	idx, err = f.SectionNameIndex()
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	f, err = Parse(putHalf(b, order, shstrndx, SHN_XINDEX))
	require.NoError(t, err)
	idx, err = f.SectionNameIndex()
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	f, err = Parse(putHalf(x86_64Header(), binary.LittleEndian, shstrndx, SHN_XINDEX))
	require.NoError(t, err)
	_, err = f.SectionNameIndex()
	require.ErrorIs(t, err, ErrInvalidOffset)
}

func TestSymbols_Errors(t *testing.T) {
	f, err := Parse(sampleImage(t, ELFCLASS64, ELFDATA2LSB).build(t))
	require.NoError(t, err)
	symtab, err := f.Section(3)
	require.NoError(t, err)

	tests := []struct {
		name  string
		patch func(s *SectionHeader)
		want  error
	}{
		{"not a symbol table", func(s *SectionHeader) { s.Type = SHT_PROGBITS }, ErrNotSymbolTable},
		{"32-bit entry size", func(s *SectionHeader) { s.Entsize = Sym32Size }, ErrInconsistentEntrySize},
		{"zero entry size", func(s *SectionHeader) { s.Entsize = 0 }, ErrInconsistentEntrySize},
		{"partial entry", func(s *SectionHeader) { s.Size-- }, ErrInconsistentEntrySize},
		{"past end", func(s *SectionHeader) { s.Offset = uint64(f.Size()) }, ErrTruncatedTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := symtab
			tt.patch(&s)
			_, err := f.Symbols(s)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("empty", func(t *testing.T) {
		s := symtab
		s.Type = SHT_DYNSYM
		s.Size = 0
		s.Entsize = 0
		syms, err := f.Symbols(s)
		require.NoError(t, err)
		assert.Equal(t, 0, syms.Len())
	})
}

func TestSymbol_Info(t *testing.T) {
	s := Symbol{Info: SymInfo(STB_WEAK, STT_TLS), Other: 0xfc | uint8(STV_PROTECTED)}
	assert.Equal(t, STB_WEAK, s.Bind())
	assert.Equal(t, STT_TLS, s.Type())
	assert.Equal(t, STV_PROTECTED, s.Visibility())
	assert.Equal(t, "WEAK", s.Bind().String())
	assert.Equal(t, "TLS", s.Type().String())
	assert.Equal(t, "PROTECTED", s.Visibility().String())
}

func TestContentReaders(t *testing.T) {
	f, err := Parse(sampleImage(t, ELFCLASS32, ELFDATA2MSB).build(t))
	require.NoError(t, err)

	load, err := f.Prog(0)
	require.NoError(t, err)
	r, err := f.SegmentReader(load)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x90}, 16), got)

	bss, err := f.Section(4)
	require.NoError(t, err)
	r, err = f.SectionReader(bss)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 0x100), got)

	strtab, err := f.Section(2)
	require.NoError(t, err)
	r, err = f.SectionReader(strtab)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, sampleStrtab, got)

	load.Filesz = uint64(f.Size())
	_, err = f.SegmentReader(load)
	require.ErrorIs(t, err, ErrOutOfBounds)

	strtab.Offset = ^uint64(0)
	_, err = f.SectionReader(strtab)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "LOAD", PT_LOAD.String())
	assert.Equal(t, "LOPROC+0x1", (PT_LOPROC + 1).String())
	assert.Equal(t, "ProgType(0x8)", ProgType(8).String())
	assert.Equal(t, "SYMTAB", SHT_SYMTAB.String())
	assert.Equal(t, "LOUSER+0x2", (SHT_LOUSER + 2).String())
	assert.Equal(t, "AXM", (SHF_ALLOC | SHF_EXECINSTR | SHF_MERGE).String())
	assert.Equal(t, "RW ", (PF_R | PF_W).String())
	assert.Equal(t, "EXEC (Executable file)", ET_EXEC.String())
	assert.Equal(t, "OS Specific: (0xfe01)", (ET_LOOS + 1).String())
	assert.Equal(t, "Processor Specific: (0xff00)", ET_LOPROC.String())
}
