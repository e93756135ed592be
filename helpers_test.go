package elf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// image describes a synthetic ELF file laid out as
// header | program headers | payload | section headers.
type image struct {
	class    Class
	data     Data
	typ      Type
	machine  Machine
	entry    uint64
	progs    []ProgramHeader
	payload  []byte
	sections []SectionHeader
	trailer  []byte
}

// payloadOffset returns the file offset of the payload of im.
func (im *image) payloadOffset() uint64 {
	l := layoutOf(im.class)
	return uint64(l.header + len(im.progs)*l.prog)
}

func (im *image) build(t *testing.T) []byte {
	t.Helper()
	l := layoutOf(im.class)
	order := im.data.ByteOrder()
	require.NotNil(t, order)

	var phoff, shoff uint64
	if len(im.progs) > 0 {
		phoff = uint64(l.header)
	}
	if len(im.sections) > 0 {
		shoff = im.payloadOffset() + uint64(len(im.payload))
	}

	buf := new(bytes.Buffer)
	buf.Write([]byte{0x7f, 'E', 'L', 'F', byte(im.class), byte(im.data), EV_CURRENT, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	var hdr any
	if im.class == ELFCLASS64 {
		hdr = &Header64{
			Type: im.typ, Machine: im.machine, Version: EV_CURRENT,
			Entry: im.entry, Phoff: phoff, Shoff: shoff,
			Ehsize: uint16(l.header), Phentsize: uint16(l.prog), Phnum: uint16(len(im.progs)),
			Shentsize: uint16(l.section), Shnum: uint16(len(im.sections)),
		}
	} else {
		hdr = &Header32{
			Type: im.typ, Machine: im.machine, Version: EV_CURRENT,
			Entry: uint32(im.entry), Phoff: uint32(phoff), Shoff: uint32(shoff),
			Ehsize: uint16(l.header), Phentsize: uint16(l.prog), Phnum: uint16(len(im.progs)),
			Shentsize: uint16(l.section), Shnum: uint16(len(im.sections)),
		}
	}
	require.NoError(t, binary.Write(buf, order, hdr))

	for _, p := range im.progs {
		require.NoError(t, binary.Write(buf, order, encodeProg(im.class, p)))
	}
	buf.Write(im.payload)
	for _, s := range im.sections {
		require.NoError(t, binary.Write(buf, order, encodeSection(im.class, s)))
	}
	buf.Write(im.trailer)
	return buf.Bytes()
}

func encodeProg(class Class, p ProgramHeader) any {
	if class == ELFCLASS64 {
		return &Prog64{
			Type: uint32(p.Type), Flags: uint32(p.Flags), Off: p.Off, Vaddr: p.Vaddr,
			Paddr: p.Paddr, Filesz: p.Filesz, Memsz: p.Memsz, Align: p.Align,
		}
	}
	return &Prog32{
		Type: uint32(p.Type), Off: uint32(p.Off), Vaddr: uint32(p.Vaddr), Paddr: uint32(p.Paddr),
		Filesz: uint32(p.Filesz), Memsz: uint32(p.Memsz), Flags: uint32(p.Flags), Align: uint32(p.Align),
	}
}

func encodeSection(class Class, s SectionHeader) any {
	if class == ELFCLASS64 {
		return &Section64{
			Name: s.Name, Type: uint32(s.Type), Flags: uint64(s.Flags), Addr: s.Addr, Off: s.Offset,
			Size: s.Size, Link: s.Link, Info: s.Info, Addralign: s.Addralign, Entsize: s.Entsize,
		}
	}
	return &Section32{
		Name: s.Name, Type: uint32(s.Type), Flags: uint32(s.Flags), Addr: uint32(s.Addr), Off: uint32(s.Offset),
		Size: uint32(s.Size), Link: s.Link, Info: s.Info, Addralign: uint32(s.Addralign), Entsize: uint32(s.Entsize),
	}
}

func encodeSymbols(t *testing.T, class Class, order binary.ByteOrder, syms []Symbol) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	for _, s := range syms {
		var v any
		if class == ELFCLASS64 {
			v = &Sym64{Name: s.Name, Info: s.Info, Other: s.Other, Shndx: s.Shndx, Value: s.Value, Size: s.Size}
		} else {
			v = &Sym32{Name: s.Name, Value: uint32(s.Value), Size: uint32(s.Size), Info: s.Info, Other: s.Other, Shndx: s.Shndx}
		}
		require.NoError(t, binary.Write(buf, order, v))
	}
	return buf.Bytes()
}

// x86_64Header is a little-endian ELF64 executable header for x86-64 with
// empty tables.
func x86_64Header() []byte {
	b := make([]byte, 64)
	copy(b, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0})
	le := binary.LittleEndian
	le.PutUint16(b[16:], 2)        // e_type
	le.PutUint16(b[18:], 0x3e)     // e_machine
	le.PutUint32(b[20:], 1)        // e_version
	le.PutUint64(b[24:], 0x401000) // e_entry
	le.PutUint16(b[52:], 64)       // e_ehsize
	le.PutUint16(b[54:], 56)       // e_phentsize
	le.PutUint16(b[58:], 64)       // e_shentsize
	return b
}
