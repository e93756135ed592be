package elf

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Class is the EI_CLASS byte, selecting 32- or 64-bit layouts.
type Class uint8

const (
	ELFCLASSNONE Class = 0
	ELFCLASS32   Class = 1
	ELFCLASS64   Class = 2
)

func (c Class) String() string {
	switch c {
	case ELFCLASSNONE:
		return "ELFCLASSNONE"
	case ELFCLASS32:
		return "ELF32"
	case ELFCLASS64:
		return "ELF64"
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

func (c Class) valid() bool {
	return c == ELFCLASS32 || c == ELFCLASS64
}

// Data is the EI_DATA byte, selecting the byte order of every multi-byte field.
type Data uint8

const (
	ELFDATANONE Data = 0
	ELFDATA2LSB Data = 1
	ELFDATA2MSB Data = 2
)

func (d Data) String() string {
	switch d {
	case ELFDATANONE:
		return "ELFDATANONE"
	case ELFDATA2LSB:
		return "little endian"
	case ELFDATA2MSB:
		return "big endian"
	}
	return fmt.Sprintf("Data(%d)", uint8(d))
}

func (d Data) valid() bool {
	return d == ELFDATA2LSB || d == ELFDATA2MSB
}

// ByteOrder returns the binary.ByteOrder for d. Unknown encodings map to nil.
func (d Data) ByteOrder() binary.ByteOrder {
	switch d {
	case ELFDATA2LSB:
		return binary.LittleEndian
	case ELFDATA2MSB:
		return binary.BigEndian
	}
	return nil
}

// OSABI is the EI_OSABI byte.
type OSABI uint8

const (
	ELFOSABI_NONE     OSABI = 0x00
	ELFOSABI_HPUX     OSABI = 0x01
	ELFOSABI_NETBSD   OSABI = 0x02
	ELFOSABI_LINUX    OSABI = 0x03
	ELFOSABI_SOLARIS  OSABI = 0x06
	ELFOSABI_AIX      OSABI = 0x07
	ELFOSABI_IRIX     OSABI = 0x08
	ELFOSABI_FREEBSD  OSABI = 0x09
	ELFOSABI_OPENBSD  OSABI = 0x0c
	ELFOSABI_OPENVMS  OSABI = 0x0d
	ELFOSABI_NSK      OSABI = 0x0e
	ELFOSABI_AROS     OSABI = 0x0f
	ELFOSABI_FENIXOS  OSABI = 0x10
	ELFOSABI_CLOUDABI OSABI = 0x11
	ELFOSABI_SORTIX   OSABI = 0x53
)

var osabiNames = map[OSABI]string{
	ELFOSABI_NONE:     "UNIX - System V",
	ELFOSABI_HPUX:     "UNIX - HP-UX",
	ELFOSABI_NETBSD:   "UNIX - NetBSD",
	ELFOSABI_LINUX:    "UNIX - GNU",
	ELFOSABI_SOLARIS:  "UNIX - Solaris",
	ELFOSABI_AIX:      "UNIX - AIX",
	ELFOSABI_IRIX:     "UNIX - IRIX",
	ELFOSABI_FREEBSD:  "UNIX - FreeBSD",
	ELFOSABI_OPENBSD:  "UNIX - OpenBSD",
	ELFOSABI_OPENVMS:  "VMS - OpenVMS",
	ELFOSABI_NSK:      "HP - Non-Stop Kernel",
	ELFOSABI_AROS:     "AROS",
	ELFOSABI_FENIXOS:  "FenixOS",
	ELFOSABI_CLOUDABI: "Nuxi CloudABI",
	ELFOSABI_SORTIX:   "Sortix",
}

func (o OSABI) String() string {
	if s, ok := osabiNames[o]; ok {
		return s
	}
	return fmt.Sprintf("OSABI(%d)", uint8(o))
}

// Ident is the 16 byte identification block that starts every ELF file.
type Ident struct {
	Magic      [4]byte
	Class      Class
	Data       Data
	Version    uint8
	OSABI      OSABI
	ABIVersion uint8
	Pad        [7]byte
}

// ByteOrder returns the byte order declared by the identification block.
func (id *Ident) ByteOrder() binary.ByteOrder {
	return id.Data.ByteOrder()
}

func (id *Ident) Is64() bool {
	return id.Class == ELFCLASS64
}

func readIdent(c *Cursor) (Ident, error) {
	var id Ident
	if c.Remaining() < EI_NIDENT {
		return id, errors.Wrapf(ErrTooShort, "%d bytes", c.Remaining())
	}

	// The length check above makes these reads infallible.
	b, _ := c.Bytes(EI_NIDENT)
	copy(id.Magic[:], b[EI_MAG0:EI_CLASS])
	id.Class = Class(b[EI_CLASS])
	id.Data = Data(b[EI_DATA])
	id.Version = b[EI_VERSION]
	id.OSABI = OSABI(b[EI_OSABI])
	id.ABIVersion = b[EI_ABIVERSION]
	copy(id.Pad[:], b[EI_PAD:])
	return id, id.validate()
}

func (id *Ident) validate() error {
	if id.Magic != Magic {
		return errors.Wrapf(ErrBadMagic, "% x", id.Magic[:])
	}
	if !id.Class.valid() {
		return errors.Wrapf(ErrUnknownClass, "EI_CLASS %d", uint8(id.Class))
	}
	if !id.Data.valid() {
		return errors.Wrapf(ErrUnknownEncoding, "EI_DATA %d", uint8(id.Data))
	}
	return nil
}

func (id *Ident) bytes() [EI_NIDENT]byte {
	var b [EI_NIDENT]byte
	copy(b[EI_MAG0:], id.Magic[:])
	b[EI_CLASS] = byte(id.Class)
	b[EI_DATA] = byte(id.Data)
	b[EI_VERSION] = id.Version
	b[EI_OSABI] = byte(id.OSABI)
	b[EI_ABIVERSION] = id.ABIVersion
	copy(b[EI_PAD:], id.Pad[:])
	return b
}
