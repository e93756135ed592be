package elf

// Magic is the content of EI_MAG0..EI_MAG3.
var Magic = [4]byte{0x7f, 'E', 'L', 'F'}

// Indexes into the identification block.
const (
	EI_MAG0       = 0
	EI_CLASS      = 4
	EI_DATA       = 5
	EI_VERSION    = 6
	EI_OSABI      = 7
	EI_ABIVERSION = 8
	EI_PAD        = 9
	EI_NIDENT     = 16
)

// EV_CURRENT is the only defined ELF version.
const EV_CURRENT = 1

const (
	Header32Size = 52
	Header64Size = 64

	Prog32Size = 32
	Prog64Size = 56

	Section32Size = 40
	Section64Size = 64

	Sym32Size = 16
	Sym64Size = 24
)

// Special section indexes.
const (
	SHN_UNDEF     = 0
	SHN_LORESERVE = 0xff00
	SHN_ABS       = 0xfff1
	SHN_COMMON    = 0xfff2
	SHN_XINDEX    = 0xffff
)

// PN_XNUM marks e_phnum as stored in the sh_info of section 0.
const PN_XNUM = 0xffff
