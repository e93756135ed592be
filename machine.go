package elf

import "fmt"

// Machine is the e_machine field. Values missing from the table below are
// kept as-is; Known reports whether a value is one of the named machines.
type Machine uint16

const (
	EM_NONE        Machine = 0
	EM_M32         Machine = 1
	EM_SPARC       Machine = 2
	EM_386         Machine = 3
	EM_68K         Machine = 4
	EM_88K         Machine = 5
	EM_860         Machine = 7
	EM_MIPS        Machine = 8
	EM_S370        Machine = 9
	EM_MIPS_RS3_LE Machine = 10
	EM_PARISC      Machine = 15
	EM_VPP500      Machine = 17
	EM_SPARC32PLUS Machine = 18
	EM_960         Machine = 19
	EM_PPC         Machine = 20
	EM_PPC64       Machine = 21
	EM_V800        Machine = 36
	EM_FR20        Machine = 37
	EM_RH32        Machine = 38
	EM_RCE         Machine = 39
	EM_ARM         Machine = 40
	EM_ALPHA       Machine = 41
	EM_SH          Machine = 42
	EM_SPARCV9     Machine = 43
	EM_TRICORE     Machine = 44
	EM_ARC         Machine = 45
	EM_H8_300      Machine = 46
	EM_H8_300H     Machine = 47
	EM_H8S         Machine = 48
	EM_H8_500      Machine = 49
	EM_IA_64       Machine = 50
	EM_MIPS_X      Machine = 51
	EM_COLDFIRE    Machine = 52
	EM_68HC12      Machine = 53
	EM_MMA         Machine = 54
	EM_PCP         Machine = 55
	EM_NCPU        Machine = 56
	EM_NDR1        Machine = 57
	EM_STARCORE    Machine = 58
	EM_ME16        Machine = 59
	EM_ST100       Machine = 60
	EM_TINYJ       Machine = 61
	EM_X86_64      Machine = 62
	EM_FX66        Machine = 66
	EM_ST9PLUS     Machine = 67
	EM_ST7         Machine = 68
	EM_68HC16      Machine = 69
	EM_68HC11      Machine = 70
	EM_68HC08      Machine = 71
	EM_68HC05      Machine = 72
	EM_SVX         Machine = 73
	EM_ST19        Machine = 74
	EM_VAX         Machine = 75
	EM_CRIS        Machine = 76
	EM_JAVELIN     Machine = 77
	EM_FIREPATH    Machine = 78
	EM_ZSP         Machine = 79
	EM_MMIX        Machine = 80
	EM_HUANY       Machine = 81
	EM_PRISM       Machine = 82
	EM_AARCH64     Machine = 183
	EM_RISCV       Machine = 243
	EM_BPF         Machine = 247
)

var machineNames = map[Machine]string{
	EM_NONE:        "None",
	EM_M32:         "WE32100",
	EM_SPARC:       "Sparc",
	EM_386:         "Intel 80386",
	EM_68K:         "MC68000",
	EM_88K:         "MC88000",
	EM_860:         "Intel 80860",
	EM_MIPS:        "MIPS R3000",
	EM_S370:        "IBM System/370",
	EM_MIPS_RS3_LE: "MIPS R4000 big-endian",
	EM_PARISC:      "HPPA",
	EM_VPP500:      "Fujitsu VPP500",
	EM_SPARC32PLUS: "Sparc v8+",
	EM_960:         "Intel 80960",
	EM_PPC:         "PowerPC",
	EM_PPC64:       "PowerPC64",
	EM_V800:        "NEC V800",
	EM_FR20:        "Fujitsu FR20",
	EM_RH32:        "TRW RH32",
	EM_RCE:         "Motorola RCE",
	EM_ARM:         "ARM",
	EM_ALPHA:       "Alpha",
	EM_SH:          "Renesas / SuperH SH",
	EM_SPARCV9:     "Sparc v9",
	EM_TRICORE:     "Siemens Tricore",
	EM_ARC:         "ARC",
	EM_H8_300:      "Renesas H8/300",
	EM_H8_300H:     "Renesas H8/300H",
	EM_H8S:         "Renesas H8S",
	EM_H8_500:      "Renesas H8/500",
	EM_IA_64:       "Intel IA-64",
	EM_MIPS_X:      "Stanford MIPS-X",
	EM_COLDFIRE:    "Motorola Coldfire",
	EM_68HC12:      "Motorola MC68HC12",
	EM_MMA:         "Fujitsu Multimedia Accelerator",
	EM_PCP:         "Siemens PCP",
	EM_NCPU:        "Sony nCPU embedded RISC processor",
	EM_NDR1:        "Denso NDR1 microprocessor",
	EM_STARCORE:    "Motorola Star*Core processor",
	EM_ME16:        "Toyota ME16 processor",
	EM_ST100:       "STMicroelectronics ST100 processor",
	EM_TINYJ:       "Advanced Logic Corp. TinyJ embedded processor",
	EM_X86_64:      "Advanced Micro Devices X86-64",
	EM_FX66:        "Siemens FX66 microcontroller",
	EM_ST9PLUS:     "STMicroelectronics ST9+ 8/16 bit microcontroller",
	EM_ST7:         "STMicroelectronics ST7 8-bit microcontroller",
	EM_68HC16:      "Motorola MC68HC16 Microcontroller",
	EM_68HC11:      "Motorola MC68HC11 Microcontroller",
	EM_68HC08:      "Motorola MC68HC08 Microcontroller",
	EM_68HC05:      "Motorola MC68HC05 Microcontroller",
	EM_SVX:         "Silicon Graphics SVx",
	EM_ST19:        "STMicroelectronics ST19 8-bit microcontroller",
	EM_VAX:         "Digital VAX",
	EM_CRIS:        "Axis Communications 32-bit embedded processor",
	EM_JAVELIN:     "Infineon Technologies 32-bit embedded cpu",
	EM_FIREPATH:    "Element 14 64-bit DSP processor",
	EM_ZSP:         "LSI Logic's 16-bit DSP processor",
	EM_MMIX:        "Donald Knuth's educational 64-bit processor",
	EM_HUANY:       "Harvard University's machine-independent object format",
	EM_PRISM:       "Vitesse Prism",
	EM_AARCH64:     "AArch64",
	EM_RISCV:       "RISC-V",
	EM_BPF:         "Linux BPF",
}

// Known reports whether m is one of the named machines.
func (m Machine) Known() bool {
	_, ok := machineNames[m]
	return ok
}

func (m Machine) String() string {
	if s, ok := machineNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Machine(%#x)", uint16(m))
}
