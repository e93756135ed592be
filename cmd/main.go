package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/h2non/filetype"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"

	elffile "github.com/wanglei-coder/elffile"
)

var cfg struct {
	verbose bool
	strict  bool
	symbols bool
	format  string
	files   []string
}

var logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

type Info struct {
	File           string
	Class          string
	Data           string
	OSABI          string
	ABIVersion     uint8
	Type           string
	Machine        string
	Version        uint32
	EntryPoint     uint64
	Flags          uint32
	ProgramHeaders []*Segment
	Sections       []*Section
	Symbols        []*Symbol `json:",omitempty"`
	Overlay        *Overlay  `json:",omitempty"`
}

type Segment struct {
	Type     string
	Flags    string
	Offset   uint64
	VirtAddr uint64
	PhysAddr uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

type Section struct {
	Index      int
	Name       string
	NameOffset uint32
	Type       string
	Flags      string
	Addr       uint64
	Offset     uint64
	Size       uint64
	Link       uint32
	Info       uint32
	Align      uint64
	EntSize    uint64
	Entropy    float64
}

type Symbol struct {
	Table      int
	Index      int
	Name       string
	NameOffset uint32
	Value      uint64
	Size       uint64
	Type       string
	Bind       string
	Visibility string
	Ndx        string
}

type Overlay struct {
	Offset   uint64
	Size     int64
	FileType string
	Entropy  float64
}

func getSegments(f *elffile.File) ([]*Segment, error) {
	progs, err := f.ProgramHeaders()
	if err != nil {
		return nil, err
	}
	segments := make([]*Segment, 0, progs.Len())
	for _, p := range progs.All() {
		segments = append(segments, &Segment{
			Type:     p.Type.String(),
			Flags:    p.Flags.String(),
			Offset:   p.Off,
			VirtAddr: p.Vaddr,
			PhysAddr: p.Paddr,
			FileSize: p.Filesz,
			MemSize:  p.Memsz,
			Align:    p.Align,
		})
	}
	return segments, nil
}

func getSections(f *elffile.File) ([]*Section, error) {
	shdrs, err := f.SectionHeaders()
	if err != nil {
		return nil, err
	}
	names, err := f.SectionNames()
	if err != nil {
		level.Warn(logger).Log("msg", "no section names", "err", err)
	}

	sections := make([]*Section, 0, shdrs.Len())
	for i, s := range shdrs.All() {
		section := &Section{
			Index:      i,
			Name:       lookup(names, s.Name),
			NameOffset: s.Name,
			Type:       s.Type.String(),
			Flags:      s.Flags.String(),
			Addr:       s.Addr,
			Offset:     s.Offset,
			Size:       s.Size,
			Link:       s.Link,
			Info:       s.Info,
			Align:      s.Addralign,
			EntSize:    s.Entsize,
		}
		if s.Type != elffile.SHT_NOBITS {
			if r, err := f.SectionReader(s); err == nil {
				section.Entropy = elffile.Entropy(r)
			} else {
				level.Warn(logger).Log("msg", "section contents out of bounds", "index", i, "err", err)
			}
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func getSymbols(f *elffile.File) ([]*Symbol, error) {
	shdrs, err := f.SectionHeaders()
	if err != nil {
		return nil, err
	}
	var symbols []*Symbol
	for i, s := range shdrs.All() {
		if s.Type != elffile.SHT_SYMTAB && s.Type != elffile.SHT_DYNSYM {
			continue
		}
		syms, err := f.Symbols(s)
		if err != nil {
			return nil, errors.WithMessagef(err, "section %d", i)
		}
		strtab, err := linkedStrings(f, shdrs, s)
		if err != nil {
			level.Warn(logger).Log("msg", "no symbol names", "section", i, "err", err)
		}
		for j, sym := range syms.All() {
			symbols = append(symbols, &Symbol{
				Table:      i,
				Index:      j,
				Name:       lookup(strtab, sym.Name),
				NameOffset: sym.Name,
				Value:      sym.Value,
				Size:       sym.Size,
				Type:       sym.Type().String(),
				Bind:       sym.Bind().String(),
				Visibility: sym.Visibility().String(),
				Ndx:        sectionIndex(sym.Shndx),
			})
		}
	}
	return symbols, nil
}

func linkedStrings(f *elffile.File, shdrs *elffile.Table[elffile.SectionHeader], s elffile.SectionHeader) (elffile.StringTable, error) {
	link, err := shdrs.At(int(s.Link))
	if err != nil {
		return nil, err
	}
	return f.StringTable(link)
}

// lookup returns the string at off, or "" when st is missing or too short.
func lookup(st elffile.StringTable, off uint32) string {
	if st == nil {
		return ""
	}
	name, err := st.String(off)
	if err != nil {
		return ""
	}
	return name
}

func sectionIndex(ndx uint16) string {
	switch ndx {
	case elffile.SHN_UNDEF:
		return "UND"
	case elffile.SHN_ABS:
		return "ABS"
	case elffile.SHN_COMMON:
		return "COM"
	}
	return strconv.Itoa(int(ndx))
}

func getOverlay(f *elffile.File) *Overlay {
	rs := f.Overlay()
	if rs == nil {
		return nil
	}
	overlay := Overlay{
		Offset: f.OverlayOffset(),
		Size:   rs.Size(),
	}
	overlay.Entropy = elffile.Entropy(rs)

	data := make([]byte, 1024)
	n, _ := rs.ReadAt(data, 0)
	overlay.FileType = GetFileType(data[:n])
	return &overlay
}

func getInfo(name string, f *elffile.File) (*Info, error) {
	h := f.Header
	info := &Info{
		File:       name,
		Class:      f.Class.String(),
		Data:       f.Data.String(),
		OSABI:      f.OSABI.String(),
		ABIVersion: f.ABIVersion,
		Type:       h.FileType().String(),
		Machine:    h.Arch().String(),
		Version:    h.FormatVersion(),
		EntryPoint: h.EntryPoint(),
		Flags:      h.ProcessorFlags(),
		Overlay:    getOverlay(f),
	}

	var err error
	if info.ProgramHeaders, err = getSegments(f); err != nil {
		return nil, err
	}
	if info.Sections, err = getSections(f); err != nil {
		return nil, err
	}
	if cfg.symbols {
		if info.Symbols, err = getSymbols(f); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func hex(v uint64) string {
	return fmt.Sprintf("%#x", v)
}

func printTables(w io.Writer, info *Info) {
	fmt.Fprintf(w, "%s:\n", info.File)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"Class", info.Class},
		{"Data", info.Data},
		{"OS/ABI", info.OSABI},
		{"ABI Version", strconv.Itoa(int(info.ABIVersion))},
		{"Type", info.Type},
		{"Machine", info.Machine},
		{"Version", hex(uint64(info.Version))},
		{"Entry point address", hex(info.EntryPoint)},
		{"Flags", hex(uint64(info.Flags))},
	})
	table.Render()

	if len(info.ProgramHeaders) > 0 {
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Type", "Offset", "VirtAddr", "PhysAddr", "FileSiz", "MemSiz", "Flg", "Align"})
		for _, p := range info.ProgramHeaders {
			table.Append([]string{
				p.Type, hex(p.Offset), hex(p.VirtAddr), hex(p.PhysAddr),
				hex(p.FileSize), hex(p.MemSize), p.Flags, hex(p.Align),
			})
		}
		table.Render()
	}

	if len(info.Sections) > 0 {
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Nr", "Name", "Type", "Address", "Off", "Size", "ES", "Flg", "Lk", "Inf", "Al", "Entropy"})
		for _, s := range info.Sections {
			table.Append([]string{
				strconv.Itoa(s.Index), s.Name, s.Type, hex(s.Addr), hex(s.Offset),
				humanize.IBytes(s.Size), hex(s.EntSize), s.Flags,
				strconv.Itoa(int(s.Link)), strconv.Itoa(int(s.Info)), strconv.FormatUint(s.Align, 10),
				strconv.FormatFloat(s.Entropy, 'f', 2, 64),
			})
		}
		table.Render()
	}

	if len(info.Symbols) > 0 {
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Table", "Num", "Value", "Size", "Type", "Bind", "Vis", "Ndx", "Name"})
		for _, s := range info.Symbols {
			table.Append([]string{
				strconv.Itoa(s.Table), strconv.Itoa(s.Index), hex(s.Value), strconv.FormatUint(s.Size, 10),
				s.Type, s.Bind, s.Visibility, s.Ndx, s.Name,
			})
		}
		table.Render()
	}

	if o := info.Overlay; o != nil {
		fmt.Fprintf(w, "Overlay at %#x: %s of %s, entropy %.2f\n",
			o.Offset, humanize.IBytes(uint64(o.Size)), o.FileType, o.Entropy)
	}
}

func inspect(name string) error {
	opts := []elffile.Option{
		elffile.WithLogger(log.With(logger, "file", name)),
	}
	if cfg.strict {
		opts = append(opts, elffile.WithStrictVersion())
	}

	f, err := elffile.NewFile(name, opts...)
	if errors.Is(err, elffile.ErrBadMagic) || errors.Is(err, elffile.ErrTooShort) {
		return errors.Errorf("%s: not an ELF file, detected %s", name, sniff(name))
	}
	if err != nil {
		return err
	}

	info, err := getInfo(name, f)
	if err != nil {
		return errors.WithMessage(err, name)
	}

	if cfg.format == "json" {
		data, err := json.MarshalIndent(info, "", "    ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", data)
		return nil
	}
	printTables(os.Stdout, info)
	return nil
}

// sniff guesses the type of a file that failed to parse as ELF.
func sniff(name string) string {
	fh, err := os.Open(name)
	if err != nil {
		return "unreadable file"
	}
	defer fh.Close()

	head := make([]byte, 262)
	n, _ := io.ReadFull(fh, head)
	return GetFileType(head[:n])
}

func GetFileType(data []byte) string {
	kind, _ := filetype.Match(data)
	if kind == filetype.Unknown {
		return "Data"
	}
	return kind.MIME.Value
}

func checkError(err error) int {
	if err == nil {
		return 0
	}
	level.Error(logger).Log("err", err)
	return 1
}

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Display the headers and tables of ELF files.").UsageWriter(os.Stdout)
	app.HelpFlag.Short('h')
	app.Flag("verbose", "Enable verbose logging.").Short('v').Default("false").BoolVar(&cfg.verbose)
	app.Flag("strict", "Reject files whose ELF version is not current.").Default("false").BoolVar(&cfg.strict)
	app.Flag("symbols", "List the entries of symbol tables.").Short('s').Default("false").BoolVar(&cfg.symbols)
	app.Flag("format", "Output format.").Short('f').Default("table").EnumVar(&cfg.format, "table", "json")
	app.Arg("file", "ELF files to inspect.").Required().ExistingFilesVar(&cfg.files)

	kingpin.MustParse(app.Parse(os.Args[1:]))

	if !cfg.verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	code := 0
	for _, name := range cfg.files {
		if c := checkError(inspect(name)); c != 0 {
			code = c
		}
	}
	os.Exit(code)
}
