package elf

import (
	"bytes"
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// File is a parsed ELF file. The identification block and file header are
// decoded eagerly; the program, section and symbol tables are decoded on
// demand from the retained buffer.
type File struct {
	Ident
	Header Header

	data []byte
	opts options
}

// NewFile reads filename into memory and parses it.
func NewFile(filename string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	stat, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if o.maxFileSize > 0 && stat.Size() > o.maxFileSize {
		return nil, errors.Errorf("%s is %d bytes, larger than the %d byte limit", filename, stat.Size(), o.maxFileSize)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	f, err := parse(data, o)
	if err != nil {
		return nil, errors.WithMessage(err, filename)
	}
	return f, nil
}

// Parse decodes the identification block and file header of data. The
// returned File keeps a reference to data, which must not be modified
// afterwards.
//
// A zero e_phentsize or e_shentsize is accepted when the matching count is
// also zero, as linkers emit for relocatable objects; any other entry size
// must match the class.
func Parse(data []byte, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return parse(data, o)
}

func parse(data []byte, o options) (*File, error) {
	c := NewCursor(data)

	id, err := readIdent(c)
	if err != nil {
		return nil, err
	}

	h, err := readHeader(c, id)
	if err != nil {
		return nil, err
	}

	if err := validateHeader(h); err != nil {
		return nil, err
	}

	if id.Version != EV_CURRENT || h.FormatVersion() != EV_CURRENT {
		if o.strictVersion {
			return nil, errors.Wrapf(ErrUnsupportedVersion, "EI_VERSION %d, e_version %d", id.Version, h.FormatVersion())
		}
		level.Warn(o.logger).Log("msg", "unexpected ELF version", "ei_version", id.Version, "e_version", h.FormatVersion())
	}

	ph, sh := h.ProgramTable(), h.SectionTable()
	level.Debug(o.logger).Log(
		"msg", "parsed ELF header",
		"class", id.Class,
		"data", id.Data,
		"type", h.FileType(),
		"machine", h.Arch(),
		"phoff", ph.Offset, "phnum", ph.Count,
		"shoff", sh.Offset, "shnum", sh.Count,
	)

	return &File{
		Ident:  id,
		Header: h,
		data:   data,
		opts:   o,
	}, nil
}

// Size returns the length of the underlying buffer.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// slice returns data[off:off+size], failing with ErrOutOfBounds instead of
// truncating.
func (f *File) slice(off, size uint64) ([]byte, error) {
	end := off + size

	// Integer overflow
	if end < off {
		return nil, errors.Wrapf(ErrOutOfBounds, "range at %#x of %#x bytes overflows", off, size)
	}
	if end > uint64(len(f.data)) {
		return nil, errors.Wrapf(ErrOutOfBounds, "range [%#x, %#x) past end of %#x byte file", off, end, len(f.data))
	}
	return f.data[off:end], nil
}

// ReadAt implements io.ReaderAt over the file contents.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(f.data).ReadAt(p, off)
}

var _ io.ReaderAt = (*File)(nil)
