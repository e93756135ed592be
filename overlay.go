package elf

import (
	"io"
)

type extent struct {
	offset, size uint64
}

// OverlayOffset returns the offset of data appended past everything the
// headers describe, or 0 if there is none. Extents running past the end of
// the file are clamped to it; tables that fail to parse are left out of the
// calculation.
func (f *File) OverlayOffset() uint64 {
	size := uint64(len(f.data))
	var end uint64
	extend := func(e extent) {
		sum := e.offset + e.size
		if sum < e.offset {
			return
		}
		sum = min(sum, size)
		if sum > end {
			end = sum
		}
	}

	extend(extent{0, uint64(f.Header.HeaderSize())})

	if progs, err := f.ProgramHeaders(); err == nil {
		off, entsize, count := progs.Descriptor()
		extend(extent{off, uint64(entsize) * uint64(count)})
		for _, p := range progs.All() {
			extend(extent{p.Off, p.Filesz})
		}
	}

	if sections, err := f.SectionHeaders(); err == nil {
		off, entsize, count := sections.Descriptor()
		extend(extent{off, uint64(entsize) * uint64(count)})
		for _, s := range sections.All() {
			if s.Type == SHT_NOBITS || s.Type == SHT_NULL {
				continue
			}
			extend(extent{s.Offset, s.Size})
		}
	}

	if end < size {
		return end
	}
	return 0
}

// Overlay returns a reader over the data appended past the described
// contents of the file, or nil if there is none.
func (f *File) Overlay() *io.SectionReader {
	off := f.OverlayOffset()
	if off == 0 {
		return nil
	}
	return io.NewSectionReader(bytesReaderAt(f.data), int64(off), int64(uint64(len(f.data))-off))
}
