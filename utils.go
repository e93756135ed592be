package elf

import (
	"bytes"
	"io"
	"math"
)

// EntropyCalculator accumulates the Shannon entropy of the bytes written to it.
type EntropyCalculator struct {
	size        int
	frequencies [256]uint64
}

func (e *EntropyCalculator) Write(p []byte) (n int, err error) {
	e.size += len(p)
	for _, v := range p {
		e.frequencies[v]++
	}
	return len(p), err
}

func (e *EntropyCalculator) Sum() (entropy float64) {
	if e.size == 0 {
		return
	}

	for _, p := range e.frequencies {
		if p > 0 {
			freq := float64(p) / float64(e.size)
			entropy += freq * math.Log2(freq)
		}
	}
	return -entropy
}

// Entropy returns the Shannon entropy of everything r yields.
func Entropy(r io.Reader) float64 {
	var e EntropyCalculator
	_, _ = io.Copy(&e, r)
	return e.Sum()
}

func bytesReaderAt(b []byte) io.ReaderAt {
	return bytes.NewReader(b)
}

// zeroReaderAt is ReaderAt that reads 0s.
type zeroReaderAt struct{}

// ReadAt writes len(p) 0s into p.
func (w zeroReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
