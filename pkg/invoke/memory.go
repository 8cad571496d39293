package invoke

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrAccessViolation is returned for reads outside a mapped region.
	ErrAccessViolation = errors.New("access violation")
	// ErrInvalidString is returned when translated bytes are not UTF-8.
	ErrInvalidString = errors.New("invalid string")
)

// Memory translates caller addresses into host values.
type Memory interface {
	TranslateString(addr, length uint64) (string, error)
}

// Region is a single contiguous block of caller memory starting at Base.
type Region struct {
	Base uint64
	Data []byte
}

// TranslateString reads length bytes at addr as a UTF-8 string.
func (r *Region) TranslateString(addr, length uint64) (string, error) {
	if addr < r.Base {
		return "", fmt.Errorf("%w: address %#x below region %#x", ErrAccessViolation, addr, r.Base)
	}
	off := addr - r.Base
	if off > uint64(len(r.Data)) || length > uint64(len(r.Data))-off {
		return "", fmt.Errorf("%w: %d bytes at %#x", ErrAccessViolation, length, addr)
	}
	b := r.Data[off : off+length]
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w at %#x", ErrInvalidString, addr)
	}
	return string(b), nil
}

// Write appends b to the region and returns the address it was placed at.
func (r *Region) Write(b []byte) uint64 {
	addr := r.Base + uint64(len(r.Data))
	r.Data = append(r.Data, b...)
	return addr
}
