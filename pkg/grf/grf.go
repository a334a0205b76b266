// Package grf reads files out of GRF 0x200 archives.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/Faultbox/midgard-terrain/pkg/encoding"
)

// Archive errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrCorruptTable       = errors.New("corrupt GRF file table")
	ErrNotFound           = errors.New("file not found in archive")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

const (
	magic      = "Master of Magic"
	headerSize = 46
	version200 = 0x200

	// name\0 followed by compressed, aligned, real size, flags, offset.
	entryInfoSize = 17
)

// Entry flags.
const (
	FlagFile     = 0x01
	FlagMixCrypt = 0x02
	FlagDES      = 0x04
)

type header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry describes one stored file.
type Entry struct {
	Name           string
	CompressedSize uint32
	AlignedSize    uint32
	Size           uint32
	Flags          uint8
	Offset         uint32
}

// Archive is an opened GRF archive. Lookups ignore case and accept either
// slash direction.
type Archive struct {
	r       io.ReaderAt
	closer  io.Closer
	entries map[string]Entry
}

// Open opens the archive at path.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	a, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// NewReader reads the header and file table from r.
func NewReader(r io.ReaderAt) (*Archive, error) {
	var buf [headerSize]byte
	if err := readAt(r, buf[:], 0); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var h header
	if err := binary.Read(bytes.NewReader(buf[:]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	if string(h.Magic[:]) != magic {
		return nil, ErrInvalidMagic
	}
	if h.Version != version200 {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, h.Version)
	}

	a := &Archive{
		r:       r,
		entries: make(map[string]Entry),
	}
	if err := a.readTable(h); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) readTable(h header) error {
	if h.FileCount < h.Seed+7 {
		return fmt.Errorf("%w: file count %d below seed %d", ErrCorruptTable, h.FileCount, h.Seed)
	}

	base := int64(h.TableOffset) + headerSize
	var sizes [8]byte
	if err := readAt(a.r, sizes[:], base); err != nil {
		return fmt.Errorf("%w: reading table sizes: %v", ErrCorruptTable, err)
	}

	packed := make([]byte, binary.LittleEndian.Uint32(sizes[0:]))
	if err := readAt(a.r, packed, base+8); err != nil {
		return fmt.Errorf("%w: reading table: %v", ErrCorruptTable, err)
	}
	table, err := inflate(packed, binary.LittleEndian.Uint32(sizes[4:]))
	if err != nil {
		return fmt.Errorf("%w: inflating table: %v", ErrCorruptTable, err)
	}

	count := int(h.FileCount - h.Seed - 7)
	off := 0
	for i := range count {
		end := bytes.IndexByte(table[off:], 0)
		if end < 0 || off+end+1+entryInfoSize > len(table) {
			return fmt.Errorf("%w: entry %d overruns table", ErrCorruptTable, i)
		}
		info := table[off+end+1:]
		e := Entry{
			Name:           encoding.DecodeEUCKR(table[off : off+end]),
			CompressedSize: binary.LittleEndian.Uint32(info[0:]),
			AlignedSize:    binary.LittleEndian.Uint32(info[4:]),
			Size:           binary.LittleEndian.Uint32(info[8:]),
			Flags:          info[12],
			Offset:         binary.LittleEndian.Uint32(info[13:]),
		}
		off += end + 1 + entryInfoSize

		// Directories carry no FlagFile.
		if e.Flags&FlagFile == 0 {
			continue
		}
		a.entries[normalizePath(e.Name)] = e
	}
	return nil
}

// Close releases the underlying file, if Open created one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Len returns the number of stored files.
func (a *Archive) Len() int { return len(a.entries) }

// List returns the normalized paths of all stored files, sorted.
func (a *Archive) List() []string {
	return slices.Sorted(maps.Keys(a.entries))
}

// Stat returns the entry for path.
func (a *Archive) Stat(path string) (Entry, bool) {
	e, ok := a.entries[normalizePath(path)]
	return e, ok
}

// Contains reports whether path is stored in the archive.
func (a *Archive) Contains(path string) bool {
	_, ok := a.Stat(path)
	return ok
}

// Read returns the uncompressed contents of path.
func (a *Archive) Read(path string) ([]byte, error) {
	e, ok := a.Stat(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if e.Flags&(FlagMixCrypt|FlagDES) != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, path)
	}
	if e.CompressedSize > e.AlignedSize {
		return nil, fmt.Errorf("%w: %s compressed size exceeds stored size", ErrCorruptTable, path)
	}

	data := make([]byte, e.AlignedSize)
	if err := readAt(a.r, data, int64(e.Offset)+headerSize); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if e.CompressedSize == e.Size {
		return data[:e.Size], nil
	}
	out, err := inflate(data[:e.CompressedSize], e.Size)
	if err != nil {
		return nil, fmt.Errorf("inflating %s: %w", path, err)
	}
	return out, nil
}

func inflate(packed []byte, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}

// readAt fills p from offset off. A full read ending at EOF is not an error.
func readAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func normalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
}
