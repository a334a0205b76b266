// Package formats reads altitude table heightmaps.
//
// An altitude table (.gat) stores a grid of cells, each with the altitude of
// its four corners followed by a cell type word. Altitudes grow downward.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// Altitude table errors.
var (
	ErrInvalidMagic       = errors.New("invalid altitude table magic: expected 'GRAT'")
	ErrUnsupportedVersion = errors.New("unsupported altitude table version")
	ErrTruncated          = errors.New("truncated altitude table")
	ErrDimensions         = errors.New("invalid altitude table dimensions")
)

const (
	altitudeMagic      = "GRAT"
	altitudeHeaderSize = 14
	altitudeCellSize   = 20
	maxAltitudeCells   = 4096
)

// Corner indices within a cell.
const (
	CornerBottomLeft = iota
	CornerBottomRight
	CornerTopLeft
	CornerTopRight
)

// Version is an altitude table version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AltitudeTable is a parsed altitude table.
type AltitudeTable struct {
	Version Version
	Width   int
	Height  int
	Cells   [][4]float32 // Row-major corner altitudes, indexed by Corner*
}

// Cell returns the corner altitudes of cell (x, y).
func (t *AltitudeTable) Cell(x, y int) ([4]float32, bool) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return [4]float32{}, false
	}
	return t.Cells[y*t.Width+x], true
}

// Range returns the lowest and highest stored altitude.
func (t *AltitudeTable) Range() (lo, hi float32) {
	if len(t.Cells) == 0 {
		return 0, 0
	}
	lo, hi = t.Cells[0][0], t.Cells[0][0]
	for _, c := range t.Cells {
		for _, a := range c {
			lo = min(lo, a)
			hi = max(hi, a)
		}
	}
	return lo, hi
}

// Elevations returns a (Width+1) x (Height+1) row-major grid of corner
// elevations. Corners shared by neighbouring cells are averaged and the sign
// is flipped so larger values are higher.
func (t *AltitudeTable) Elevations() (samples []float32, width, height int) {
	width, height = t.Width+1, t.Height+1
	samples = make([]float32, width*height)
	counts := make([]uint8, width*height)

	for y := range t.Height {
		for x := range t.Width {
			c := t.Cells[y*t.Width+x]
			for corner, a := range c {
				cx := x + corner&1
				cy := y + corner>>1
				i := cy*width + cx
				samples[i] -= a
				counts[i]++
			}
		}
	}
	for i, n := range counts {
		samples[i] /= float32(n)
	}
	return samples, width, height
}

// ParseAltitudeTable parses an altitude table from raw bytes.
func ParseAltitudeTable(data []byte) (*AltitudeTable, error) {
	if len(data) < altitudeHeaderSize {
		return nil, ErrTruncated
	}
	if string(data[0:4]) != altitudeMagic {
		return nil, ErrInvalidMagic
	}

	// Stored as [minor, major]; the cell layout is the same for 1.x to 3.x.
	version := Version{Major: data[5], Minor: data[4]}
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}

	width := binary.LittleEndian.Uint32(data[6:10])
	height := binary.LittleEndian.Uint32(data[10:14])
	if width == 0 || height == 0 || width > maxAltitudeCells || height > maxAltitudeCells {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}

	count := int(width) * int(height)
	body := data[altitudeHeaderSize:]
	if len(body) < count*altitudeCellSize {
		return nil, fmt.Errorf("%w: %d cells need %d bytes, have %d",
			ErrTruncated, count, count*altitudeCellSize, len(body))
	}

	table := &AltitudeTable{
		Version: version,
		Width:   int(width),
		Height:  int(height),
		Cells:   make([][4]float32, count),
	}
	for i := range table.Cells {
		cell := body[i*altitudeCellSize:]
		for c := range 4 {
			bits := binary.LittleEndian.Uint32(cell[c*4:])
			table.Cells[i][c] = math.Float32frombits(bits)
		}
	}
	return table, nil
}

// ParseAltitudeFile parses an altitude table from disk.
func ParseAltitudeFile(path string) (*AltitudeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading altitude table: %w", err)
	}
	return ParseAltitudeTable(data)
}
