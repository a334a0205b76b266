package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Faultbox/midgard-terrain/pkg/encoding"
)

type testFile struct {
	name     string
	data     []byte
	compress bool
	flags    uint8
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("zlib write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close failed: %v", err)
	}
	return buf.Bytes()
}

// buildArchive lays out a GRF 0x200 archive: header, file bodies, then the
// compressed file table.
func buildArchive(t *testing.T, files []testFile) []byte {
	t.Helper()

	var body, table bytes.Buffer
	for _, f := range files {
		stored := f.data
		if f.compress {
			stored = deflate(t, f.data)
		}
		aligned := (len(stored) + 7) &^ 7
		flags := f.flags
		if flags == 0 {
			flags = FlagFile
		}

		table.Write(encoding.EncodeEUCKR(f.name))
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, uint32(len(stored)))
		binary.Write(&table, binary.LittleEndian, uint32(aligned))
		binary.Write(&table, binary.LittleEndian, uint32(len(f.data)))
		table.WriteByte(flags)
		binary.Write(&table, binary.LittleEndian, uint32(body.Len()))

		body.Write(stored)
		body.Write(make([]byte, aligned-len(stored)))
	}
	packed := deflate(t, table.Bytes())

	var out bytes.Buffer
	h := header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files) + 7),
		Version:     version200,
	}
	copy(h.Magic[:], magic)
	binary.Write(&out, binary.LittleEndian, h)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(len(packed)))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(packed)
	return out.Bytes()
}

func TestRead(t *testing.T) {
	height := bytes.Repeat([]byte{1, 2, 3, 4}, 64)
	archive, err := NewReader(bytes.NewReader(buildArchive(t, []testFile{
		{name: `data\Height.raw`, data: height, compress: true},
		{name: `data\notes.txt`, data: []byte("flat")},
		{name: `data\프론테라.gat`, data: []byte("GRAT")},
		{name: `data\maps`, flags: 0x10},
	})))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer archive.Close()

	if archive.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (directory skipped)", archive.Len())
	}

	tests := []struct {
		path string
		want []byte
	}{
		{"data/height.raw", height},
		{`DATA\HEIGHT.RAW`, height},
		{"data/notes.txt", []byte("flat")},
		{"data/프론테라.gat", []byte("GRAT")},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := archive.Read(tt.path)
			if err != nil {
				t.Fatalf("Read(%q) failed: %v", tt.path, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Read(%q) returned %d bytes, want %d", tt.path, len(got), len(tt.want))
			}
		})
	}

	want := []string{"data/height.raw", "data/notes.txt", "data/프론테라.gat"}
	if got := archive.List(); !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
	if archive.Contains("data/maps") {
		t.Error("directories should not be listed as files")
	}
}

func TestReadErrors(t *testing.T) {
	archive, err := NewReader(bytes.NewReader(buildArchive(t, []testFile{
		{name: "secret.raw", data: []byte("xxxxxxxx"), flags: FlagFile | FlagDES},
	})))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	if _, err := archive.Read("missing.raw"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := archive.Read("secret.raw"); !errors.Is(err, ErrEncrypted) {
		t.Errorf("Read(encrypted) error = %v, want ErrEncrypted", err)
	}
}

func TestNewReaderErrors(t *testing.T) {
	valid := buildArchive(t, []testFile{{name: "a.raw", data: []byte{1}}})

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[42:], 0x103)

	badCount := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badCount[38:], 3)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"bad magic", badMagic, ErrInvalidMagic},
		{"bad version", badVersion, ErrUnsupportedVersion},
		{"file count below seed", badCount, ErrCorruptTable},
		{"truncated table", valid[:len(valid)-4], ErrCorruptTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewReader(bytes.NewReader(tt.data)); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewReader() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewReader(bytes.NewReader(valid[:20])); err == nil {
		t.Error("expected error for a short header")
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.grf")
	data := buildArchive(t, []testFile{{name: "height.raw", data: []byte{0, 255}, compress: true}})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got, err := archive.Read("height.raw")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0, 255}) {
		t.Errorf("Read() = %v, want [0 255]", got)
	}
	if err := archive.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.grf")); err == nil {
		t.Error("expected error opening a missing archive")
	}
}
