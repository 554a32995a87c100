package dem

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Binary cache errors.
var (
	ErrInvalidMagic       = errors.New("invalid DEM cache magic: expected 'RDEM'")
	ErrUnsupportedVersion = errors.New("unsupported DEM cache version")
	ErrUnknownFormat      = errors.New("unknown DEM file format")
)

const binaryMagic = "RDEM"

// BinaryVersion is the cache format version.
type BinaryVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v BinaryVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentBinaryVersion is written by EncodeBinary.
var CurrentBinaryVersion = BinaryVersion{Major: 1, Minor: 0}

// binaryHeaderSize is magic + version + rows + cols + cell size.
const binaryHeaderSize = 4 + 2 + 4 + 4 + 8

// EncodeBinary writes g in the compressed cache format:
//
//	"RDEM" | minor u8 | major u8 | rows u32 | cols u32 | cellsize f64 | zlib(f64 * rows*cols)
//
// All integers and floats are little-endian. NoData survives as NaN.
func EncodeBinary(w io.Writer, g *Grid) error {
	hdr := new(bytes.Buffer)
	hdr.WriteString(binaryMagic)
	hdr.WriteByte(CurrentBinaryVersion.Minor)
	hdr.WriteByte(CurrentBinaryVersion.Major)
	binary.Write(hdr, binary.LittleEndian, uint32(g.Rows))
	binary.Write(hdr, binary.LittleEndian, uint32(g.Cols))
	binary.Write(hdr, binary.LittleEndian, g.CellSize)
	if _, err := w.Write(hdr.Bytes()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	zw := zlib.NewWriter(w)
	bw := bufio.NewWriter(zw)
	var buf [8]byte
	for _, z := range g.Data {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(z))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("writing cells: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing cells: %w", err)
	}
	return zw.Close()
}

// ParseBinary parses a cache file from raw bytes.
func ParseBinary(data []byte) (*Grid, error) {
	if len(data) < binaryHeaderSize {
		return nil, ErrTruncatedData
	}
	if string(data[0:4]) != binaryMagic {
		return nil, ErrInvalidMagic
	}

	// Version is stored as [minor, major]
	version := BinaryVersion{Major: data[5], Minor: data[4]}
	if version.Major != CurrentBinaryVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}

	rows := binary.LittleEndian.Uint32(data[6:10])
	cols := binary.LittleEndian.Uint32(data[10:14])
	cellSize := math.Float64frombits(binary.LittleEndian.Uint64(data[14:22]))

	// Guard allocation against corrupt headers.
	if rows == 0 || cols == 0 || rows > MaxDimension || cols > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}

	g, err := NewGrid(int(rows), int(cols), cellSize, NoData)
	if err != nil {
		return nil, err
	}

	payload := bytes.NewReader(data[binaryHeaderSize:])
	zr, err := zlib.NewReader(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}
	defer zr.Close()

	br := bufio.NewReader(zr)
	var buf [8]byte
	for i := range g.Data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: reading cell %d", ErrTruncatedData, i)
		}
		g.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
	}

	// Reading to EOF verifies the zlib checksum.
	if _, err := br.ReadByte(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%w: extra cell data", ErrTruncatedData)
		}
		return nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}
	if payload.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncatedData, payload.Len())
	}

	return g, nil
}

// ParseBinaryFile parses a cache file from disk.
func ParseBinaryFile(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DEM cache: %w", err)
	}
	return ParseBinary(data)
}

// WriteBinaryFile writes g to path in the cache format.
func WriteBinaryFile(path string, g *Grid) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating DEM cache: %w", err)
	}
	if err := EncodeBinary(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CachePath returns the cache file path next to an ASCII grid.
func CachePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".rdem"
}

// Name returns the DEM name used to label results: the base file name
// without directory or extension.
func Name(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	if i := strings.LastIndex(base, "\\"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads a grid by extension: .asc/.txt as ESRI ASCII, .rdem as cache.
func Load(path string) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc", ".txt":
		g, _, err := ParseASCIIFile(path)
		return g, err
	case ".rdem":
		return ParseBinaryFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadCached loads an ASCII grid through its binary cache next to it,
// writing the cache when it is missing or older than the source. Other
// formats load directly. The bool reports whether the cache was read.
func LoadCached(path string) (*Grid, bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc", ".txt":
	default:
		g, err := Load(path)
		return g, false, err
	}

	src, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	cache := CachePath(path)
	if info, err := os.Stat(cache); err == nil && !info.ModTime().Before(src.ModTime()) {
		if g, err := ParseBinaryFile(cache); err == nil {
			return g, true, nil
		}
		// Unreadable cache falls through and is rewritten.
	}

	g, _, err := ParseASCIIFile(path)
	if err != nil {
		return nil, false, err
	}
	if err := WriteBinaryFile(cache, g); err != nil {
		return g, false, fmt.Errorf("writing cache %s: %w", cache, err)
	}
	return g, false, nil
}
