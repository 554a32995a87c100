package dem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ASCII grid errors.
var (
	ErrInvalidHeader = errors.New("invalid ASCII grid header")
	ErrTruncatedData = errors.New("truncated grid data")
)

// ASCIIHeader holds the ESRI ASCII grid header fields.
type ASCIIHeader struct {
	NCols     int
	NRows     int
	XLL       float64
	YLL       float64
	Center    bool // XLL/YLL refer to the cell centre rather than the corner
	CellSize  float64
	NoData    float64
	HasNoData bool
}

// ParseASCII reads an ESRI ASCII grid. Values equal to the header's
// NODATA_value become NoData.
func ParseASCII(r io.Reader) (*Grid, ASCIIHeader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	var hdr ASCIIHeader
	var pending string
	seen := make(map[string]bool)

	// Header keys come as key/value pairs until the first numeric token.
	for sc.Scan() {
		tok := sc.Text()
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			pending = tok
			break
		}
		key := strings.ToLower(tok)
		if !sc.Scan() {
			return nil, hdr, fmt.Errorf("%w: missing value for %s", ErrInvalidHeader, tok)
		}
		val := sc.Text()
		if err := hdr.set(key, val); err != nil {
			return nil, hdr, err
		}
		seen[key] = true
	}
	if err := sc.Err(); err != nil {
		return nil, hdr, fmt.Errorf("reading ASCII grid: %w", err)
	}

	for _, key := range []string{"ncols", "nrows", "cellsize"} {
		if !seen[key] {
			return nil, hdr, fmt.Errorf("%w: missing %s", ErrInvalidHeader, key)
		}
	}

	g, err := NewGrid(hdr.NRows, hdr.NCols, hdr.CellSize, NoData)
	if err != nil {
		return nil, hdr, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	n := 0
	next := func() (string, bool) {
		if pending != "" {
			tok := pending
			pending = ""
			return tok, true
		}
		if sc.Scan() {
			return sc.Text(), true
		}
		return "", false
	}
	for n < len(g.Data) {
		tok, ok := next()
		if !ok {
			break
		}
		z, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, hdr, fmt.Errorf("parsing value %d (row %d): %w", n, n/g.Cols, err)
		}
		if hdr.HasNoData && z == hdr.NoData {
			z = NoData
		}
		g.Data[n] = z
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, hdr, fmt.Errorf("reading ASCII grid: %w", err)
	}
	if n < len(g.Data) {
		return nil, hdr, fmt.Errorf("%w: got %d of %d values", ErrTruncatedData, n, len(g.Data))
	}

	return g, hdr, nil
}

func (h *ASCIIHeader) set(key, val string) error {
	var err error
	switch key {
	case "ncols":
		h.NCols, err = strconv.Atoi(val)
	case "nrows":
		h.NRows, err = strconv.Atoi(val)
	case "xllcorner":
		h.XLL, err = strconv.ParseFloat(val, 64)
	case "xllcenter":
		h.XLL, err = strconv.ParseFloat(val, 64)
		h.Center = true
	case "yllcorner":
		h.YLL, err = strconv.ParseFloat(val, 64)
	case "yllcenter":
		h.YLL, err = strconv.ParseFloat(val, 64)
		h.Center = true
	case "cellsize":
		h.CellSize, err = strconv.ParseFloat(val, 64)
	case "nodata_value":
		h.NoData, err = strconv.ParseFloat(val, 64)
		h.HasNoData = true
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidHeader, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidHeader, key, err)
	}
	return nil
}

// ParseASCIIFile parses an ESRI ASCII grid from disk.
func ParseASCIIFile(path string) (*Grid, ASCIIHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ASCIIHeader{}, fmt.Errorf("opening ASCII grid: %w", err)
	}
	defer f.Close()
	return ParseASCII(f)
}
