package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteCSV writes one rugosity value per line with no header.
func WriteCSV(w io.Writer, values []float64) error {
	cw := csv.NewWriter(w)
	for _, v := range values {
		if err := cw.Write([]string{strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes values to path, adding a .csv extension when missing
// and creating parent directories. It returns the path written.
func WriteCSVFile(path string, values []float64) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		path += ".csv"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, values); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// ReadCSV reads values written by WriteCSV. Only the first field of each
// record is used.
func ReadCSV(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(records))
	for i, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// ReadCSVFile reads values from a CSV file.
func ReadCSVFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
