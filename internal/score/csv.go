package score

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvHeader is the interchange schema: what is written is exactly what can
// be read back.
var csvHeader = []string{"individual", "correct", "total"}

// ExportCSV writes the full ledger as CSV, sorted by individual.
func ExportCSV(w io.Writer, l *Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, id := range l.IDs() {
		rec, _ := l.Get(id)
		row := []string{id, strconv.Itoa(rec.Correct), strconv.Itoa(rec.Total)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %q: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads a ledger previously written by ExportCSV.
func ImportCSV(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected CSV header %v", header)
		}
	}

	l := NewLedger()
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		correct, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("parse correct for %q: %w", row[0], err)
		}
		total, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("parse total for %q: %w", row[0], err)
		}
		l.Set(row[0], Record{Correct: correct, Total: total})
	}
	return l, nil
}
