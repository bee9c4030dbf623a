package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var _ Codec = csvCodec{} // ensure csvCodec implements Codec.

// csvCodec stores a collection as a header row followed by one row per record.
type csvCodec struct{}

// Decode maps every line onto the header names. Short lines leave the
// missing columns empty; lines longer than the header are rejected.
func (csvCodec) Decode(r io.Reader, _ Schema) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	rows := []Row{}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(record), len(header))
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode writes the schema columns in their declared order.
func (csvCodec) Encode(w io.Writer, schema Schema, rows []Row) error {
	cw := csv.NewWriter(w)
	columns := schema.Columns()
	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
