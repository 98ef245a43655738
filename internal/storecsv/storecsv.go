// Package storecsv reads store import files. The same parser feeds the
// admin upload endpoint and the storectl bulk importer.
package storecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns lists the recognised header names in export order.
var Columns = []string{
	"store_id", "name", "store_type", "status",
	"latitude", "longitude",
	"address_street", "address_city", "address_state", "address_postal_code", "address_country",
	"phone", "services",
	"hours_mon", "hours_tue", "hours_wed", "hours_thu", "hours_fri", "hours_sat", "hours_sun",
	"timezone",
}

var requiredColumns = []string{"store_id", "name", "store_type"}

// Row is one parsed data line. Latitude and Longitude are nil when the cell
// is empty. Services are the raw pipe-separated names.
type Row struct {
	Line              int
	StoreID           string
	Name              string
	StoreType         string
	Status            string
	Latitude          *float64
	Longitude         *float64
	AddressStreet     string
	AddressCity       string
	AddressState      string
	AddressPostalCode string
	AddressCountry    string
	Phone             string
	Services          []string
	Hours             [7]string
	Timezone          string
}

// RowError describes a line that could not be parsed.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// ErrInvalidFile marks a file that cannot be imported at all.
var ErrInvalidFile = errors.New("invalid CSV file")

// Result holds the parsed rows and the lines that failed.
type Result struct {
	Rows    []Row
	Errors  []RowError
	Skipped int
}

// Parse reads a CSV with a header line. Lines without a store_id are
// skipped; lines with malformed coordinates are reported in Errors. A
// missing required header column fails the whole file.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidFile, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[h] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidFile, col)
		}
	}

	res := &Result{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := Row{
			Line:              line,
			StoreID:           cell("store_id"),
			Name:              cell("name"),
			StoreType:         cell("store_type"),
			Status:            strings.ToLower(cell("status")),
			AddressStreet:     cell("address_street"),
			AddressCity:       cell("address_city"),
			AddressState:      cell("address_state"),
			AddressPostalCode: cell("address_postal_code"),
			AddressCountry:    cell("address_country"),
			Phone:             cell("phone"),
			Timezone:          cell("timezone"),
		}
		if row.StoreID == "" {
			res.Skipped++
			continue
		}
		if s := cell("services"); s != "" {
			row.Services = strings.Split(s, "|")
		}
		for d, col := range []string{"hours_mon", "hours_tue", "hours_wed", "hours_thu", "hours_fri", "hours_sat", "hours_sun"} {
			row.Hours[d] = cell(col)
		}

		if row.Latitude, err = parseCoordinate(cell("latitude")); err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: fmt.Errorf("latitude: %w", err)})
			continue
		}
		if row.Longitude, err = parseCoordinate(cell("longitude")); err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: fmt.Errorf("longitude: %w", err)})
			continue
		}

		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func parseCoordinate(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
