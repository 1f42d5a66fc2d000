package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"causalUplift/domain"
)

type DatasetRepository struct{}

func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{}
}

// Load reads a delimited file with a header row. A missing or unreadable
// file, as well as a malformed one, is reported as a DataAccessError.
func (r *DatasetRepository) Load(ctx context.Context, path string) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, fmt.Errorf("context error: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Dataset{}, &domain.DataAccessError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return domain.Dataset{}, &domain.DataAccessError{Path: path, Err: err}
	}
	return ds, nil
}

// Parse decodes CSV content. Columns treatment and conversion are required
// and must hold 0/1 (or true/false) values.
func Parse(rd io.Reader) (domain.Dataset, error) {
	reader := csv.NewReader(rd)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.Dataset{}, errors.New("empty file")
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	ds := domain.Dataset{Columns: columns}
	treatmentIdx := ds.ColumnIndex(domain.ColumnTreatment)
	conversionIdx := ds.ColumnIndex(domain.ColumnConversion)
	if treatmentIdx < 0 {
		return domain.Dataset{}, fmt.Errorf("missing required column %q", domain.ColumnTreatment)
	}
	if conversionIdx < 0 {
		return domain.Dataset{}, fmt.Errorf("missing required column %q", domain.ColumnConversion)
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("read row: %w", err)
		}

		treatment, err := parseBinary(row[treatmentIdx])
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("line %d column %s: %w", line, domain.ColumnTreatment, err)
		}
		conversion, err := parseBinary(row[conversionIdx])
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("line %d column %s: %w", line, domain.ColumnConversion, err)
		}

		ds.Records = append(ds.Records, domain.Record{
			Values:     row,
			Treatment:  treatment,
			Conversion: conversion,
		})
	}

	return ds, nil
}

func parseBinary(raw string) (int, error) {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid binary value %q", raw)
	}
	switch f {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("invalid binary value %q", raw)
}
