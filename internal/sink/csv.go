package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ThiagoRGoveia/contract-features/internal/models"
)

// CSVSink writes feature rows as comma separated values, header first.
type CSVSink struct {
	writer *csv.Writer
	closer io.Closer
}

// NewCSVFileSink creates (or truncates) the file at path.
func NewCSVFileSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	s, err := NewCSVSink(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	s.closer = file
	return s, nil
}

func NewCSVSink(w io.Writer) (*CSVSink, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.OutputColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	return &CSVSink{writer: writer}, nil
}

func (s *CSVSink) Write(rows []*models.FeatureRow) error {
	for _, row := range rows {
		record := []string{
			row.ID,
			row.ApplicationDate,
			strconv.FormatInt(row.TotClaimCntL180d, 10),
			strconv.FormatInt(row.DisbBankLoanWoTbc, 10),
			strconv.FormatInt(row.DaySinLastLoan, 10),
		}
		if err := s.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for application %s: %w", row.ID, err)
		}
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVSink) Close() error {
	s.writer.Flush()
	err := s.writer.Error()
	if s.closer != nil {
		if closeErr := s.closer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
