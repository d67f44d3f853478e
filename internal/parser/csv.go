package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ThiagoRGoveia/contract-features/internal/models"
	"github.com/ThiagoRGoveia/contract-features/pkg/checksum"
)

const (
	ColumnID              = "id"
	ColumnApplicationDate = "application_date"
	ColumnContracts       = "contracts"
)

// Columns holds the position of each required input column.
type Columns struct {
	ID              int
	ApplicationDate int
	Contracts       int
}

// ParseHeader locates the required columns. Extra columns are ignored.
func ParseHeader(header []string) (Columns, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		pos, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return pos
	}

	columns := Columns{
		ID:              lookup(ColumnID),
		ApplicationDate: lookup(ColumnApplicationDate),
		Contracts:       lookup(ColumnContracts),
	}
	if len(missing) > 0 {
		return Columns{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// unquoted JSON cells carry bare quotes
	reader.LazyQuotes = true
	return reader
}

// ValidateFile checks that filePath is a CSV file carrying the required header.
func ValidateFile(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	header, err := newReader(file).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("file %s is empty", filePath)
		}
		return fmt.Errorf("failed to read header from %s: %w", filePath, err)
	}

	if _, err := ParseHeader(header); err != nil {
		return fmt.Errorf("invalid header in %s: %w", filePath, err)
	}
	return nil
}

func field(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return record[pos]
}

func parseRecord(record []string, columns Columns, fileID int) *models.Application {
	app := &models.Application{
		ID:              strings.TrimSpace(field(record, columns.ID)),
		ApplicationDate: strings.TrimSpace(field(record, columns.ApplicationDate)),
		FileID:          fileID,
	}
	// an empty cell means no contracts at all
	if contracts := field(record, columns.Contracts); contracts != "" {
		app.Contracts = contracts
	}
	return app
}

// ParseCSV streams the applications of one file into records in file order.
// nextSeq hands out the global sequence number of every emitted row. Malformed
// rows are reported on errorsChan and skipped; a failing reader stops the file.
func ParseCSV(filePath string, fileID int, nextSeq func() int, records chan<- *models.Application, errorsChan chan<- models.AppError) error {
	file, err := os.Open(filePath)
	if err != nil {
		errorsChan <- models.AppError{FileID: fileID, Message: "Failed to open file", Err: err, Fatal: true}
		return err
	}
	defer file.Close()

	return ReadApplications(file, fileID, nextSeq, records, errorsChan)
}

// ReadApplications is ParseCSV over an already opened reader.
func ReadApplications(r io.Reader, fileID int, nextSeq func() int, records chan<- *models.Application, errorsChan chan<- models.AppError) error {
	reader := newReader(r)

	header, err := reader.Read()
	if err != nil {
		errorsChan <- models.AppError{FileID: fileID, Message: "Failed to read header from CSV", Err: err, Fatal: true}
		return err
	}
	columns, err := ParseHeader(header)
	if err != nil {
		errorsChan <- models.AppError{FileID: fileID, Message: "Invalid CSV header", Err: err, Fatal: true}
		return err
	}

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				errorsChan <- models.AppError{FileID: fileID, Row: row, Message: "Failed to read file", Err: err, Fatal: true}
				return err
			}
			errorsChan <- models.AppError{FileID: fileID, Row: row, Message: "Failed to read record from CSV", Err: err}
			continue // Skip corrupted records
		}

		app := parseRecord(record, columns, fileID)
		app.CheckSum = checksum.CalculateHash(record)
		app.Seq = nextSeq()
		records <- app
	}

	return nil
}
