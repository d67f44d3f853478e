package models

import (
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
)

// Application is one input row: an applicant id, the application date as found in the
// source and the raw contracts field. Contracts is either nil, a string holding a JSON
// document, or an already decoded list/object.
type Application struct {
	ID              string `json:"id"`
	ApplicationDate string `json:"application_date"`
	Contracts       any    `json:"contracts"`
	FileID          int    `json:"-"`
	Seq             int    `json:"-"`
	CheckSum        string `json:"-"`
}

// FeatureRow is one output row.
type FeatureRow struct {
	ID                string `json:"id"`
	ApplicationDate   string `json:"application_date"`
	TotClaimCntL180d  int64  `json:"tot_claim_cnt_l180d"`
	DisbBankLoanWoTbc int64  `json:"disb_bank_loan_wo_tbc"`
	DaySinLastLoan    int64  `json:"day_sinlastloan"`
	FileID            int    `json:"-"`
	Seq               int    `json:"-"`
	CheckSum          string `json:"-"`
}

// OutputColumns is the column order of every tabular sink.
var OutputColumns = []string{
	"id",
	"application_date",
	"tot_claim_cnt_l180d",
	"disb_bank_loan_wo_tbc",
	"day_sinlastloan",
}

// AppError is a failure tied to a file, and to a row when Row > 0. Fatal marks
// failures that stopped the whole file from being read.
type AppError struct {
	FileID      int
	Row         int
	Message     string
	Err         error
	Fatal       bool
	Application *Application
}

func (e *AppError) Error() string {
	location := fmt.Sprintf("FileID %d", e.FileID)
	if e.Row > 0 {
		location = fmt.Sprintf("FileID %d row %d", e.FileID, e.Row)
	}

	var appDetails string
	if e.Application != nil {
		appJSON, err := json.Marshal(e.Application)
		if err != nil {
			appDetails = "failed to marshal application to JSON"
		} else {
			appDetails = string(appJSON)
		}
	}

	if e.Err != nil {
		if appDetails != "" {
			return fmt.Sprintf("%s: %s - %v - Application: %s", location, e.Message, e.Err, appDetails)
		}
		return fmt.Sprintf("%s: %s - %v", location, e.Message, e.Err)
	}

	if appDetails != "" {
		return fmt.Sprintf("%s: %s - Application: %s", location, e.Message, appDetails)
	}

	return fmt.Sprintf("%s: %s", location, e.Message)
}

// MarshalJSON keeps the wrapped error readable when a file's errors are stored as jsonb.
func (e AppError) MarshalJSON() ([]byte, error) {
	var errText string
	if e.Err != nil {
		errText = e.Err.Error()
	}
	return json.Marshal(struct {
		FileID  int    `json:"file_id"`
		Row     int    `json:"row,omitempty"`
		Message string `json:"message"`
		Err     string `json:"error,omitempty"`
		Fatal   bool   `json:"fatal,omitempty"`
	}{e.FileID, e.Row, e.Message, errText, e.Fatal})
}

type FileProcessingJob struct {
	FilePath string
	FileID   int
}

type FileInfo struct {
	Path string
}

type FileErrorMap struct {
	Errors map[int][]AppError
	Mu     sync.Mutex
}

type ExtractionChannels struct {
	Jobs    chan FileProcessingJob
	Records chan *Application
	Results chan *FeatureRow
	Errors  chan AppError
}

type ExtractionWaitGroups struct {
	ParserWg  *sync.WaitGroup
	FeatureWg *sync.WaitGroup
	SinkWg    *sync.WaitGroup
	MainWg    *sync.WaitGroup
}

type FileMap = map[int]string

type SetupReturn struct {
	Channels      *ExtractionChannels
	WaitGroups    *ExtractionWaitGroups
	FileMap       *FileMap
	FileErrorsMap *FileErrorMap
}

func (s *SetupReturn) GetValues() (*ExtractionChannels, *ExtractionWaitGroups, *FileMap, *FileErrorMap) {
	return s.Channels, s.WaitGroups, s.FileMap, s.FileErrorsMap
}
