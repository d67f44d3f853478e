package database

import (
	"time"

	"github.com/ThiagoRGoveia/contract-features/internal/models"
)

const (
	FILE_STATUS_PROCESSING       = "PROCESSING"
	FILE_STATUS_DONE             = "DONE"
	FILE_STATUS_DONE_WITH_ERRORS = "DONE_WITH_ERRORS"
	FILE_STATUS_FATAL            = "FATAL"
)

// FileRegistry tracks input files so a file that was fully processed is not processed again.
type FileRegistry interface {
	InsertFileRecord(fileName string, date time.Time, status string, checksum string) (int, error)
	UpdateFileStatus(fileID int, status string, errors any) error
	IsFileAlreadyProcessed(checksum string) (bool, error)
}

type DBManager interface {
	FileRegistry
	CreateFileRecordsTable() error
	CreateContractFeaturesTable() error
	CreateContractFeatureIndexes() error
	CreateWorkerStagingTable(tableName string) error
	DropWorkerStagingTable(tableName string) error
	InsertDiffFromStagingTable(rows []*models.FeatureRow, stagingTableName string) error
	GetFeaturesByApplicationID(applicationID string) ([]models.FeatureRow, error)
}
