package sink

import (
	"fmt"

	"github.com/ThiagoRGoveia/contract-features/internal/database"
	"github.com/ThiagoRGoveia/contract-features/internal/models"
	log "github.com/sirupsen/logrus"
)

// PostgresSink persists feature rows through a private staging table that lives
// as long as the sink.
type PostgresSink struct {
	dbManager        database.DBManager
	stagingTableName string
}

func NewPostgresSink(dbManager database.DBManager, stagingTableName string) (*PostgresSink, error) {
	if err := dbManager.CreateWorkerStagingTable(stagingTableName); err != nil {
		return nil, fmt.Errorf("failed to prepare staging table: %w", err)
	}
	return &PostgresSink{dbManager: dbManager, stagingTableName: stagingTableName}, nil
}

func (s *PostgresSink) Write(rows []*models.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.dbManager.InsertDiffFromStagingTable(rows, s.stagingTableName)
}

func (s *PostgresSink) Close() error {
	log.Printf("Cleaning up staging table %s", s.stagingTableName)
	return s.dbManager.DropWorkerStagingTable(s.stagingTableName)
}
