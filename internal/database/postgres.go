package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThiagoRGoveia/contract-features/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func ConnectDB(connStr string) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return dbpool, nil
}

type PostgresDBManager struct {
	dbpool *pgxpool.Pool
	ctx    context.Context
}

func NewPostgresDBManager(ctx context.Context, pool *pgxpool.Pool) *PostgresDBManager {
	return &PostgresDBManager{dbpool: pool, ctx: ctx}
}

func (m *PostgresDBManager) CreateFileRecordsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS file_records (
		id SERIAL PRIMARY KEY,
		file_name VARCHAR(1024) NOT NULL,
		processed_at TIMESTAMP NOT NULL,
		status VARCHAR(50) NOT NULL CHECK (status IN ('DONE', 'DONE_WITH_ERRORS', 'PROCESSING', 'FATAL')),
		checksum VARCHAR(64),
		errors jsonb
	);`

	_, err := m.dbpool.Exec(m.ctx, query)
	if err != nil {
		return fmt.Errorf("error creating file_records table: %w", err)
	}

	return nil
}

// CreateContractFeaturesTable creates the table holding one row per processed application.
// The same application may appear in several files, rows are told apart by checksum.
func (m *PostgresDBManager) CreateContractFeaturesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS contract_features (
		id BIGSERIAL PRIMARY KEY,
		application_id VARCHAR(255) NOT NULL,
		application_date VARCHAR(64) NOT NULL,
		tot_claim_cnt_l180d BIGINT NOT NULL,
		disb_bank_loan_wo_tbc BIGINT NOT NULL,
		day_sinlastloan BIGINT NOT NULL,
		file_id INTEGER,
		checksum VARCHAR(64) NOT NULL
	);`

	_, err := m.dbpool.Exec(m.ctx, query)
	if err != nil {
		return fmt.Errorf("error creating contract_features table: %w", err)
	}

	return nil
}

func (m *PostgresDBManager) CreateContractFeatureIndexes() error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_contract_features_application_id ON contract_features (application_id);`,
		`CREATE INDEX IF NOT EXISTS idx_contract_features_checksum ON contract_features (checksum);`,
	}

	for _, query := range queries {
		_, err := m.dbpool.Exec(m.ctx, query)
		if err != nil {
			return fmt.Errorf("error creating index: %w", err)
		}
	}

	return nil
}

func (m *PostgresDBManager) CreateWorkerStagingTable(tableName string) error {
	query := fmt.Sprintf(`CREATE UNLOGGED TABLE IF NOT EXISTS %s (LIKE contract_features INCLUDING DEFAULTS);`,
		pgx.Identifier{tableName}.Sanitize())

	_, err := m.dbpool.Exec(m.ctx, query)
	if err != nil {
		return fmt.Errorf("error creating worker staging table %s: %w", tableName, err)
	}
	log.Printf("Created staging table %s", tableName)
	return nil
}

func (m *PostgresDBManager) DropWorkerStagingTable(tableName string) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, pgx.Identifier{tableName}.Sanitize())
	_, err := m.dbpool.Exec(m.ctx, query)
	if err != nil {
		return fmt.Errorf("error dropping worker staging table %s: %w", tableName, err)
	}
	return nil
}

func (m *PostgresDBManager) InsertFileRecord(fileName string, date time.Time, status string, checksum string) (int, error) {
	query := `
	INSERT INTO file_records (file_name, processed_at, status, checksum)
	VALUES ($1, $2, $3, $4)
	RETURNING id;`

	var fileID int
	err := m.dbpool.QueryRow(m.ctx, query, fileName, date, status, checksum).Scan(&fileID)
	if err != nil {
		return 0, fmt.Errorf("error inserting file record: %w", err)
	}

	return fileID, nil
}

func (m *PostgresDBManager) UpdateFileStatus(fileID int, status string, errors any) error {
	query := `
	UPDATE file_records
	SET status = $1,
		errors = $2
	WHERE id = $3;`

	_, err := m.dbpool.Exec(m.ctx, query, status, errors, fileID)
	if err != nil {
		return fmt.Errorf("error updating file status: %w", err)
	}

	return nil
}

func (m *PostgresDBManager) IsFileAlreadyProcessed(checksum string) (bool, error) {
	query := `
	SELECT id
	FROM file_records
	WHERE checksum = $1 AND status = 'DONE'
	LIMIT 1;`

	var id int

	err := m.dbpool.QueryRow(m.ctx, query, checksum).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error finding file record by checksum: %w", err)
	}

	return true, nil
}

func (m *PostgresDBManager) copyFeaturesIntoStagingTable(tx pgx.Tx, rows []*models.FeatureRow, stagingTableName string) error {
	columnNames := []string{
		"application_id", "application_date", "tot_claim_cnt_l180d", "disb_bank_loan_wo_tbc", "day_sinlastloan", "file_id", "checksum",
	}

	copySource := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		row := rows[i]
		return []any{row.ID, row.ApplicationDate, row.TotClaimCntL180d, row.DisbBankLoanWoTbc, row.DaySinLastLoan, row.FileID, row.CheckSum},
			nil
	})

	_, err := tx.CopyFrom(
		m.ctx,
		pgx.Identifier{stagingTableName},
		columnNames,
		copySource,
	)

	return err
}

// InsertDiffFromStagingTable bulk loads rows into the staging table and moves only the rows
// whose checksum is not yet stored for the same application into contract_features.
func (m *PostgresDBManager) InsertDiffFromStagingTable(rows []*models.FeatureRow, stagingTableName string) error {
	tx, err := m.dbpool.Begin(m.ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(m.ctx)

	log.Debugf("Bulk loading %d feature rows into staging table %s", len(rows), stagingTableName)
	err = m.copyFeaturesIntoStagingTable(tx, rows, stagingTableName)
	if err != nil {
		return fmt.Errorf("unable to copy feature rows to staging table %s: %w", stagingTableName, err)
	}

	insertDiffQuery := fmt.Sprintf(`
	WITH staging_diff AS (
		SELECT DISTINCT ON (s.checksum, s.application_id)
			s.application_id, s.application_date, s.tot_claim_cnt_l180d, s.disb_bank_loan_wo_tbc, s.day_sinlastloan, s.file_id, s.checksum
		FROM %s s
		WHERE NOT EXISTS (
			SELECT 1
			FROM contract_features f
			WHERE f.checksum = s.checksum AND f.application_id = s.application_id
		)
	)
	INSERT INTO contract_features (application_id, application_date, tot_claim_cnt_l180d, disb_bank_loan_wo_tbc, day_sinlastloan, file_id, checksum)
	SELECT application_id, application_date, tot_claim_cnt_l180d, disb_bank_loan_wo_tbc, day_sinlastloan, file_id, checksum
	FROM staging_diff;
	`, pgx.Identifier{stagingTableName}.Sanitize())

	_, err = tx.Exec(m.ctx, insertDiffQuery)
	if err != nil {
		return fmt.Errorf("error inserting differences from staging table %s: %w", stagingTableName, err)
	}

	truncateQuery := fmt.Sprintf(`TRUNCATE %s;`, pgx.Identifier{stagingTableName}.Sanitize())
	_, err = tx.Exec(m.ctx, truncateQuery)
	if err != nil {
		log.Warnf("failed to truncate staging table %s: %v", stagingTableName, err)
	}

	return tx.Commit(m.ctx)
}

func (m *PostgresDBManager) GetFeaturesByApplicationID(applicationID string) ([]models.FeatureRow, error) {
	query := `
	SELECT application_id, application_date, tot_claim_cnt_l180d, disb_bank_loan_wo_tbc, day_sinlastloan, COALESCE(file_id, 0), checksum
	FROM contract_features
	WHERE application_id = $1
	ORDER BY id;`

	rows, err := m.dbpool.Query(m.ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error querying features for application %s: %w", applicationID, err)
	}

	features, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FeatureRow, error) {
		var f models.FeatureRow
		err := row.Scan(&f.ID, &f.ApplicationDate, &f.TotClaimCntL180d, &f.DisbBankLoanWoTbc, &f.DaySinLastLoan, &f.FileID, &f.CheckSum)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning features for application %s: %w", applicationID, err)
	}

	return features, nil
}
