package ingestion

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ThiagoRGoveia/contract-features/internal/database"
	"github.com/ThiagoRGoveia/contract-features/internal/models"
	"github.com/ThiagoRGoveia/contract-features/internal/parser"
	log "github.com/sirupsen/logrus"
)

// Processor defines the interface for file processing operations.
type Processor interface {
	ScanForFiles(rootPath string) ([]models.FileInfo, error)
	UpdateFileStatus(fileErrorsMap *models.FileErrorMap, fileMap *models.FileMap) error
}

// FileProcessor discovers input files and records how each one ended.
// Without a registry the outcome is only logged.
type FileProcessor struct {
	registry database.FileRegistry
}

func NewFileProcessor(registry database.FileRegistry) *FileProcessor {
	return &FileProcessor{
		registry: registry,
	}
}

// ScanForFiles accepts a single CSV file or a directory. Directories are walked in
// lexical order and every .csv file with a valid header is kept; the rest is skipped
// with a warning. A single file with a bad header is an error.
func (fp *FileProcessor) ScanForFiles(rootPath string) ([]models.FileInfo, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access input %s: %w", rootPath, err)
	}

	if !info.IsDir() {
		if err := parser.ValidateFile(rootPath); err != nil {
			return nil, err
		}
		return []models.FileInfo{{Path: rootPath}}, nil
	}

	var fileInfos []models.FileInfo
	log.Printf("Scanning for files in: %s", rootPath)

	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		if err := parser.ValidateFile(path); err != nil {
			log.Warnf("Skipping file %s: %v", path, err)
			return nil
		}

		fileInfos = append(fileInfos, models.FileInfo{Path: path})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", rootPath, err)
	}

	log.Printf("Found %d files to process.", len(fileInfos))
	return fileInfos, nil
}

func (fp *FileProcessor) UpdateFileStatus(fileErrorsMap *models.FileErrorMap, fileMap *models.FileMap) error {
	for fileID, path := range *fileMap {
		appErrors := fileErrorsMap.Errors[fileID]
		status := fileStatus(appErrors)

		if fp.registry == nil {
			log.WithFields(log.Fields{
				"file_id": fileID,
				"file":    path,
				"status":  status,
				"errors":  len(appErrors),
			}).Info("File processed")
			continue
		}

		if err := fp.registry.UpdateFileStatus(fileID, status, appErrors); err != nil {
			log.Errorf("Failed to update status for fileID %d: %v", fileID, err)
		}
	}
	return nil
}

func fileStatus(appErrors []models.AppError) string {
	for _, appErr := range appErrors {
		if appErr.Fatal {
			return database.FILE_STATUS_FATAL
		}
	}
	if len(appErrors) > 0 {
		return database.FILE_STATUS_DONE_WITH_ERRORS
	}
	return database.FILE_STATUS_DONE
}
