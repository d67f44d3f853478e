package ingestion

import (
	"sort"
	"sync"
	"time"

	"github.com/ThiagoRGoveia/contract-features/internal/database"
	"github.com/ThiagoRGoveia/contract-features/internal/features"
	"github.com/ThiagoRGoveia/contract-features/internal/models"
	"github.com/ThiagoRGoveia/contract-features/internal/parser"
	"github.com/ThiagoRGoveia/contract-features/internal/sink"
	"github.com/ThiagoRGoveia/contract-features/pkg/checksum"
	log "github.com/sirupsen/logrus"
)

type Runner[T any] struct {
	Run T
}

type AsyncWorkerConfig struct {
	SinkBatchSize int
}

// maxErrorsPerFile bounds the errors kept for one file; past it the file is probably malformed.
const maxErrorsPerFile = 100

// Worker defines the interface for asynchronous processing tasks.
type Worker interface {
	WithChannels(channels *models.ExtractionChannels) Worker
	WithWaitGroups(waitGroups *models.ExtractionWaitGroups) Worker
	SetupErrorWorker() (Runner[func(*models.FileErrorMap)], *sync.WaitGroup, error)
	SetupJobDispatcherWorker(fileInfos []models.FileInfo, fileMap models.FileMap) (Runner[func()], *sync.WaitGroup, error)
	SetupParserWorker() (Runner[func()], *sync.WaitGroup, error)
	SetupFeatureWorkers(numberOfWorkers int) (Runner[func(features.Calculator)], *sync.WaitGroup, error)
	SetupSinkWorker() (Runner[func(sink.Sink)], *sync.WaitGroup, error)
}

// AsyncWorker runs the extraction stages. registry may be nil, files then get
// local ids and are never skipped as already processed.
type AsyncWorker struct {
	config     AsyncWorkerConfig
	registry   database.FileRegistry
	channels   *models.ExtractionChannels
	waitGroups *models.ExtractionWaitGroups
	seq        int
}

func NewAsyncWorker(registry database.FileRegistry, cfg AsyncWorkerConfig) *AsyncWorker {
	if cfg.SinkBatchSize <= 0 {
		cfg.SinkBatchSize = 1
	}
	return &AsyncWorker{
		registry: registry,
		config:   cfg,
	}
}

func (w *AsyncWorker) WithChannels(channels *models.ExtractionChannels) Worker {
	w.channels = channels
	return w
}

func (w *AsyncWorker) WithWaitGroups(waitGroups *models.ExtractionWaitGroups) Worker {
	w.waitGroups = waitGroups
	return w
}

// nextSeq is only called from the single parser goroutine.
func (w *AsyncWorker) nextSeq() int {
	w.seq++
	return w.seq
}

func (w *AsyncWorker) ParserWorker() {
	defer w.waitGroups.ParserWg.Done()
	for job := range w.channels.Jobs {
		log.Printf("Parser worker started job for file %s (ID: %d)", job.FilePath, job.FileID)
		err := parser.ParseCSV(job.FilePath, job.FileID, w.nextSeq, w.channels.Records, w.channels.Errors)
		if err != nil {
			log.Warnf("Parser worker could not read file %s (ID: %d): %v", job.FilePath, job.FileID, err)
		}
		log.Printf("Parser worker finished job for file %s (ID: %d)", job.FilePath, job.FileID)
	}
}

// SetupParserWorker starts a single parser so that sequence numbers follow input order.
func (w *AsyncWorker) SetupParserWorker() (Runner[func()], *sync.WaitGroup, error) {
	return Runner[func()]{
		Run: func() {
			w.waitGroups.ParserWg.Add(1)
			go w.ParserWorker()
		},
	}, w.waitGroups.ParserWg, nil
}

func (w *AsyncWorker) FeatureWorker(calculator features.Calculator) {
	defer w.waitGroups.FeatureWg.Done()
	for app := range w.channels.Records {
		w.channels.Results <- calculator.Compute(app)
	}
}

func (w *AsyncWorker) SetupFeatureWorkers(numberOfWorkers int) (Runner[func(features.Calculator)], *sync.WaitGroup, error) {
	return Runner[func(features.Calculator)]{
		Run: func(calculator features.Calculator) {
			for i := 1; i <= numberOfWorkers; i++ {
				w.waitGroups.FeatureWg.Add(1)
				go w.FeatureWorker(calculator)
			}
		},
	}, w.waitGroups.FeatureWg, nil
}

func (w *AsyncWorker) flush(out sink.Sink, rows []*models.FeatureRow, message string) {
	if len(rows) == 0 {
		return
	}
	log.Debugf("Sink worker: writing batch of %d feature rows", len(rows))
	if err := out.Write(rows); err != nil {
		// The batch failed, so report an error for each unique FileID in the batch.
		fileIDs := make(map[int]bool)
		for _, row := range rows {
			fileIDs[row.FileID] = true
		}
		for fileID := range fileIDs {
			w.channels.Errors <- models.AppError{FileID: fileID, Message: message, Err: err}
		}
	}
}

// SinkWorker restores input order from the sequence numbers of the computed rows
// and writes them in batches.
func (w *AsyncWorker) SinkWorker(out sink.Sink) {
	defer w.waitGroups.SinkWg.Done()

	batchSize := w.config.SinkBatchSize
	pending := make(map[int]*models.FeatureRow)
	batch := make([]*models.FeatureRow, 0, batchSize)
	next := 1
	written := 0

	for row := range w.channels.Results {
		pending[row.Seq] = row
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			batch = append(batch, ready)
			next++
			if len(batch) >= batchSize {
				w.flush(out, batch, "Failed to write batch of feature rows")
				written += len(batch)
				batch = make([]*models.FeatureRow, 0, batchSize)
			}
		}
	}

	// rows left behind a gap in the sequence still go out, in sequence order
	if len(pending) > 0 {
		seqs := make([]int, 0, len(pending))
		for seq := range pending {
			seqs = append(seqs, seq)
		}
		sort.Ints(seqs)
		for _, seq := range seqs {
			batch = append(batch, pending[seq])
		}
	}
	w.flush(out, batch, "Failed to write remaining batch of feature rows")
	written += len(batch)

	log.Printf("Sink worker finished, %d feature rows written.", written)
}

func (w *AsyncWorker) SetupSinkWorker() (Runner[func(sink.Sink)], *sync.WaitGroup, error) {
	return Runner[func(sink.Sink)]{
		Run: func(out sink.Sink) {
			w.waitGroups.SinkWg.Add(1)
			go w.SinkWorker(out)
		},
	}, w.waitGroups.SinkWg, nil
}

func (w *AsyncWorker) ErrorWorker(fileErrorsMap *models.FileErrorMap) {
	defer w.waitGroups.MainWg.Done()
	for appErr := range w.channels.Errors {
		log.Warnf("Caught error: %s", appErr.Error())
		fileErrorsMap.Mu.Lock()
		if len(fileErrorsMap.Errors[appErr.FileID]) < maxErrorsPerFile {
			fileErrorsMap.Errors[appErr.FileID] = append(fileErrorsMap.Errors[appErr.FileID], appErr)
		} else {
			// File has too many errors, keep the first ones for manual inspection
			log.Debugf("File %d has too many errors, dropping error", appErr.FileID)
		}
		fileErrorsMap.Mu.Unlock()
	}
}

func (w *AsyncWorker) PreprocessAndDispatchJobs(
	fileInfos []models.FileInfo,
	fileMap models.FileMap,
) {
	defer close(w.channels.Jobs)
	defer w.waitGroups.MainWg.Done()

	localID := 0
	for _, fileInfo := range fileInfos {
		fileChecksum, err := checksum.GetFileChecksum(fileInfo.Path)
		if err != nil {
			log.Errorf("Failed to calculate checksum for %s: %v. Skipping file.", fileInfo.Path, err)
			continue
		}

		var fileID int
		if w.registry == nil {
			localID++
			fileID = localID
		} else {
			isProcessed, err := w.registry.IsFileAlreadyProcessed(fileChecksum)
			if err != nil {
				log.Errorf("Failed to check if file %s is already processed: %v. Skipping file.", fileInfo.Path, err)
				continue
			}
			if isProcessed {
				log.Warnf("File %s (checksum: %s) has already been processed. Skipping, its rows will not be written.", fileInfo.Path, fileChecksum)
				continue
			}

			fileID, err = w.registry.InsertFileRecord(fileInfo.Path, time.Now(), database.FILE_STATUS_PROCESSING, fileChecksum)
			if err != nil {
				log.Errorf("Failed to insert file record for %s: %v. Skipping file.", fileInfo.Path, err)
				continue
			}
		}

		fileMap[fileID] = fileInfo.Path

		log.Printf("Dispatching job for file: %s (FileID: %d)", fileInfo.Path, fileID)
		w.channels.Jobs <- models.FileProcessingJob{FilePath: fileInfo.Path, FileID: fileID}
	}
}

func (w *AsyncWorker) SetupJobDispatcherWorker(fileInfos []models.FileInfo, fileMap models.FileMap) (Runner[func()], *sync.WaitGroup, error) {
	return Runner[func()]{
		Run: func() {
			w.waitGroups.MainWg.Add(1)
			go w.PreprocessAndDispatchJobs(fileInfos, fileMap)
		},
	}, w.waitGroups.MainWg, nil
}

func (w *AsyncWorker) SetupErrorWorker() (Runner[func(*models.FileErrorMap)], *sync.WaitGroup, error) {
	return Runner[func(*models.FileErrorMap)]{
		Run: func(fileErrorsMap *models.FileErrorMap) {
			w.waitGroups.MainWg.Add(1)
			go w.ErrorWorker(fileErrorsMap)
		},
	}, w.waitGroups.MainWg, nil
}
