package ingestion

import (
	"github.com/ThiagoRGoveia/contract-features/internal/config"
	"github.com/ThiagoRGoveia/contract-features/internal/features"
	"github.com/ThiagoRGoveia/contract-features/internal/sink"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type IngestionService struct {
	setupService  ISetup
	asyncWorker   Worker
	fileProcessor Processor
	calculator    features.Calculator
	config        config.Config
}

func NewIngestionService(setupService ISetup, worker Worker, processor Processor, cfg config.Config) *IngestionService {
	return &IngestionService{
		setupService:  setupService,
		asyncWorker:   worker,
		fileProcessor: processor,
		calculator:    features.NewCalculator(cfg.ClaimWindowDays),
		config:        cfg,
	}
}

// Execute runs one extraction over inputPath and writes every feature row to out,
// in input order. out is not closed.
func (h *IngestionService) Execute(inputPath string, out sink.Sink) error {
	logger := log.WithField("run_id", uuid.NewString())

	// Step 0: Setup the extraction environment.
	environmentConfig, err := h.setupService.build()
	if err != nil {
		return err
	}

	channels, waitGroups, fileMap, fileErrorsMap := environmentConfig.GetValues()

	// Step 0.1: Find the input files
	logger.Infof("Scanning input %s", inputPath)
	fileInfos, err := h.fileProcessor.ScanForFiles(inputPath)
	if err != nil {
		logger.Errorf("Failed to scan files: %v", err)
		return err
	}
	if len(fileInfos) == 0 {
		logger.Warn("No input files found, nothing to do.")
		return nil
	}

	// Step 0.2: Setup the async worker channels and wait groups VERY IMPORTANT: can cause panic if not done
	h.asyncWorker.WithChannels(channels).WithWaitGroups(waitGroups)

	// Step 1: Checksum and register files, then send them to the parser.
	// Sharing MainWg with error worker
	dispatcherWorkerRunner, _, err := h.asyncWorker.SetupJobDispatcherWorker(fileInfos, *fileMap)
	if err != nil {
		return err
	}
	dispatcherWorkerRunner.Run()

	// Step 2: Start the error worker
	// Sharing MainWg with dispatcher worker
	errorWorkerRunner, mainWaitGroup, err := h.asyncWorker.SetupErrorWorker()
	if err != nil {
		return err
	}
	errorWorkerRunner.Run(fileErrorsMap)

	// Step 3: Start the parser, it numbers every record it emits
	parserWorkerRunner, parserWaitGroup, err := h.asyncWorker.SetupParserWorker()
	if err != nil {
		return err
	}
	parserWorkerRunner.Run()

	// Step 4: Start the feature workers
	featureWorkersRunner, featureWaitGroup, err := h.asyncWorker.SetupFeatureWorkers(h.config.NumFeatureWorkers)
	if err != nil {
		return err
	}
	featureWorkersRunner.Run(h.calculator)

	// Step 5: Start the sink worker
	sinkWorkerRunner, sinkWaitGroup, err := h.asyncWorker.SetupSinkWorker()
	if err != nil {
		return err
	}
	sinkWorkerRunner.Run(out)

	// Step 6: Wait for every stage in order, closing its input once its producers are done.
	logger.Info("Waiting for parser worker to finish...")
	parserWaitGroup.Wait()
	close(channels.Records)

	logger.Info("Waiting for feature workers to finish...")
	featureWaitGroup.Wait()
	close(channels.Results)

	logger.Info("Waiting for sink worker to finish...")
	sinkWaitGroup.Wait()

	// Step 6.1: Close the errors channel after all workers that can produce errors are done.
	close(channels.Errors)

	logger.Info("Waiting for file error worker to finish...")
	mainWaitGroup.Wait()

	// Step 7: Record the outcome of every file
	if err := h.fileProcessor.UpdateFileStatus(fileErrorsMap, fileMap); err != nil {
		logger.Errorf("Failed to update file status: %v", err)
	}

	logger.WithField("files", len(*fileMap)).Info("Extraction process finished.")
	return nil
}
