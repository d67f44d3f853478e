package ingestion

import (
	"sync"

	"github.com/ThiagoRGoveia/contract-features/internal/models"
)

type ISetup interface {
	build() (models.SetupReturn, error)
}

type Setup struct {
	ChannelSize int
}

// Instantiate all channels and data structure we will use in the concurrent extraction process
// Its useful to have it in a separated struct to be able to leverage DI for testing
func (h Setup) build() (models.SetupReturn, error) {
	size := h.ChannelSize
	if size <= 0 {
		size = 100
	}

	channels := models.ExtractionChannels{
		Jobs:    make(chan models.FileProcessingJob, 100),
		Records: make(chan *models.Application, size),
		Results: make(chan *models.FeatureRow, size),
		Errors:  make(chan models.AppError, 100),
	}

	var parserWg, featureWg, sinkWg, mainWg sync.WaitGroup
	fileMap := make(models.FileMap)
	fileErrorsMap := models.FileErrorMap{Errors: make(map[int][]models.AppError)}
	return models.SetupReturn{
		Channels:      &channels,
		WaitGroups:    &models.ExtractionWaitGroups{ParserWg: &parserWg, FeatureWg: &featureWg, SinkWg: &sinkWg, MainWg: &mainWg},
		FileMap:       &fileMap,
		FileErrorsMap: &fileErrorsMap,
	}, nil
}
