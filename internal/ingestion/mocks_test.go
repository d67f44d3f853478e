package ingestion

import (
	"sync"
	"time"

	"github.com/ThiagoRGoveia/contract-features/internal/features"
	"github.com/ThiagoRGoveia/contract-features/internal/models"
	"github.com/ThiagoRGoveia/contract-features/internal/sink"
	"github.com/stretchr/testify/mock"
)

// MockRegistry is a mock implementation of the FileRegistry interface.
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) InsertFileRecord(fileName string, date time.Time, status string, checksum string) (int, error) {
	args := m.Called(fileName, date, status, checksum)
	return args.Int(0), args.Error(1)
}

func (m *MockRegistry) UpdateFileStatus(fileID int, status string, errors any) error {
	args := m.Called(fileID, status, errors)
	return args.Error(0)
}

func (m *MockRegistry) IsFileAlreadyProcessed(checksum string) (bool, error) {
	args := m.Called(checksum)
	return args.Bool(0), args.Error(1)
}

// MockWorker is a mock implementation of the Worker interface.
type MockWorker struct {
	mock.Mock
}

func (m *MockWorker) WithChannels(channels *models.ExtractionChannels) Worker {
	m.Called(channels)
	return m
}

func (m *MockWorker) WithWaitGroups(waitGroups *models.ExtractionWaitGroups) Worker {
	m.Called(waitGroups)
	return m
}

func (m *MockWorker) SetupErrorWorker() (Runner[func(*models.FileErrorMap)], *sync.WaitGroup, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return Runner[func(*models.FileErrorMap)]{}, nil, args.Error(2)
	}
	return args.Get(0).(Runner[func(*models.FileErrorMap)]), args.Get(1).(*sync.WaitGroup), args.Error(2)
}

func (m *MockWorker) SetupJobDispatcherWorker(fileInfos []models.FileInfo, fileMap models.FileMap) (Runner[func()], *sync.WaitGroup, error) {
	args := m.Called(fileInfos, fileMap)
	if args.Get(0) == nil {
		return Runner[func()]{}, nil, args.Error(2)
	}
	return args.Get(0).(Runner[func()]), args.Get(1).(*sync.WaitGroup), args.Error(2)
}

func (m *MockWorker) SetupParserWorker() (Runner[func()], *sync.WaitGroup, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return Runner[func()]{}, nil, args.Error(2)
	}
	return args.Get(0).(Runner[func()]), args.Get(1).(*sync.WaitGroup), args.Error(2)
}

func (m *MockWorker) SetupFeatureWorkers(numberOfWorkers int) (Runner[func(features.Calculator)], *sync.WaitGroup, error) {
	args := m.Called(numberOfWorkers)
	if args.Get(0) == nil {
		return Runner[func(features.Calculator)]{}, nil, args.Error(2)
	}
	return args.Get(0).(Runner[func(features.Calculator)]), args.Get(1).(*sync.WaitGroup), args.Error(2)
}

func (m *MockWorker) SetupSinkWorker() (Runner[func(sink.Sink)], *sync.WaitGroup, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return Runner[func(sink.Sink)]{}, nil, args.Error(2)
	}
	return args.Get(0).(Runner[func(sink.Sink)]), args.Get(1).(*sync.WaitGroup), args.Error(2)
}

// MockProcessor is a mock implementation of the Processor interface.
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ScanForFiles(path string) ([]models.FileInfo, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FileInfo), args.Error(1)
}

func (m *MockProcessor) UpdateFileStatus(fileErrorsMap *models.FileErrorMap, fileMap *models.FileMap) error {
	args := m.Called(fileErrorsMap, fileMap)
	return args.Error(0)
}

// MockSetup is a mock implementation of the ISetup interface.
type MockSetup struct {
	mock.Mock
}

func (m *MockSetup) build() (models.SetupReturn, error) {
	args := m.Called()
	return args.Get(0).(models.SetupReturn), args.Error(1)
}

// captureSink keeps a copy of every batch it receives.
type captureSink struct {
	mu      sync.Mutex
	batches [][]*models.FeatureRow
	err     error
}

func (s *captureSink) Write(rows []*models.FeatureRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]*models.FeatureRow(nil), rows...))
	return s.err
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, batch := range s.batches {
		for _, row := range batch {
			ids = append(ids, row.ID)
		}
	}
	return ids
}
