package sink

import (
	"errors"

	"github.com/ThiagoRGoveia/contract-features/internal/models"
)

// Sink accepts feature rows in output order. Write may be called many times before Close.
type Sink interface {
	Write(rows []*models.FeatureRow) error
	Close() error
}

// MultiSink writes every batch to each of its sinks.
type MultiSink []Sink

func (m MultiSink) Write(rows []*models.FeatureRow) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
