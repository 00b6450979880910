package exporter

import (
	"context"
	"log/slog"

	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/pkg/contracts/domain"
)

// WriteResult describes a written dataset file
type WriteResult struct {
	Path  string
	Rows  int
	Bytes int64
}

// DatasetWriter serializes a combined dataset as delimited text
type DatasetWriter struct {
	csv     *CSVWriter
	style   FloatStyle
	logger  *slog.Logger
	metrics *infrastructure.FixtureMetrics
}

// NewDatasetWriter creates a dataset writer rendering features in style
func NewDatasetWriter(csv *CSVWriter, style FloatStyle, logger *slog.Logger, metrics *infrastructure.FixtureMetrics) *DatasetWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetWriter{
		csv:     csv,
		style:   style,
		logger:  infrastructure.WithComponent(logger, "exporter"),
		metrics: metrics,
	}
}

// WriteDataset writes the header and every observation of ds in panel order,
// replacing any existing file. Filesystem failures are returned as storage
// errors; a partially written file is left in place.
func (w *DatasetWriter) WriteDataset(ctx context.Context, filePath string, ds *domain.Dataset) (*WriteResult, error) {
	stream, err := w.csv.CreateStreamWriter(filePath, StreamOptions{Headers: ds.Schema.Header()})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create dataset file", err).
			WithContext("path", filePath)
	}

	rows := 0
	record := make([]string, ds.Schema.NVars+3)
	for _, panel := range ds.Panels {
		if err := ctx.Err(); err != nil {
			stream.Close()
			return nil, apperrors.NewStorageError("dataset write cancelled", err).
				WithContext("dataset_id", panel.DatasetID)
		}

		for _, obs := range panel.Observations {
			w.fillRecord(record, panel.DatasetID, obs)
			if err := stream.WriteRecord(record); err != nil {
				stream.Close()
				return nil, apperrors.NewStorageError("failed to write dataset row", err).
					WithContext("dataset_id", panel.DatasetID).
					WithContext("obs_id", obs.ObsID)
			}
			rows++
		}
	}

	if err := stream.Close(); err != nil {
		return nil, apperrors.NewStorageError("failed to close dataset file", err).
			WithContext("path", stream.Path())
	}

	result := &WriteResult{Path: stream.Path(), Rows: rows, Bytes: stream.BytesWritten()}

	if w.metrics != nil {
		w.metrics.RowsWritten.Add(ctx, int64(rows))
		w.metrics.BytesWritten.Add(ctx, result.Bytes)
	}

	w.logger.InfoContext(ctx, "Dataset written",
		slog.String("path", result.Path),
		slog.Int("rows", rows),
		slog.Int64("bytes", result.Bytes),
		slog.String("float_style", string(w.style)))

	return result, nil
}

func (w *DatasetWriter) fillRecord(record []string, datasetID int, obs domain.Observation) {
	n := len(obs.Features)
	for j, f := range obs.Features {
		record[j] = formatFloat(f, w.style)
	}
	record[n] = formatInt(datasetID)
	record[n+1] = formatInt(obs.ObsID)
	record[n+2] = formatInt(obs.TreatStatus)
}
