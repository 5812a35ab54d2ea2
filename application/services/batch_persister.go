package services

import (
	"context"

	"go.uber.org/zap"
	"metadata-scanner/application/ports"
	"metadata-scanner/domain/core/entities"
	pkgerrors "metadata-scanner/pkg/errors"
)

// BatchPersister writes a run's slices in fixed-size chunks, one request
// per chunk, stopping at the first failed chunk.
type BatchPersister struct {
	store     ports.SliceStore
	batchSize int
	logger    *zap.Logger
}

func NewBatchPersister(store ports.SliceStore, batchSize int, logger *zap.Logger) *BatchPersister {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &BatchPersister{
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Persist writes slices in order and returns how many were written.
// Two slices with the same (id, month) cannot share a batch request, so a
// later slice replaces an earlier one with the same key.
func (p *BatchPersister) Persist(ctx context.Context, slices []*entities.MonthSlice) (int, error) {
	items := dedupeByStoreKey(slices)
	if dropped := len(slices) - len(items); dropped > 0 {
		p.logger.Debug("Collapsed slices sharing a store key", zap.Int("dropped", dropped))
	}

	written := 0
	for start := 0; start < len(items); start += p.batchSize {
		end := start + p.batchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		if err := ctx.Err(); err != nil {
			return written, pkgerrors.NewStorePersistError("batch put", err)
		}
		if err := p.store.BatchPut(ctx, chunk); err != nil {
			p.logger.Error("Batch write failed",
				zap.Int("offset", start),
				zap.Int("size", len(chunk)),
				zap.Error(err),
			)
			if pkgerrors.IsStorePersistFailure(err) {
				return written, err
			}
			return written, pkgerrors.NewStorePersistError("batch put", err)
		}
		written += len(chunk)
	}

	p.logger.Info("Persisted slices",
		zap.Int("slices", written),
		zap.Int("batches", (written+p.batchSize-1)/p.batchSize),
	)
	return written, nil
}

func dedupeByStoreKey(slices []*entities.MonthSlice) []*entities.MonthSlice {
	pos := make(map[string]int, len(slices))
	out := make([]*entities.MonthSlice, 0, len(slices))
	for _, s := range slices {
		key := s.ID + "|" + s.Month
		if i, ok := pos[key]; ok {
			out[i] = s
			continue
		}
		pos[key] = len(out)
		out = append(out, s)
	}
	return out
}
