package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	dErrors "fiscalia/pkg/domain-errors"
)

// Stats gathers the dashboard counts in parallel. Each query writes to its
// own field, so there are no data races; the first failure cancels the rest.
func (s *Service) Stats(ctx context.Context) (*models.StatsOverview, error) {
	now := s.now().UTC()

	var (
		total    int
		valid    int
		byFormat map[format.Code]int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.store.Count(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		valid, err = s.store.CountValid(ctx, now)
		return err
	})
	g.Go(func() error {
		var err error
		byFormat, err = s.store.CountByFormat(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather clearance stats")
	}

	return &models.StatsOverview{
		Total:    total,
		Valid:    valid,
		Expired:  total - valid,
		ByFormat: byFormat,
	}, nil
}
