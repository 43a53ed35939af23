package services

import (
	"context"

	"github.com/holocron-dev/holocron/pkg/models"
)

// paginate resolves page against the filtered total and fetches that window.
func paginate[T any](
	ctx context.Context,
	page models.PageRequest,
	count func(ctx context.Context) (int, error),
	list func(ctx context.Context, limit, offset int) ([]*T, error),
) (*models.Page[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}

	info, offset := page.Resolve(total)
	if total == 0 {
		return &models.Page[T]{Items: []*T{}, PageInfo: info}, nil
	}

	items, err := list(ctx, info.PageSize, offset)
	if err != nil {
		return nil, err
	}
	return &models.Page[T]{Items: items, PageInfo: info}, nil
}

// listAll returns every row matching the filter.
func listAll[T any](
	ctx context.Context,
	count func(ctx context.Context) (int, error),
	list func(ctx context.Context, limit, offset int) ([]*T, error),
) ([]*T, error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []*T{}, nil
	}
	return list(ctx, total, 0)
}
