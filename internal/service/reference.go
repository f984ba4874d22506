package service

import (
	"context"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/repository"
)

// ListParams pages through reference data.
type ListParams struct {
	Page            int
	PageSize        int
	IncludeInactive bool
}

func getReference[T any](ctx context.Context, repo repository.ReferenceRepository[T], entity, field, rawID string) (*T, error) {
	id, err := parseID(field, rawID)
	if err != nil {
		return nil, err
	}
	v, err := repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, repoError(err, entity, "load "+entity)
	}
	return v, nil
}

func listReference[T any](ctx context.Context, repo repository.ReferenceRepository[T], entity string, p ListParams) (calendar.Page[T], error) {
	page, pageSize, limit, offset := calendar.Window(p.Page, p.PageSize)
	items, total, err := repo.List(ctx, repository.ListQuery{
		IncludeInactive: p.IncludeInactive,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return calendar.Page[T]{}, internalError("list "+entity, err)
	}
	return calendar.NewPage(items, page, pageSize, total), nil
}

func createReference[T any](ctx context.Context, repo repository.ReferenceRepository[T], entity string, v *T) error {
	if err := repo.Create(ctx, v); err != nil {
		return repoError(err, entity, "create "+entity)
	}
	return nil
}

// updateReference writes the collected updates and returns the fresh row.
func updateReference[T any](ctx context.Context, repo repository.ReferenceRepository[T], entity, field, rawID string, apply func(cur *T, f *fieldSet)) (*T, error) {
	cur, err := getReference(ctx, repo, entity, field, rawID)
	if err != nil {
		return nil, err
	}
	f := newFieldSet()
	apply(cur, f)
	if f.err != nil {
		return nil, f.err
	}
	id, _ := parseID(field, rawID)
	if err := repo.Update(ctx, id, f.updates); err != nil {
		return nil, repoError(err, entity, "update "+entity)
	}
	return getReference(ctx, repo, entity, field, rawID)
}

// deleteReference soft-deletes. Rows already referenced by events keep
// working; they only stop being offered for new bookings.
func deleteReference[T any](ctx context.Context, repo repository.ReferenceRepository[T], entity, field, rawID string) error {
	id, err := parseID(field, rawID)
	if err != nil {
		return err
	}
	ok, err := repo.SoftDelete(ctx, id)
	if err != nil {
		return internalError("delete "+entity, err)
	}
	if !ok {
		return notFoundError(entity)
	}
	return nil
}
