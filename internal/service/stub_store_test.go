package service_test

import (
	"context"

	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

type stubStore[T any] struct {
	findFn       func(ctx context.Context, filter store.Filter) ([]T, error)
	findOneFn    func(ctx context.Context, filter store.Filter) (T, error)
	saveFn       func(ctx context.Context, doc *T) error
	removeFn     func(ctx context.Context, doc *T) error
	updateOneFn  func(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error)
	updateManyFn func(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error)
	deleteOneFn  func(ctx context.Context, filter store.Filter) (int64, error)
	deleteManyFn func(ctx context.Context, filter store.Filter) (int64, error)
}

func (s *stubStore[T]) Find(ctx context.Context, filter store.Filter) ([]T, error) {
	if s.findFn == nil {
		return nil, nil
	}
	return s.findFn(ctx, filter)
}

func (s *stubStore[T]) FindOne(ctx context.Context, filter store.Filter) (T, error) {
	if s.findOneFn == nil {
		var zero T
		return zero, store.ErrNotFound
	}
	return s.findOneFn(ctx, filter)
}

func (s *stubStore[T]) Save(ctx context.Context, doc *T) error {
	if s.saveFn == nil {
		return nil
	}
	return s.saveFn(ctx, doc)
}

func (s *stubStore[T]) Remove(ctx context.Context, doc *T) error {
	if s.removeFn == nil {
		return nil
	}
	return s.removeFn(ctx, doc)
}

func (s *stubStore[T]) UpdateOne(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error) {
	if s.updateOneFn == nil {
		return store.UpdateResult{}, nil
	}
	return s.updateOneFn(ctx, filter, update)
}

func (s *stubStore[T]) UpdateMany(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error) {
	if s.updateManyFn == nil {
		return store.UpdateResult{}, nil
	}
	return s.updateManyFn(ctx, filter, update)
}

func (s *stubStore[T]) DeleteOne(ctx context.Context, filter store.Filter) (int64, error) {
	if s.deleteOneFn == nil {
		return 0, nil
	}
	return s.deleteOneFn(ctx, filter)
}

func (s *stubStore[T]) DeleteMany(ctx context.Context, filter store.Filter) (int64, error) {
	if s.deleteManyFn == nil {
		return 0, nil
	}
	return s.deleteManyFn(ctx, filter)
}

type stubEmployees struct {
	stubStore[models.Employee]
	populateFn func(ctx context.Context, employees ...*models.Employee) error
}

func (s *stubEmployees) Populate(ctx context.Context, employees ...*models.Employee) error {
	if s.populateFn == nil {
		return nil
	}
	return s.populateFn(ctx, employees...)
}

type stubDepartments struct {
	stubStore[models.Department]
}

var (
	_ store.EmployeeStore   = (*stubEmployees)(nil)
	_ store.DepartmentStore = (*stubDepartments)(nil)
)
