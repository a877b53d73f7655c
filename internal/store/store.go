// Package store defines the persistence contract shared by the document and
// relational backends.
//
// Filters and updates are keyed by document path (firstName, department, _id)
// and cast through the model schema before they reach a driver, so every
// backend sees the same typed values.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
)

// Filter matches documents whose paths equal the given values. An empty Filter
// matches every document.
type Filter map[string]any

// Update lists paths to $set.
type Update map[string]any

type UpdateResult struct {
	Matched  int64
	Modified int64
}

var ErrNotFound = apperror.New(apperror.CodeNotFound, "document not found")

type Store[T any] interface {
	Find(ctx context.Context, filter Filter) ([]T, error)
	FindOne(ctx context.Context, filter Filter) (T, error)
	// Save inserts a new document, assigning its id, or replaces an existing one.
	Save(ctx context.Context, doc *T) error
	Remove(ctx context.Context, doc *T) error
	UpdateOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error)
	UpdateMany(ctx context.Context, filter Filter, update Update) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

type DepartmentStore interface {
	Store[models.Department]
}

type EmployeeStore interface {
	Store[models.Employee]
	// Populate resolves department references in place. Free-text departments
	// and references to missing departments are left unresolved.
	Populate(ctx context.Context, employees ...*models.Employee) error
}

// DepartmentIDs collects the distinct department ids referenced by employees.
func DepartmentIDs(employees []*models.Employee) []primitive.ObjectID {
	seen := map[string]bool{}
	ids := make([]primitive.ObjectID, 0, len(employees))
	for _, employee := range employees {
		id, ok := employee.Department.ID()
		if !ok || seen[id.Hex()] {
			continue
		}
		seen[id.Hex()] = true
		ids = append(ids, id)
	}
	return ids
}

// Resolve attaches departments to the employees that reference them.
func Resolve(employees []*models.Employee, departments []models.Department) {
	byID := make(map[string]models.Department, len(departments))
	for _, department := range departments {
		byID[department.ID.Hex()] = department
	}

	for _, employee := range employees {
		id, ok := employee.Department.ID()
		if !ok {
			continue
		}
		if department, found := byID[id.Hex()]; found {
			employee.Department.Resolve(department)
		}
	}
}
