package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

type DeleteMode string

const (
	// DeleteModeCascade removes the employees that reference the department.
	DeleteModeCascade DeleteMode = "cascade"
	// DeleteModeDetach keeps those employees, rewriting their department to
	// the department's name as free text.
	DeleteModeDetach DeleteMode = "detach"
)

type ListEmployeesOptions struct {
	Filter   store.Filter
	Populate bool
}

type Manager interface {
	CreateDepartment(ctx context.Context, attrs models.Attributes) (models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	GetDepartment(ctx context.Context, departmentID primitive.ObjectID) (models.Department, error)
	DeleteDepartment(ctx context.Context, departmentID primitive.ObjectID, mode DeleteMode) error

	CreateEmployee(ctx context.Context, attrs models.Attributes) (models.Employee, error)
	ListEmployees(ctx context.Context, options ListEmployeesOptions) ([]models.Employee, error)
	GetEmployee(ctx context.Context, employeeID primitive.ObjectID, populate bool) (models.Employee, error)
	UpdateEmployee(ctx context.Context, employeeID primitive.ObjectID, set store.Update) (models.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID primitive.ObjectID) error
}
