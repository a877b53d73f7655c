// Package mongostore persists employees and departments in MongoDB.
package mongostore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

const (
	EmployeesCollection   = "employees"
	DepartmentsCollection = "departments"
)

type Store struct {
	Employees   *EmployeeStore
	Departments *DepartmentStore

	db  *mongo.Database
	log zerolog.Logger
}

type DepartmentStore struct {
	*collection[models.Department, *models.Department]
}

type EmployeeStore struct {
	*collection[models.Employee, *models.Employee]
	departments *DepartmentStore
}

var (
	_ store.DepartmentStore = (*DepartmentStore)(nil)
	_ store.EmployeeStore   = (*EmployeeStore)(nil)
)

func New(db *mongo.Database, logger zerolog.Logger) *Store {
	logger = logger.With().Str("component", "mongostore").Logger()

	departments := &DepartmentStore{
		collection: newCollection[models.Department, *models.Department](db, DepartmentsCollection, models.DepartmentSchema, logger),
	}
	employees := &EmployeeStore{
		collection:  newCollection[models.Employee, *models.Employee](db, EmployeesCollection, models.EmployeeSchema, logger),
		departments: departments,
	}

	return &Store{
		Employees:   employees,
		Departments: departments,
		db:          db,
		log:         logger,
	}
}

// EnsureIndexes creates the lookup index on employees.department.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	name, err := s.db.Collection(EmployeesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "department", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create employees.department index: %w", err)
	}
	s.log.Info().Str("index", name).Msg("indexes ensured")
	return nil
}

func (s *EmployeeStore) Populate(ctx context.Context, employees ...*models.Employee) error {
	ids := store.DepartmentIDs(employees)
	if len(ids) == 0 {
		return nil
	}

	cursor, err := s.departments.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("populate department: %w", err)
	}

	var departments []models.Department
	if err := cursor.All(ctx, &departments); err != nil {
		return fmt.Errorf("decode populated departments: %w", err)
	}

	store.Resolve(employees, departments)
	return nil
}
