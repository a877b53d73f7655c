package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

func (s *Service) CreateEmployee(ctx context.Context, attrs models.Attributes) (models.Employee, error) {
	employee, err := models.EmployeeFromAttributes(newDocumentAttributes(attrs))
	if err != nil {
		return models.Employee{}, err
	}
	for path, value := range map[string]string{
		"firstName":  employee.FirstName,
		"lastName":   employee.LastName,
		"department": employee.Department.Text(),
	} {
		if err := checkLength(path, value); err != nil {
			return models.Employee{}, err
		}
	}

	if employee.Department.IsReference() {
		id, _ := employee.Department.ID()
		if err := s.ensureDepartmentExists(ctx, id); err != nil {
			return models.Employee{}, err
		}
	}

	if err := s.employees.Save(ctx, &employee); err != nil {
		return models.Employee{}, err
	}

	s.log.Info().Str("employee_id", employee.ID.Hex()).Msg("employee created")
	return employee, nil
}

func (s *Service) ListEmployees(ctx context.Context, options ListEmployeesOptions) ([]models.Employee, error) {
	employees, err := s.employees.Find(ctx, options.Filter)
	if err != nil {
		return nil, err
	}

	if options.Populate && len(employees) > 0 {
		pointers := make([]*models.Employee, 0, len(employees))
		for i := range employees {
			pointers = append(pointers, &employees[i])
		}
		if err := s.employees.Populate(ctx, pointers...); err != nil {
			return nil, err
		}
	}

	return employees, nil
}

func (s *Service) GetEmployee(ctx context.Context, employeeID primitive.ObjectID, populate bool) (models.Employee, error) {
	employee, err := s.employees.FindOne(ctx, store.Filter{"_id": employeeID})
	if err != nil {
		return models.Employee{}, notFound(err, "employee not found")
	}

	if populate {
		if err := s.employees.Populate(ctx, &employee); err != nil {
			return models.Employee{}, err
		}
	}
	return employee, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID primitive.ObjectID, set store.Update) (models.Employee, error) {
	set = store.Update(normalizeAttributes(models.Attributes(set)))
	if err := checkTextLengths(set); err != nil {
		return models.Employee{}, err
	}

	if value, ok := set["department"]; ok {
		if id, isRef := value.(primitive.ObjectID); isRef {
			if err := s.ensureDepartmentExists(ctx, id); err != nil {
				return models.Employee{}, err
			}
		}
	}

	result, err := s.employees.UpdateOne(ctx, store.Filter{"_id": employeeID}, set)
	if err != nil {
		return models.Employee{}, err
	}
	if result.Matched == 0 {
		return models.Employee{}, apperror.New(apperror.CodeNotFound, "employee not found")
	}

	employee, err := s.GetEmployee(ctx, employeeID, false)
	if err != nil {
		return models.Employee{}, fmt.Errorf("reload employee: %w", err)
	}
	return employee, nil
}

func (s *Service) DeleteEmployee(ctx context.Context, employeeID primitive.ObjectID) error {
	deleted, err := s.employees.DeleteOne(ctx, store.Filter{"_id": employeeID})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperror.New(apperror.CodeNotFound, "employee not found")
	}
	return nil
}
