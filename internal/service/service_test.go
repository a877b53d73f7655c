package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/service"
	"github.com/arcinech/companyApp/internal/store"
)

func TestCreateDepartment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	department, err := svc.CreateDepartment(ctx, models.Attributes{"name": "  Engineering  "})
	require.NoError(t, err)
	assert.False(t, department.ID.IsZero())
	assert.Equal(t, "Engineering", department.Name)

	_, err = svc.CreateDepartment(ctx, models.Attributes{"name": strings.Repeat("a", 201)})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestCreateEmployee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	department, err := svc.CreateDepartment(ctx, models.Attributes{"name": "Sales"})
	require.NoError(t, err)

	t.Run("with free-text department", func(t *testing.T) {
		employee, err := svc.CreateEmployee(ctx, models.Attributes{
			"firstName":  " John ",
			"lastName":   "Doe",
			"department": "Marketing",
		})
		require.NoError(t, err)
		assert.Equal(t, "John", employee.FirstName)
		assert.False(t, employee.Department.IsReference())
	})

	t.Run("with department reference", func(t *testing.T) {
		employee, err := svc.CreateEmployee(ctx, models.Attributes{
			"firstName":  "Jane",
			"lastName":   "Doe",
			"department": department.ID,
		})
		require.NoError(t, err)
		id, ok := employee.Department.ID()
		require.True(t, ok)
		assert.Equal(t, department.ID, id)
	})

	t.Run("with missing department reference", func(t *testing.T) {
		_, err := svc.CreateEmployee(ctx, models.Attributes{
			"firstName":  "Jane",
			"lastName":   "Doe",
			"department": primitive.NewObjectID(),
		})
		assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
	})

	t.Run("with blank first name", func(t *testing.T) {
		_, err := svc.CreateEmployee(ctx, models.Attributes{
			"firstName":  "   ",
			"lastName":   "Doe",
			"department": "Marketing",
		})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors, "firstName")
	})
}

func TestGetAndListEmployees(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	department, err := svc.CreateDepartment(ctx, models.Attributes{"name": "Support"})
	require.NoError(t, err)
	referenced, err := svc.CreateEmployee(ctx, models.Attributes{"firstName": "A", "lastName": "B", "department": department.ID})
	require.NoError(t, err)
	_, err = svc.CreateEmployee(ctx, models.Attributes{"firstName": "C", "lastName": "D", "department": "Support"})
	require.NoError(t, err)

	t.Run("get populates on request", func(t *testing.T) {
		employee, err := svc.GetEmployee(ctx, referenced.ID, true)
		require.NoError(t, err)
		require.NotNil(t, employee.Department.Populated())
		assert.Equal(t, "Support", employee.Department.Populated().Name)

		employee, err = svc.GetEmployee(ctx, referenced.ID, false)
		require.NoError(t, err)
		assert.Nil(t, employee.Department.Populated())
	})

	t.Run("get unknown employee", func(t *testing.T) {
		_, err := svc.GetEmployee(ctx, primitive.NewObjectID(), false)
		assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
	})

	t.Run("list with filter", func(t *testing.T) {
		employees, err := svc.ListEmployees(ctx, service.ListEmployeesOptions{Filter: store.Filter{"lastName": "D"}})
		require.NoError(t, err)
		require.Len(t, employees, 1)
		assert.Equal(t, "C", employees[0].FirstName)
	})

	t.Run("list populated", func(t *testing.T) {
		employees, err := svc.ListEmployees(ctx, service.ListEmployeesOptions{Populate: true})
		require.NoError(t, err)
		require.Len(t, employees, 2)
		for _, employee := range employees {
			if employee.ID == referenced.ID {
				assert.NotNil(t, employee.Department.Populated())
			} else {
				assert.Nil(t, employee.Department.Populated())
			}
		}
	})
}

func TestUpdateEmployee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	employee, err := svc.CreateEmployee(ctx, models.Attributes{"firstName": "Old", "lastName": "Name", "department": "IT"})
	require.NoError(t, err)

	updated, err := svc.UpdateEmployee(ctx, employee.ID, store.Update{"firstName": " New "})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "Name", updated.LastName)

	_, err = svc.UpdateEmployee(ctx, employee.ID, store.Update{"lastName": ""})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	_, err = svc.UpdateEmployee(ctx, employee.ID, store.Update{"department": primitive.NewObjectID()})
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))

	_, err = svc.UpdateEmployee(ctx, primitive.NewObjectID(), store.Update{"firstName": "X"})
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}

func TestDeleteEmployee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	employee, err := svc.CreateEmployee(ctx, models.Attributes{"firstName": "A", "lastName": "B", "department": "IT"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, employee.ID))
	err = svc.DeleteEmployee(ctx, employee.ID)
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}

func TestDeleteDepartment(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc *service.Service) models.Department {
		t.Helper()
		department, err := svc.CreateDepartment(ctx, models.Attributes{"name": "Finance"})
		require.NoError(t, err)
		_, err = svc.CreateEmployee(ctx, models.Attributes{"firstName": "A", "lastName": "B", "department": department.ID})
		require.NoError(t, err)
		_, err = svc.CreateEmployee(ctx, models.Attributes{"firstName": "C", "lastName": "D", "department": department.ID.Hex()})
		require.NoError(t, err)
		_, err = svc.CreateEmployee(ctx, models.Attributes{"firstName": "E", "lastName": "F", "department": "Legal"})
		require.NoError(t, err)
		return department
	}

	t.Run("cascade removes referencing employees", func(t *testing.T) {
		svc, _ := newTestService(t)
		department := seed(t, svc)

		require.NoError(t, svc.DeleteDepartment(ctx, department.ID, service.DeleteModeCascade))

		employees, err := svc.ListEmployees(ctx, service.ListEmployeesOptions{})
		require.NoError(t, err)
		require.Len(t, employees, 1)
		assert.Equal(t, "Legal", employees[0].Department.String())

		_, err = svc.GetDepartment(ctx, department.ID)
		assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
	})

	t.Run("detach rewrites references to the name", func(t *testing.T) {
		svc, _ := newTestService(t)
		department := seed(t, svc)

		require.NoError(t, svc.DeleteDepartment(ctx, department.ID, service.DeleteModeDetach))

		employees, err := svc.ListEmployees(ctx, service.ListEmployeesOptions{Filter: store.Filter{"department": "Finance"}})
		require.NoError(t, err)
		assert.Len(t, employees, 2)
		for _, employee := range employees {
			assert.False(t, employee.Department.IsReference())
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		svc, _ := newTestService(t)
		department := seed(t, svc)

		err := svc.DeleteDepartment(ctx, department.ID, service.DeleteMode("purge"))
		assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

		_, err = svc.GetDepartment(ctx, department.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown department", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.DeleteDepartment(ctx, primitive.NewObjectID(), service.DeleteModeCascade)
		assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
	})
}
