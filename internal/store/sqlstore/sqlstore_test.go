package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

func seedEmployees(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	for _, employee := range []models.Employee{
		{FirstName: "Firstname #1", LastName: "Lastname #1", Department: models.DepartmentName("Department #1")},
		{FirstName: "Firstname #2", LastName: "Lastname #2", Department: models.DepartmentName("Department #2")},
	} {
		require.NoError(t, s.Employees.Save(ctx, &employee))
	}
}

func TestEmployeeReadingAndCreating(t *testing.T) {
	s := newTestStore(t)
	seedEmployees(t, s)
	ctx := context.Background()

	employees, err := s.Employees.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, employees, 2)

	employee, err := s.Employees.FindOne(ctx, store.Filter{"lastName": "Lastname #2"})
	require.NoError(t, err)
	assert.Equal(t, "Firstname #2", employee.FirstName)
	assert.False(t, employee.IsNew())

	employee, err = s.Employees.FindOne(ctx, store.Filter{"department": "Department #1"})
	require.NoError(t, err)
	assert.Equal(t, "Firstname #1", employee.FirstName)

	_, err = s.Employees.FindOne(ctx, store.Filter{"firstName": "nobody"})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Employees.Find(ctx, store.Filter{"salary": 1})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestEmployeeUpdating(t *testing.T) {
	ctx := context.Background()

	t.Run("updateOne", func(t *testing.T) {
		s := newTestStore(t)
		seedEmployees(t, s)

		result, err := s.Employees.UpdateOne(ctx,
			store.Filter{"firstName": "Firstname #1"},
			store.Update{"firstName": "=Firstname #1="})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Matched)

		_, err = s.Employees.FindOne(ctx, store.Filter{"firstName": "=Firstname #1="})
		require.NoError(t, err)

		result, err = s.Employees.UpdateOne(ctx, store.Filter{"firstName": "nobody"}, store.Update{"lastName": "x"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Matched)
	})

	t.Run("save", func(t *testing.T) {
		s := newTestStore(t)
		seedEmployees(t, s)

		employee, err := s.Employees.FindOne(ctx, store.Filter{"firstName": "Firstname #1"})
		require.NoError(t, err)
		employee.FirstName = "=Firstname #1="
		require.NoError(t, s.Employees.Save(ctx, &employee))

		stored, err := s.Employees.FindOne(ctx, store.Filter{"firstName": "=Firstname #1="})
		require.NoError(t, err)
		assert.Equal(t, employee, stored)
	})

	t.Run("updateMany", func(t *testing.T) {
		s := newTestStore(t)
		seedEmployees(t, s)

		result, err := s.Employees.UpdateMany(ctx, nil, store.Update{"firstName": "Update many!"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Matched)

		employees, err := s.Employees.Find(ctx, store.Filter{"firstName": "Update many!"})
		require.NoError(t, err)
		assert.Len(t, employees, 2)
	})

	t.Run("update department to a reference", func(t *testing.T) {
		s := newTestStore(t)
		seedEmployees(t, s)

		id := primitive.NewObjectID()
		_, err := s.Employees.UpdateOne(ctx, store.Filter{"firstName": "Firstname #1"}, store.Update{"department": id})
		require.NoError(t, err)

		employee, err := s.Employees.FindOne(ctx, store.Filter{"firstName": "Firstname #1"})
		require.NoError(t, err)
		assert.True(t, employee.Department.IsReference())
		assert.Equal(t, models.RefDepartment(id), employee.Department)
	})
}

func TestEmployeeRemoving(t *testing.T) {
	ctx := context.Background()

	t.Run("deleteOne", func(t *testing.T) {
		s := newTestStore(t)
		seedEmployees(t, s)

		deleted, err := s.Employees.DeleteOne(ctx, store.Filter{"firstName": "Firstname #1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = s.Employees.FindOne(ctx, store.Filter{"firstName": "Firstname #1"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		s := newTestStore(t)
		seedEmployees(t, s)

		employee, err := s.Employees.FindOne(ctx, store.Filter{"firstName": "Firstname #1"})
		require.NoError(t, err)
		require.NoError(t, s.Employees.Remove(ctx, &employee))

		_, err = s.Employees.FindOne(ctx, store.Filter{"firstName": "Firstname #1"})
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Employees.Save(ctx, &employee), store.ErrNotFound)
	})

	t.Run("deleteMany", func(t *testing.T) {
		s := newTestStore(t)
		seedEmployees(t, s)

		deleted, err := s.Employees.DeleteMany(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		employees, err := s.Employees.Find(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, employees)
	})
}

func TestEmployeePopulating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	department := models.Department{Name: "Department #1"}
	require.NoError(t, s.Departments.Save(ctx, &department))

	linked := models.Employee{FirstName: "Firstname #1", LastName: "Lastname #1", Department: models.RefDepartment(department.ID)}
	require.NoError(t, s.Employees.Save(ctx, &linked))
	freeText := models.Employee{FirstName: "Firstname #2", LastName: "Lastname #2", Department: models.DepartmentName("Department #2")}
	require.NoError(t, s.Employees.Save(ctx, &freeText))

	employees, err := s.Employees.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	require.NoError(t, s.Employees.Populate(ctx, &employees[0], &employees[1]))

	for _, employee := range employees {
		switch employee.FirstName {
		case "Firstname #1":
			require.NotNil(t, employee.Department.Populated())
			assert.Equal(t, department, *employee.Department.Populated())
		case "Firstname #2":
			assert.Nil(t, employee.Department.Populated())
		}
	}
}

func TestDepartmentFilterKeepsReferenceAndTextApart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := primitive.NewObjectID()
	linked := models.Employee{FirstName: "Linked", LastName: "Lastname", Department: models.RefDepartment(id)}
	require.NoError(t, s.Employees.Save(ctx, &linked))
	hexText := models.Employee{FirstName: "Text", LastName: "Lastname", Department: models.DepartmentName(id.Hex())}
	require.NoError(t, s.Employees.Save(ctx, &hexText))

	employees, err := s.Employees.Find(ctx, store.Filter{"department": id})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Linked", employees[0].FirstName)

	employees, err = s.Employees.Find(ctx, store.Filter{"department": id.Hex()})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Text", employees[0].FirstName)

	deleted, err := s.Employees.DeleteMany(ctx, store.Filter{"department": id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
