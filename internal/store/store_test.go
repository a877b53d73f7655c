package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/models"
)

func TestDepartmentIDsAndResolve(t *testing.T) {
	engineering := models.Department{ID: primitive.NewObjectID(), Name: "Engineering"}
	sales := models.Department{ID: primitive.NewObjectID(), Name: "Sales"}
	missing := primitive.NewObjectID()

	employees := []*models.Employee{
		{FirstName: "A", Department: models.RefDepartment(engineering.ID)},
		{FirstName: "B", Department: models.RefDepartment(engineering.ID)},
		{FirstName: "C", Department: models.DepartmentName(sales.ID.Hex())},
		{FirstName: "D", Department: models.DepartmentName("Marketing")},
		{FirstName: "E", Department: models.RefDepartment(missing)},
	}

	ids := DepartmentIDs(employees)
	assert.Equal(t, []primitive.ObjectID{engineering.ID, sales.ID, missing}, ids)

	Resolve(employees, []models.Department{engineering, sales})

	require.NotNil(t, employees[0].Department.Populated())
	assert.Equal(t, "Engineering", employees[0].Department.Populated().Name)
	require.NotNil(t, employees[1].Department.Populated())
	require.NotNil(t, employees[2].Department.Populated())
	assert.Equal(t, "Sales", employees[2].Department.Populated().Name)
	assert.False(t, employees[2].Department.IsReference())
	assert.Nil(t, employees[3].Department.Populated())
	assert.Nil(t, employees[4].Department.Populated())
}
