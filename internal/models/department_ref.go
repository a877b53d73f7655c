package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DepartmentRef is an employee's department: either a reference to a stored
// Department or a free-text department name.
type DepartmentRef struct {
	id   primitive.ObjectID
	text string
	doc  *Department
}

func RefDepartment(id primitive.ObjectID) DepartmentRef {
	return DepartmentRef{id: id}
}

func DepartmentName(name string) DepartmentRef {
	return DepartmentRef{text: name}
}

// PopulatedDepartment references department and keeps it as the resolved document.
func PopulatedDepartment(department Department) DepartmentRef {
	return DepartmentRef{id: department.ID, doc: &department}
}

// IsReference reports whether the value is stored as an ObjectID.
func (r DepartmentRef) IsReference() bool {
	return !r.id.IsZero()
}

func (r DepartmentRef) IsZero() bool {
	return r.id.IsZero() && r.text == "" && r.doc == nil
}

// ID returns the referenced department id. Free text that happens to be a
// valid hex ObjectID is followed as well.
func (r DepartmentRef) ID() (primitive.ObjectID, bool) {
	if r.IsReference() {
		return r.id, true
	}
	id, err := primitive.ObjectIDFromHex(r.text)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func (r DepartmentRef) Text() string {
	return r.text
}

// Populated returns the resolved Department, or nil before population.
func (r DepartmentRef) Populated() *Department {
	return r.doc
}

// Resolve attaches the referenced document. The stored value is unchanged.
func (r *DepartmentRef) Resolve(department Department) {
	r.doc = &department
}

func (r DepartmentRef) String() string {
	if r.IsReference() {
		return r.id.Hex()
	}
	return r.text
}

func (r DepartmentRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if r.IsReference() {
		return bson.MarshalValue(r.id)
	}
	return bson.MarshalValue(r.text)
}

func (r *DepartmentRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.ObjectID:
		*r = RefDepartment(raw.ObjectID())
	case bsontype.String:
		*r = DepartmentName(raw.StringValue())
	case bsontype.Null, bsontype.Undefined:
		*r = DepartmentRef{}
	case bsontype.EmbeddedDocument:
		var department Department
		if err := raw.Unmarshal(&department); err != nil {
			return fmt.Errorf("decode embedded department: %w", err)
		}
		*r = PopulatedDepartment(department)
	default:
		return fmt.Errorf("cannot decode department from BSON %s", t)
	}
	return nil
}

func (r DepartmentRef) MarshalJSON() ([]byte, error) {
	if r.doc != nil {
		return json.Marshal(r.doc)
	}
	return json.Marshal(r.String())
}
