package model

import (
	"strings"
	"time"
)

// Role values stored on users.  Inputs are matched case-insensitively
// through NormalizeRole so that "Instructor" and "instructor" resolve to
// the same value.
const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// User represents a member of the platform as stored in the users
// collection (or table).  Instructors additionally own an ordered list
// of classes; for students the list is always empty.
//
// Fields:
//
//	ID        – opaque identifier (UUID for MySQL, ObjectID hex for MongoDB).
//	Email     – unique business key; every profile write is keyed by it.
//	Name      – display name.
//	Image     – avatar URL.
//	Gender    – free-form gender value.
//	ContactNo – phone number.
//	Address   – postal address.
//	Role      – instructor or student.
//	Quote     – optional instructor tagline.
//	Classes   – classes taught by an instructor, ordered by position.
type User struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Image     string    `json:"image,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	ContactNo string    `json:"contactNo,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role,omitempty"`
	Quote     string    `json:"quote,omitempty"`
	Classes   []Class   `json:"classes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TotalStudents sums the running seat counts of all classes owned by
// the user.
func (u *User) TotalStudents() int {
	total := 0
	for _, c := range u.Classes {
		total += c.TotalStudent
	}
	return total
}

// UserPatch carries the profile fields supplied on an upsert.  Empty
// strings mean "not supplied" and never overwrite stored values.
type UserPatch struct {
	Name      string
	Image     string
	Gender    string
	ContactNo string
	Address   string
	Role      string
	Quote     string
}

// Fields returns the supplied (non-empty) fields keyed by their column
// name in the relational schema.  Iteration order is fixed so callers
// can build deterministic statements.
func (p UserPatch) Fields() []PatchField {
	all := []PatchField{
		{Column: "name", Key: "name", Value: p.Name},
		{Column: "image", Key: "image", Value: p.Image},
		{Column: "gender", Key: "gender", Value: p.Gender},
		{Column: "contact_no", Key: "contactNo", Value: p.ContactNo},
		{Column: "address", Key: "address", Value: p.Address},
		{Column: "role", Key: "role", Value: p.Role},
		{Column: "quote", Key: "quote", Value: p.Quote},
	}
	out := make([]PatchField, 0, len(all))
	for _, f := range all {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// PatchField is a single supplied profile value.  Column is the SQL
// column name, Key the document field name.
type PatchField struct {
	Column string
	Key    string
	Value  string
}

// NormalizeRole lower-cases and trims a role value.  It returns an
// empty string for anything other than instructor or student together
// with false.
func NormalizeRole(role string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case RoleInstructor, RoleStudent:
		return r, true
	}
	return "", false
}

// InstructorStats pairs an instructor with the sum of totalStudent
// across their classes.
type InstructorStats struct {
	*User
	TotalStudents int `json:"totalStudents"`
}
