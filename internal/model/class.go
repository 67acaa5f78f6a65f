package model

// Class is a course offered by an instructor.  Classes are owned
// exclusively by their instructor and kept in an ordered list; the
// ordinal is exposed as classIndex on the wire.  ID is stable and is
// what bookings and seat counters are keyed on, so reordering or
// removing classes cannot redirect an existing booking.
//
// Fields:
//
//	ID           – stable identifier (UUID).
//	Name         – class title.
//	Image        – cover image URL.
//	Price        – fee in dollars.
//	TotalStudent – running count of seats filled; no ceiling is enforced.
//	Description  – optional long description.
//	Position     – zero-based ordinal within the instructor's list.
type Class struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image,omitempty"`
	Price        float64 `json:"price"`
	TotalStudent int     `json:"totalStudent"`
	Description  string  `json:"description,omitempty"`
	Position     int     `json:"-"`
}

// ClassView is a class flattened out of its instructor for catalog
// listings.  It carries enough of the owner to render a card and the
// positional index clients still send back when booking.
type ClassView struct {
	Class
	InstructorID   string `json:"instructorId"`
	InstructorName string `json:"instructorName"`
	InstructorImg  string `json:"instructorImg,omitempty"`
	ClassIndex     int    `json:"classIndex"`
}

// ClassRef addresses a class of an instructor either by its stable ID
// or by its current position.  ID wins when both are set.
type ClassRef struct {
	InstructorID string
	ClassID      string
	ClassIndex   *int
}

// Resolve finds the referenced class inside the instructor's ordered
// class list and returns it together with its current index.
func (r ClassRef) Resolve(classes []Class) (Class, int, bool) {
	if r.ClassID != "" {
		for i, c := range classes {
			if c.ID == r.ClassID {
				return c, i, true
			}
		}
		return Class{}, 0, false
	}
	if r.ClassIndex == nil {
		return Class{}, 0, false
	}
	i := *r.ClassIndex
	if i < 0 || i >= len(classes) {
		return Class{}, 0, false
	}
	return classes[i], i, true
}
