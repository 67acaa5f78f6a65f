// Package service holds the business rules of the platform.  Services
// depend on the small store interfaces declared here; the MySQL and
// MongoDB backends both satisfy them, and tests substitute mocks.
package service

import (
	"context"

	"github.com/iliyamo/course-booking/internal/model"
)

// UserStore persists users and loads instructors with their classes.
type UserStore interface {
	UpsertByEmail(ctx context.Context, email string, patch model.UserPatch) (model.UpsertResult, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetInstructor(ctx context.Context, id string) (*model.User, error)
	ListInstructors(ctx context.Context, search string, limit int) ([]*model.User, error)
	CountInstructors(ctx context.Context) (int64, error)
}

// ClassStore mutates the classes owned by instructors.
type ClassStore interface {
	AddClass(ctx context.Context, instructorID string, c *model.Class) error
	// IncrementStudents must add exactly one to the class counter in a
	// single atomic write.  index addresses classes that predate
	// stable ids and is ignored when classID is set.
	IncrementStudents(ctx context.Context, instructorID, classID string, index int) error
	CountClasses(ctx context.Context) (int64, error)
}

// BookingStore persists bookings keyed by (student, class). A class that
// has no id is addressed by its instructor and position instead.
//
// Upsert sets b.ID to the id of the stored booking, both on insert and
// on update.
type BookingStore interface {
	Upsert(ctx context.Context, b *model.Booking) (model.UpsertResult, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error)
	GetForStudent(ctx context.Context, studentID, bookingID string) (*model.Booking, error)
	Delete(ctx context.Context, studentID, instructorID, classID string, classIndex int) (int64, error)
	DeleteUnpaid(ctx context.Context, studentID string) (int64, error)
}

// ReceiptQueue accepts receipt tasks for asynchronous delivery.
type ReceiptQueue interface {
	Enqueue(ctx context.Context, task model.ReceiptTask) error
}

// PaymentProvider creates payment intents with the payment gateway and
// returns the client secret.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error)
}
