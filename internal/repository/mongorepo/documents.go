// Package mongorepo implements the stores on MongoDB.  Users live in the
// users collection with an instructor's classes embedded as an array;
// bookings live in their own collection.  Field names match the
// documents written by earlier versions of the service so existing data
// can be served unchanged.
package mongorepo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/course-booking/internal/model"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name,omitempty"`
	Image     string             `bson:"image,omitempty"`
	Gender    string             `bson:"gender,omitempty"`
	ContactNo string             `bson:"contactNo,omitempty"`
	Address   string             `bson:"address,omitempty"`
	Role      string             `bson:"role,omitempty"`
	Quote     string             `bson:"quote,omitempty"`
	Classes   []classDoc         `bson:"classes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty"`
}

type classDoc struct {
	ID           string  `bson:"id,omitempty"`
	Name         string  `bson:"name"`
	Image        string  `bson:"image,omitempty"`
	Price        float64 `bson:"price"`
	TotalStudent int     `bson:"totalStudent"`
	Description  string  `bson:"description,omitempty"`
}

type bookingDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	StudentID      primitive.ObjectID `bson:"studentId"`
	StudentEmail   string             `bson:"studentEmail"`
	StudentName    string             `bson:"studentName"`
	InstructorID   primitive.ObjectID `bson:"instructorId"`
	InstructorName string             `bson:"instructorName"`
	ClassID        string             `bson:"classId"`
	ClassIndex     int                `bson:"classIndex"`
	ClassName      string             `bson:"class-name"`
	ClassImage     string             `bson:"classImage"`
	ClassFee       float64            `bson:"classFee"`
	PaymentStatus  string             `bson:"paymentStatus"`
	TransactionID  string             `bson:"transactionId"`
	Date           time.Time          `bson:"date"`
	CreatedAt      time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt      time.Time          `bson:"updatedAt,omitempty"`
}

// instructorRole matches both the lower-case role written by this service
// and the capitalised value found in older documents.
var instructorRole = bson.M{"$in": bson.A{model.RoleInstructor, "Instructor"}}

func (d *userDoc) toModel() *model.User {
	u := &model.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Name:      d.Name,
		Image:     d.Image,
		Gender:    d.Gender,
		ContactNo: d.ContactNo,
		Address:   d.Address,
		Role:      strings.ToLower(d.Role),
		Quote:     d.Quote,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for i, c := range d.Classes {
		u.Classes = append(u.Classes, model.Class{
			ID:           c.ID,
			Name:         c.Name,
			Image:        c.Image,
			Price:        c.Price,
			TotalStudent: c.TotalStudent,
			Description:  c.Description,
			Position:     i,
		})
	}
	return u
}

func (d *bookingDoc) toModel() *model.Booking {
	return &model.Booking{
		ID:             d.ID.Hex(),
		StudentID:      d.StudentID.Hex(),
		StudentEmail:   d.StudentEmail,
		StudentName:    d.StudentName,
		InstructorID:   d.InstructorID.Hex(),
		InstructorName: d.InstructorName,
		ClassID:        d.ClassID,
		ClassIndex:     d.ClassIndex,
		ClassName:      d.ClassName,
		ClassImage:     d.ClassImage,
		ClassFee:       d.ClassFee,
		PaymentStatus:  d.PaymentStatus,
		TransactionID:  d.TransactionID,
		Date:           d.Date,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}
	return oid, nil
}

// translate maps driver errors onto model sentinels.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, model.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func upsertResult(res *mongo.UpdateResult) model.UpsertResult {
	out := model.UpsertResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = oid.Hex()
	}
	return out
}
