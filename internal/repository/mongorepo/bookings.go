package mongorepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/course-booking/internal/model"
)

// BookingStore keeps bookings in their own collection, unique per
// (studentId, classId).  Classes created before stable ids existed have
// no id; their bookings are keyed on (studentId, instructorId,
// classIndex) instead, as those documents always were.
type BookingStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewBookingStore(coll *mongo.Collection) *BookingStore {
	return &BookingStore{coll: coll, now: func() time.Time { return time.Now().UTC() }}
}

func (s *BookingStore) Upsert(ctx context.Context, b *model.Booking) (model.UpsertResult, error) {
	studentID, err := objectID(b.StudentID)
	if err != nil {
		return model.UpsertResult{}, err
	}
	instructorID, err := objectID(b.InstructorID)
	if err != nil {
		return model.UpsertResult{}, err
	}
	now := s.now()
	set := bson.M{
		"studentEmail":   b.StudentEmail,
		"studentName":    b.StudentName,
		"instructorId":   instructorID,
		"instructorName": b.InstructorName,
		"classIndex":     b.ClassIndex,
		"class-name":     b.ClassName,
		"classImage":     b.ClassImage,
		"classFee":       b.ClassFee,
		"paymentStatus":  b.PaymentStatus,
		"transactionId":  b.TransactionID,
		"date":           b.Date,
		"updatedAt":      now,
	}
	filter := bookingKey(studentID, instructorID, b.ClassID, b.ClassIndex)
	update := bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": now}}
	res, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return model.UpsertResult{}, translate("upsert booking", err)
	}
	out := upsertResult(res)
	if out.UpsertedID != "" {
		b.ID = out.UpsertedID
		return out, nil
	}
	// updated in place: look the id up for the caller
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err = s.coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&doc)
	if err != nil {
		return model.UpsertResult{}, translate("upsert booking", err)
	}
	b.ID = doc.ID.Hex()
	return out, nil
}

// bookingKey is the identity filter of one booking.  A class without a
// stable id is addressed by its position and only matches bookings that
// carry no class id either.
func bookingKey(studentID, instructorID primitive.ObjectID, classID string, classIndex int) bson.M {
	if classID != "" {
		return bson.M{"studentId": studentID, "classId": classID}
	}
	return bson.M{
		"studentId":    studentID,
		"instructorId": instructorID,
		"classIndex":   classIndex,
		"classId":      bson.M{"$in": bson.A{nil, ""}},
	}
}

func (s *BookingStore) ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	oid, err := objectID(studentID)
	if err != nil {
		return nil, err
	}
	cur, err := s.coll.Find(ctx, bson.M{"studentId": oid}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate("list bookings", err)
	}
	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("decode bookings", err)
	}
	out := make([]*model.Booking, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (s *BookingStore) GetForStudent(ctx context.Context, studentID, bookingID string) (*model.Booking, error) {
	sid, err := objectID(studentID)
	if err != nil {
		return nil, err
	}
	bid, err := objectID(bookingID)
	if err != nil {
		return nil, err
	}
	var doc bookingDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": bid, "studentId": sid}).Decode(&doc); err != nil {
		return nil, translate("get booking", err)
	}
	return doc.toModel(), nil
}

func (s *BookingStore) Delete(ctx context.Context, studentID, instructorID, classID string, classIndex int) (int64, error) {
	sid, err := objectID(studentID)
	if err != nil {
		return 0, err
	}
	iid, err := objectID(instructorID)
	if err != nil {
		return 0, err
	}
	filter := bookingKey(sid, iid, classID, classIndex)
	if classID != "" {
		filter["instructorId"] = iid
	}
	res, err := s.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, translate("delete booking", err)
	}
	return res.DeletedCount, nil
}

// DeleteUnpaid removes a student's unpaid bookings only.
func (s *BookingStore) DeleteUnpaid(ctx context.Context, studentID string) (int64, error) {
	sid, err := objectID(studentID)
	if err != nil {
		return 0, err
	}
	res, err := s.coll.DeleteMany(ctx, bson.M{"studentId": sid, "paymentStatus": model.PaymentUnpaid})
	if err != nil {
		return 0, translate("purge unpaid bookings", err)
	}
	return res.DeletedCount, nil
}
