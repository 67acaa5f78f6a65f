package mongorepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/iliyamo/course-booking/internal/model"
)

func TestBookingStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	student := primitive.NewObjectID()
	instructor := primitive.NewObjectID()

	mt.Run("upsert updates existing booking", func(mt *mtest.T) {
		existing := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, "db.bookings", mtest.FirstBatch, bson.D{{Key: "_id", Value: existing}}),
		)
		b := &model.Booking{
			StudentID:     student.Hex(),
			InstructorID:  instructor.Hex(),
			ClassID:       "c1",
			PaymentStatus: model.PaymentPaid,
			Date:          time.Now(),
		}
		res, err := NewBookingStore(mt.Coll).Upsert(ctx, b)
		require.NoError(mt, err)
		assert.EqualValues(mt, 1, res.ModifiedCount)
		assert.Equal(mt, existing.Hex(), b.ID)

		q := updateFilter(mt)
		assert.Equal(mt, "c1", q["classId"])
		assert.NotContains(mt, q, "classIndex")
	})

	mt.Run("upsert insert sets id", func(mt *mtest.T) {
		inserted := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: inserted}}}},
		))
		b := &model.Booking{StudentID: student.Hex(), InstructorID: instructor.Hex(), ClassID: "c1"}
		res, err := NewBookingStore(mt.Coll).Upsert(ctx, b)
		require.NoError(mt, err)
		assert.EqualValues(mt, 1, res.UpsertedCount)
		assert.Equal(mt, inserted.Hex(), b.ID)
	})

	mt.Run("classes without id are keyed by position", func(mt *mtest.T) {
		store := NewBookingStore(mt.Coll)
		legacy := &userDoc{
			ID:   instructor,
			Role: "Instructor",
			Classes: []classDoc{
				{Name: "Yoga", Price: 10},
				{Name: "Trail", Price: 20},
			},
		}
		inst := legacy.toModel()

		var filters []bson.M
		for i, c := range inst.Classes {
			require.Empty(mt, c.ID)
			mt.AddMockResponses(mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}}}},
			))
			_, err := store.Upsert(ctx, &model.Booking{
				StudentID:    student.Hex(),
				InstructorID: inst.ID,
				ClassID:      c.ID,
				ClassIndex:   i,
				ClassName:    c.Name,
			})
			require.NoError(mt, err)
			filters = append(filters, updateFilter(mt))
		}

		require.Len(mt, filters, 2)
		assert.NotEqual(mt, filters[0], filters[1])
		for i, q := range filters {
			assert.EqualValues(mt, i, q["classIndex"])
			assert.Equal(mt, instructor, q["instructorId"])
			assert.Contains(mt, q, "classId")
		}
	})

	mt.Run("upsert rejects malformed student", func(mt *mtest.T) {
		_, err := NewBookingStore(mt.Coll).Upsert(ctx, &model.Booking{StudentID: "bad", InstructorID: instructor.Hex()})
		assert.ErrorIs(mt, err, model.ErrInvalidID)
	})

	mt.Run("list by student", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.bookings", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "studentId", Value: student},
			{Key: "instructorId", Value: instructor},
			{Key: "class-name", Value: "Yoga"},
			{Key: "paymentStatus", Value: "unpaid"},
		}))
		out, err := NewBookingStore(mt.Coll).ListByStudent(ctx, student.Hex())
		require.NoError(mt, err)
		require.Len(mt, out, 1)
		assert.Equal(mt, "Yoga", out[0].ClassName)
		assert.Equal(mt, instructor.Hex(), out[0].InstructorID)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.bookings", mtest.FirstBatch))
		_, err := NewBookingStore(mt.Coll).GetForStudent(ctx, student.Hex(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("delete unpaid", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))
		n, err := NewBookingStore(mt.Coll).DeleteUnpaid(ctx, student.Hex())
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})

	mt.Run("delete one", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		n, err := NewBookingStore(mt.Coll).Delete(ctx, student.Hex(), instructor.Hex(), "c1", 3)
		require.NoError(mt, err)
		assert.Zero(mt, n)

		q := deleteFilter(mt)
		assert.Equal(mt, "c1", q["classId"])
		assert.Equal(mt, instructor, q["instructorId"])
		assert.NotContains(mt, q, "classIndex")
	})

	mt.Run("delete class without id uses position", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		n, err := NewBookingStore(mt.Coll).Delete(ctx, student.Hex(), instructor.Hex(), "", 1)
		require.NoError(mt, err)
		assert.EqualValues(mt, 1, n)
		assert.EqualValues(mt, 1, deleteFilter(mt)["classIndex"])
	})
}

// updateFilter decodes the query of the last update command sent.
func updateFilter(mt *mtest.T) bson.M {
	return commandFilter(mt, "update", "updates")
}

func deleteFilter(mt *mtest.T) bson.M {
	return commandFilter(mt, "delete", "deletes")
}

func commandFilter(mt *mtest.T, name, list string) bson.M {
	mt.Helper()
	var q bson.M
	for {
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt, "no %s command recorded", name)
		if evt.CommandName != name {
			continue
		}
		stmt := evt.Command.Lookup(list).Array().Index(0).Value().Document()
		require.NoError(mt, bson.Unmarshal(stmt.Lookup("q").Document(), &q))
		mt.ClearEvents()
		return q
	}
}
