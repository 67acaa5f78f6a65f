package mongorepo

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/course-booking/internal/model"
)

// UserStore serves users and their embedded classes from one collection.
type UserStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserStore binds a UserStore to the users collection.
func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll, now: func() time.Time { return time.Now().UTC() }}
}

// UpsertByEmail $sets only the supplied fields on the user with email and
// creates the document when none matches.
func (s *UserStore) UpsertByEmail(ctx context.Context, email string, patch model.UserPatch) (model.UpsertResult, error) {
	now := s.now()
	set := bson.M{"updatedAt": now}
	for _, f := range patch.Fields() {
		set[f.Key] = f.Value
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return model.UpsertResult{}, translate("upsert user", err)
	}
	return upsertResult(res), nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, "get user by email", bson.M{"email": email})
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, "get user", bson.M{"_id": oid})
}

func (s *UserStore) GetInstructor(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, "get instructor", bson.M{"_id": oid, "role": instructorRole})
}

// ListInstructors returns instructors whose name contains search,
// ignoring case.  The term is matched literally, not as a pattern.
func (s *UserStore) ListInstructors(ctx context.Context, search string, limit int) ([]*model.User, error) {
	filter := bson.M{"role": instructorRole}
	if search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("list instructors", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("decode instructors", err)
	}
	out := make([]*model.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (s *UserStore) CountInstructors(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"role": instructorRole})
	if err != nil {
		return 0, translate("count instructors", err)
	}
	return n, nil
}

// AddClass pushes c onto the instructor's classes and sets c.Position to
// the index it landed on.
func (s *UserStore) AddClass(ctx context.Context, instructorID string, c *model.Class) error {
	oid, err := objectID(instructorID)
	if err != nil {
		return err
	}
	doc := classDoc{
		ID:           c.ID,
		Name:         c.Name,
		Image:        c.Image,
		Price:        c.Price,
		TotalStudent: c.TotalStudent,
		Description:  c.Description,
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"classes.id": 1})
	var updated userDoc
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "role": instructorRole},
		bson.M{"$push": bson.M{"classes": doc}, "$set": bson.M{"updatedAt": s.now()}},
		opts,
	).Decode(&updated)
	if err != nil {
		return translate("add class", err)
	}
	c.Position = len(updated.Classes) - 1
	for i, cd := range updated.Classes {
		if cd.ID == c.ID {
			c.Position = i
		}
	}
	return nil
}

// IncrementStudents bumps totalStudent of one embedded class with $inc.
// Classes written before stable ids existed are addressed by position.
func (s *UserStore) IncrementStudents(ctx context.Context, instructorID, classID string, index int) error {
	oid, err := objectID(instructorID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "role": instructorRole}
	var update bson.M
	if classID != "" {
		filter["classes.id"] = classID
		update = bson.M{"$inc": bson.M{"classes.$.totalStudent": 1}}
	} else {
		if index < 0 {
			return fmt.Errorf("increment students: %w", model.ErrNotFound)
		}
		path := "classes." + strconv.Itoa(index)
		filter[path] = bson.M{"$exists": true}
		update = bson.M{"$inc": bson.M{path + ".totalStudent": 1}}
	}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate("increment students", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("increment students: %w", model.ErrNotFound)
	}
	return nil
}

// CountClasses sums the class array lengths of all instructors on the
// server side.
func (s *UserStore) CountClasses(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"role": instructorRole}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$size": bson.M{"$ifNull": bson.A{"$classes", bson.A{}}}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, translate("count classes", err)
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, translate("count classes", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *UserStore) findOne(ctx context.Context, op string, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(op, err)
	}
	return doc.toModel(), nil
}
