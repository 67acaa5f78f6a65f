package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenMongo connects to MongoDB with the stable server API and pings the
// deployment before returning.  The client is held process-wide.
func OpenMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// bookingsWithClassID selects bookings that carry a non-empty class id.
var bookingsWithClassID = bson.M{"classId": bson.M{"$type": "string", "$gt": ""}}

// EnsureMongoIndexes creates the unique keys the stores rely on: one user
// per email and one booking per (student, class).  The booking key only
// covers documents with a class id, so bookings of id-less classes
// written by earlier versions do not collide on a null key.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	_, err = db.Collection("bookings").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "classId", Value: 1}},
			Options: options.Index().
				SetName("student_class_unique").
				SetUnique(true).
				SetPartialFilterExpression(bookingsWithClassID),
		},
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "instructorId", Value: 1}, {Key: "classIndex", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("bookings indexes: %w", err)
	}
	return nil
}
