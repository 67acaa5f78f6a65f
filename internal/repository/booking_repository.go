package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/course-booking/internal/model"
)

const bookingColumns = `id, student_id, student_email, student_name, instructor_id, instructor_name,
    class_id, class_index, class_name, class_image, class_fee, payment_status, transaction_id,
    booked_at, created_at, updated_at`

// BookingRepo provides upsert, lookup and delete operations for bookings.
// A booking is unique per (student_id, class_id); writing the same pair
// again overwrites the snapshot instead of inserting a duplicate.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Upsert inserts b or overwrites the existing booking of the same student
// and class. On return b.ID holds the id of the stored row, which on update
// is the id the booking was first inserted with.
func (r *BookingRepo) Upsert(ctx context.Context, b *model.Booking) (model.UpsertResult, error) {
	studentID, err := parseID(b.StudentID)
	if err != nil {
		return model.UpsertResult{}, err
	}
	newID := uuid.NewString()
	const q = `INSERT INTO bookings (id, student_id, student_email, student_name, instructor_id, instructor_name,
                   class_id, class_index, class_name, class_image, class_fee, payment_status, transaction_id, booked_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   student_email = VALUES(student_email),
                   student_name = VALUES(student_name),
                   instructor_id = VALUES(instructor_id),
                   instructor_name = VALUES(instructor_name),
                   class_index = VALUES(class_index),
                   class_name = VALUES(class_name),
                   class_image = VALUES(class_image),
                   class_fee = VALUES(class_fee),
                   payment_status = VALUES(payment_status),
                   transaction_id = VALUES(transaction_id),
                   booked_at = VALUES(booked_at)`
	res, err := r.db.ExecContext(ctx, q,
		newID, studentID, b.StudentEmail, b.StudentName, b.InstructorID, b.InstructorName,
		b.ClassID, b.ClassIndex, b.ClassName, b.ClassImage, b.ClassFee, b.PaymentStatus, b.TransactionID, b.Date.UTC(),
	)
	if err != nil {
		return model.UpsertResult{}, translate("upsert booking", err)
	}
	out, err := upsertResult(res, newID)
	if err != nil {
		return out, err
	}
	if out.UpsertedCount == 1 {
		b.ID = newID
		return out, nil
	}
	// ON DUPLICATE KEY keeps the original id
	if err := r.db.QueryRowContext(ctx,
		"SELECT id FROM bookings WHERE student_id = ? AND class_id = ?", studentID, b.ClassID).Scan(&b.ID); err != nil {
		return out, translate("upsert booking", err)
	}
	return out, nil
}

// ListByStudent returns every booking of a student, oldest first.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	studentID, err := parseID(studentID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE student_id = ? ORDER BY created_at, id", studentID)
	if err != nil {
		return nil, translate("list bookings", err)
	}
	defer rows.Close()

	out := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, translate("scan booking", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list bookings", err)
	}
	return out, nil
}

// GetForStudent returns one booking, only if it belongs to studentID.
func (r *BookingRepo) GetForStudent(ctx context.Context, studentID, bookingID string) (*model.Booking, error) {
	studentID, err := parseID(studentID)
	if err != nil {
		return nil, err
	}
	bookingID, err = parseID(bookingID)
	if err != nil {
		return nil, err
	}
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ? AND student_id = ?", bookingID, studentID))
	if err != nil {
		return nil, translate("get booking", err)
	}
	return b, nil
}

// Delete removes the booking a student holds for one class. Every MySQL
// class row has an id, so classIndex is not part of the key here.
func (r *BookingRepo) Delete(ctx context.Context, studentID, instructorID, classID string, _ int) (int64, error) {
	studentID, err := parseID(studentID)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM bookings WHERE student_id = ? AND instructor_id = ? AND class_id = ?",
		studentID, instructorID, classID)
	if err != nil {
		return 0, translate("delete booking", err)
	}
	return rowsAffected("delete booking", res)
}

// DeleteUnpaid removes every unpaid booking of a student and leaves paid
// ones in place.
func (r *BookingRepo) DeleteUnpaid(ctx context.Context, studentID string) (int64, error) {
	studentID, err := parseID(studentID)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM bookings WHERE student_id = ? AND payment_status = ?", studentID, model.PaymentUnpaid)
	if err != nil {
		return 0, translate("purge unpaid bookings", err)
	}
	return rowsAffected("purge unpaid bookings", res)
}

func rowsAffected(op string, res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.StudentID, &b.StudentEmail, &b.StudentName, &b.InstructorID, &b.InstructorName,
		&b.ClassID, &b.ClassIndex, &b.ClassName, &b.ClassImage, &b.ClassFee, &b.PaymentStatus, &b.TransactionID,
		&b.Date, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
