package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/course-booking/internal/metrics"
	"github.com/iliyamo/course-booking/internal/model"
)

// BookingService writes and reads the booking ledger.  Paid bookings
// trigger a receipt email through the receipt queue.
type BookingService struct {
	users    UserStore
	bookings BookingStore
	receipts ReceiptQueue
	log      echo.Logger
	now      func() time.Time
}

func NewBookingService(users UserStore, bookings BookingStore, receipts ReceiptQueue, logger echo.Logger) *BookingService {
	return &BookingService{
		users:    users,
		bookings: bookings,
		receipts: receipts,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BookRequest is a booking submission.  The class is addressed through
// Class; StudentEmail and StudentName are looked up when left empty.
type BookRequest struct {
	StudentID     string
	StudentEmail  string
	StudentName   string
	Class         model.ClassRef
	PaymentStatus string
	TransactionID string
	Date          time.Time
}

// Book creates or replaces the student's booking of one class.  The
// instructor and class are resolved from current data and copied into
// the booking.  When the booking is paid a receipt is queued; a queue
// failure is logged and does not fail the booking.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (model.UpsertResult, error) {
	if strings.TrimSpace(req.StudentID) == "" || strings.TrimSpace(req.Class.InstructorID) == "" {
		return model.UpsertResult{}, fmt.Errorf("%w: studentId and instructorId are required", model.ErrValidation)
	}
	if req.Class.ClassID == "" && req.Class.ClassIndex == nil {
		return model.UpsertResult{}, fmt.Errorf("%w: classId or classIndex is required", model.ErrValidation)
	}
	status := strings.ToLower(strings.TrimSpace(req.PaymentStatus))
	if status == "" {
		status = model.PaymentUnpaid
	}
	if !model.IsPaymentStatus(status) {
		return model.UpsertResult{}, fmt.Errorf("%w: paymentStatus must be paid or unpaid", model.ErrValidation)
	}

	instructor, err := s.users.GetInstructor(ctx, req.Class.InstructorID)
	if err != nil {
		return model.UpsertResult{}, err
	}
	class, idx, ok := req.Class.Resolve(instructor.Classes)
	if !ok {
		return model.UpsertResult{}, fmt.Errorf("class: %w", model.ErrNotFound)
	}

	email, name := req.StudentEmail, req.StudentName
	if email == "" || name == "" {
		student, err := s.users.GetByID(ctx, req.StudentID)
		switch {
		case err == nil:
			if email == "" {
				email = student.Email
			}
			if name == "" {
				name = student.Name
			}
		case errors.Is(err, model.ErrNotFound):
			s.log.Warnf("booking: student %s not found, contact fields left empty", req.StudentID)
		default:
			return model.UpsertResult{}, err
		}
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	b := &model.Booking{
		StudentID:      req.StudentID,
		StudentEmail:   email,
		StudentName:    name,
		InstructorID:   instructor.ID,
		InstructorName: instructor.Name,
		ClassID:        class.ID,
		ClassIndex:     idx,
		ClassName:      class.Name,
		ClassImage:     class.Image,
		ClassFee:       class.Price,
		PaymentStatus:  status,
		TransactionID:  req.TransactionID,
		Date:           date,
	}
	res, err := s.bookings.Upsert(ctx, b)
	if err != nil {
		return model.UpsertResult{}, err
	}
	metrics.BookingsUpserted.WithLabelValues(status).Inc()

	if status == model.PaymentPaid {
		s.queueReceipt(ctx, b, res)
	}
	return res, nil
}

func (s *BookingService) queueReceipt(ctx context.Context, b *model.Booking, res model.UpsertResult) {
	if b.StudentEmail == "" {
		s.log.Warnf("receipt: booking for student %s has no email, not queued", b.StudentID)
		return
	}
	id := b.ID
	if id == "" {
		id = res.UpsertedID
	}
	task := model.ReceiptTask{
		BookingID:      id,
		StudentEmail:   b.StudentEmail,
		StudentName:    b.StudentName,
		ClassName:      b.ClassName,
		InstructorName: b.InstructorName,
		Price:          b.ClassFee,
		TransactionID:  b.TransactionID,
		PaidAt:         b.Date,
		RequestedAt:    s.now(),
	}
	if err := s.receipts.Enqueue(ctx, task); err != nil {
		metrics.Receipts.WithLabelValues("dropped").Inc()
		s.log.Errorj(log.JSON{"event": "receipt_enqueue_failed", "student_id": b.StudentID,
			"class_id": b.ClassID, "error": err.Error()})
		return
	}
	metrics.Receipts.WithLabelValues("queued").Inc()
}

// ListForStudent returns all bookings of a student; an empty slice when
// there are none.
func (s *BookingService) ListForStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	out, err := s.bookings.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.Booking{}
	}
	return out, nil
}

func (s *BookingService) Get(ctx context.Context, studentID, bookingID string) (*model.Booking, error) {
	return s.bookings.GetForStudent(ctx, studentID, bookingID)
}

// Delete removes the student's booking of the referenced class.  A class
// that cannot be resolved deletes nothing.
func (s *BookingService) Delete(ctx context.Context, studentID string, ref model.ClassRef) (model.DeleteResult, error) {
	if ref.InstructorID == "" || (ref.ClassID == "" && ref.ClassIndex == nil) {
		return model.DeleteResult{}, fmt.Errorf("%w: instructorId and classId or classIndex are required", model.ErrValidation)
	}
	classID, idx := ref.ClassID, -1
	if ref.ClassIndex != nil {
		idx = *ref.ClassIndex
	}
	if classID == "" {
		instructor, err := s.users.GetInstructor(ctx, ref.InstructorID)
		if errors.Is(err, model.ErrNotFound) {
			return model.DeleteResult{}, nil
		}
		if err != nil {
			return model.DeleteResult{}, err
		}
		class, i, ok := ref.Resolve(instructor.Classes)
		if !ok {
			return model.DeleteResult{}, nil
		}
		classID, idx = class.ID, i
	}
	n, err := s.bookings.Delete(ctx, studentID, ref.InstructorID, classID, idx)
	if err != nil {
		return model.DeleteResult{}, err
	}
	return model.DeleteResult{DeletedCount: n}, nil
}

// PurgeUnpaid removes every unpaid booking of a student.
func (s *BookingService) PurgeUnpaid(ctx context.Context, studentID string) (model.DeleteResult, error) {
	n, err := s.bookings.DeleteUnpaid(ctx, studentID)
	if err != nil {
		return model.DeleteResult{}, err
	}
	if n > 0 {
		s.log.Infoj(log.JSON{"event": "unpaid_purged", "student_id": studentID, "deleted": n})
	}
	return model.DeleteResult{DeletedCount: n}, nil
}
