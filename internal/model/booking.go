package model

import "time"

// Payment states a booking can be in.  Unpaid bookings act as a cart
// and are purged in bulk when the student abandons checkout.
const (
	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// Booking records a student's reservation of one class.  The class
// name, image and fee are copied at booking time and are not kept in
// sync with later edits of the class.
//
// Fields:
//
//	ID             – booking identifier.
//	StudentID      – student who booked.
//	StudentEmail   – receipt recipient.
//	StudentName    – receipt salutation.
//	InstructorID   – owner of the class.
//	InstructorName – snapshot of the instructor name.
//	ClassID        – stable class identifier; with StudentID it forms the upsert key.
//	ClassIndex     – position of the class when the booking was written.
//	ClassName      – snapshot of the class name.
//	ClassImage     – snapshot of the class image.
//	ClassFee       – snapshot of the class price.
//	PaymentStatus  – paid or unpaid.
//	TransactionID  – payment provider reference.
//	Date           – client supplied payment/booking date.
type Booking struct {
	ID             string    `json:"_id"`
	StudentID      string    `json:"studentId"`
	StudentEmail   string    `json:"studentEmail"`
	StudentName    string    `json:"studentName"`
	InstructorID   string    `json:"instructorId"`
	InstructorName string    `json:"instructorName"`
	ClassID        string    `json:"classId"`
	ClassIndex     int       `json:"classIndex"`
	ClassName      string    `json:"className"`
	ClassImage     string    `json:"classImage,omitempty"`
	ClassFee       float64   `json:"classFee"`
	PaymentStatus  string    `json:"paymentStatus"`
	TransactionID  string    `json:"transactionId,omitempty"`
	Date           time.Time `json:"date"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// IsPaymentStatus reports whether s is a known payment state.
func IsPaymentStatus(s string) bool {
	return s == PaymentPaid || s == PaymentUnpaid
}
