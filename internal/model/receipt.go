package model

import "time"

// ReceiptTask is the payload of a queued receipt email.  It carries a
// copy of everything the template needs so the worker never reads the
// database.
type ReceiptTask struct {
	BookingID      string    `json:"booking_id"`
	StudentEmail   string    `json:"student_email"`
	StudentName    string    `json:"student_name"`
	ClassName      string    `json:"class_name"`
	InstructorName string    `json:"instructor_name"`
	Price          float64   `json:"price"`
	TransactionID  string    `json:"transaction_id"`
	PaidAt         time.Time `json:"paid_at"`
	RequestedAt    time.Time `json:"requested_at"`
}
