package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/model"
	"github.com/iliyamo/course-booking/internal/service"
)

// BookingHandler serves the booking ledger of a student.  Users resolves
// student ids to emails for the ownership checks on writes.
type BookingHandler struct {
	Bookings *service.BookingService
	Users    *service.UserService
}

func NewBookingHandler(bookings *service.BookingService, users *service.UserService) *BookingHandler {
	if bookings == nil || users == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Users: users}
}

type bookBody struct {
	StudentID     string     `json:"studentId" validate:"required"`
	StudentEmail  string     `json:"studentEmail" validate:"omitempty,email"`
	StudentName   string     `json:"studentName"`
	InstructorID  string     `json:"instructorId" validate:"required"`
	ClassID       string     `json:"classId"`
	ClassIndex    *int       `json:"classIndex"`
	PaymentStatus string     `json:"paymentStatus" validate:"omitempty,oneof=paid unpaid"`
	TransactionID string     `json:"transactionId"` // payment intent id, shown on the receipt
	Date          *time.Time `json:"date"`          // defaults to now
}

// Book handles PUT /book-class.  Booking the same class again replaces
// the earlier booking, which is how an unpaid booking becomes paid.  With
// auth enabled the body's studentId must belong to the token subject.
func (h *BookingHandler) Book(c echo.Context) error {
	var body bookBody
	if err := bindAndValidate(c, &body); err != nil {
		return fail(c, err)
	}
	if err := requireOwner(c, h.Users, body.StudentID); err != nil {
		return fail(c, err)
	}
	req := service.BookRequest{
		StudentID:    body.StudentID,
		StudentEmail: body.StudentEmail,
		StudentName:  body.StudentName,
		Class: model.ClassRef{
			InstructorID: body.InstructorID,
			ClassID:      body.ClassID,
			ClassIndex:   body.ClassIndex,
		},
		PaymentStatus: body.PaymentStatus,
		TransactionID: body.TransactionID,
	}
	if body.Date != nil {
		req.Date = body.Date.UTC()
	}
	res, err := h.Bookings.Book(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// List handles GET /book-class/:studentId.
func (h *BookingHandler) List(c echo.Context) error {
	out, err := h.Bookings.ListForStudent(c.Request().Context(), c.Param("studentId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /book-class/:studentId/:itemId.
func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.Bookings.Get(c.Request().Context(), c.Param("studentId"), c.Param("itemId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type unbookBody struct {
	InstructorID string `json:"instructorId" validate:"required"`
	ClassID      string `json:"classId"`
	ClassIndex   *int   `json:"classIndex"`
}

// Delete handles DELETE /book-class/:studentId; the class is named in
// the JSON body.
func (h *BookingHandler) Delete(c echo.Context) error {
	if err := requireOwner(c, h.Users, c.Param("studentId")); err != nil {
		return fail(c, err)
	}
	var body unbookBody
	if err := bindAndValidate(c, &body); err != nil {
		return fail(c, err)
	}
	res, err := h.Bookings.Delete(c.Request().Context(), c.Param("studentId"), model.ClassRef{
		InstructorID: body.InstructorID,
		ClassID:      body.ClassID,
		ClassIndex:   body.ClassIndex,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// PurgeUnpaid handles DELETE /booking/:studentId.  Paid bookings stay.
func (h *BookingHandler) PurgeUnpaid(c echo.Context) error {
	if err := requireOwner(c, h.Users, c.Param("studentId")); err != nil {
		return fail(c, err)
	}
	res, err := h.Bookings.PurgeUnpaid(c.Request().Context(), c.Param("studentId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
