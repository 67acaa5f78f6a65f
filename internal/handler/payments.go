package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/service"
)

// PaymentHandler creates payment intents for the checkout page.  The
// client confirms the card with the returned secret and then books the
// class as paid with the intent id as transactionId.
type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	if payments == nil {
		panic("nil payment service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: payments}
}

type intentBody struct {
	Price *float64 `json:"price"` // dollars; nil and zero are rejected
}

// CreateIntent handles POST /create-payment-intent.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var body intentBody
	if err := bindAndValidate(c, &body); err != nil {
		return fail(c, err)
	}
	secret, err := h.Payments.CreateIntent(c.Request().Context(), body.Price)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"clientSecret": secret})
}
