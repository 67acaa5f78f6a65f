// Package queue carries receipt requests over RabbitMQ.  The booking
// service publishes a ReceiptRequested event per paid booking; the
// consumer started by the server delivers it through a notification
// sender.
package queue

import (
	"time"

	"github.com/iliyamo/course-booking/internal/model"
)

// ReceiptQueueName is the durable queue receipt events are routed to.
const ReceiptQueueName = "booking.receipt"

// ReceiptRequested is published when a paid booking is stored.  It
// embeds everything needed to render the email so consumers never query
// the primary database.
type ReceiptRequested struct {
	EventID     string            `json:"event_id"`
	Task        model.ReceiptTask `json:"task"`
	PublishedAt time.Time         `json:"published_at"`
}
