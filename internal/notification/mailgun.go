package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/mailgun/mailgun-go/v4"

	"github.com/iliyamo/course-booking/internal/metrics"
	"github.com/iliyamo/course-booking/internal/model"
)

// MailgunSender sends receipts through the Mailgun API.  Without an API
// key it runs disabled: every send is logged and skipped.
type MailgunSender struct {
	mg    *mailgun.MailgunImpl
	from  string
	brand Brand
	log   echo.Logger
	now   func() time.Time
}

// NewMailgunSender configures a sender for domain.  apiBase overrides
// the Mailgun endpoint when non-empty.
func NewMailgunSender(domain, apiKey, from, apiBase string, logger echo.Logger) *MailgunSender {
	s := &MailgunSender{from: from, brand: PMBIA, log: logger, now: time.Now}
	if apiKey == "" || domain == "" {
		logger.Warn("mailgun: EMAIL_PRIVATE_KEY or EMAIL_DOMAIN not set, receipts disabled")
		return s
	}
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	s.mg = mg
	return s
}

// Enabled reports whether the sender will contact Mailgun.
func (s *MailgunSender) Enabled() bool { return s.mg != nil }

func (s *MailgunSender) Send(ctx context.Context, task model.ReceiptTask) error {
	if s.mg == nil {
		metrics.Receipts.WithLabelValues("skipped").Inc()
		s.log.Infoj(log.JSON{"event": "receipt_skipped", "to": task.StudentEmail, "class": task.ClassName})
		return nil
	}
	r, err := RenderReceipt(task, s.brand, s.now())
	if err != nil {
		return err
	}
	m := s.mg.NewMessage(s.from, r.Subject, r.Text, task.StudentEmail)
	m.SetHtml(r.HTML)
	_, id, err := s.mg.Send(ctx, m)
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	s.log.Infoj(log.JSON{"event": "receipt_sent", "to": task.StudentEmail, "mailgun_id": id})
	return nil
}
