// Package notification renders and delivers receipt emails.  Delivery
// is asynchronous: tasks are queued by the booking service and handed to
// a Sender by either the in-process dispatcher or the AMQP consumer.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iliyamo/course-booking/internal/model"
)

// ReceiptSubject is the subject line of every receipt email.
const ReceiptSubject = "Thank you for your course purchase!"

const (
	courseStartsIn = 7 * 24 * time.Hour
	courseLength   = 25 * 24 * time.Hour
)

// Sender delivers one receipt.
type Sender interface {
	Send(ctx context.Context, task model.ReceiptTask) error
}

// Receipt is a rendered receipt email.
type Receipt struct {
	Subject string
	Text    string
	HTML    string
}

// Brand is the sender identity printed on receipts.
type Brand struct {
	Name      string // short name used in the greeting and footer
	FullName  string
	Location  string // course venue, also the postal address in the footer
	Site      string
	Phone     string
	Email     string
	Signatory string
	Title     string
	Company   string
	Since     int
	LogoURL   string
}

// PMBIA is the default brand.
var PMBIA = Brand{
	Name:      "PMBIA",
	FullName:  "Professional Mountain Biking Instructors Association",
	Location:  "Duifkruid 84, 4007 SZ Tiel, Netherlands",
	Site:      "https://pmbia-55816.web.app/",
	Phone:     "+31644460635",
	Email:     "info@pmbia.com",
	Signatory: "Tanzeebul Tamim",
	Title:     "Chief Executive Officer",
	Company:   "PMBIA ltd.",
	Since:     2006,
	LogoURL:   "https://i.ibb.co/7gCjkHF/pmbia-logo-word-reverse.png",
}

type receiptView struct {
	Brand
	SentOn         string
	StudentName    string
	ClassName      string
	InstructorName string
	StartDate      string
	EndDate        string
	DurationDays   int
	TransactionID  string
	Amount         string
	PaidOn         string
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; margin: 0;">
  <div style="background: #1f2937; padding: 16px; text-align: center;">
    <img src="{{.LogoURL}}" alt="{{.Name}}" style="max-height: 48px;">
  </div>
  <div style="padding: 24px;">
    <p style="color: #777;">{{.SentOn}}</p>
    <p>Dear {{.StudentName}},</p>
    <p>Thank you for choosing {{.Name}} ({{.FullName}}) for your mountain biking course.
      We are thrilled to have you join us and embark on this exciting journey of learning and adventure!</p>

    <h3>Course Details</h3>
    <ul>
      <li>Course Name: {{.ClassName}}</li>
      <li>Instructor: {{.InstructorName}}</li>
      <li>Start Date: {{.StartDate}}</li>
      <li>End Date: {{.EndDate}}</li>
      <li>Duration: {{.DurationDays}} days</li>
      <li>Location: {{.Location}}</li>
    </ul>

    <h3>Payment Details</h3>
    <ul>
      <li>Transaction ID: {{.TransactionID}}</li>
      <li>Payment Amount: $ {{.Amount}}</li>
      <li>Date of Payment: {{.PaidOn}}</li>
    </ul>

    <p>Best regards,<br>{{.Signatory}}<br>{{.Title}}<br>{{.Company}}</p>
  </div>
  <div style="background: #f3f4f6; padding: 16px; font-size: 12px; text-align: center;">
    <p><strong>Team {{.Name}}</strong><br>Delivering exceptional services since {{.Since}}.</p>
    <p>Site: <a href="{{.Site}}">{{.Site}}</a><br>{{.Location}}</p>
    <p>Phone : {{.Phone}} | Email : {{.Email}}</p>
  </div>
</body>
</html>
`))

// FormatDate renders t as "2nd January, 2006".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", humanize.Ordinal(t.Day()), t.Month(), t.Year())
}

// formatCourseDate renders t as "2nd January 2006".
func formatCourseDate(t time.Time) string {
	return fmt.Sprintf("%s %s %d", humanize.Ordinal(t.Day()), t.Month(), t.Year())
}

// formatPaidOn renders t as "Monday, 2nd January 2006, 03:04 pm".
func formatPaidOn(t time.Time) string {
	return fmt.Sprintf("%s, %s, %s", t.Weekday(), formatCourseDate(t), t.Format("03:04 pm"))
}

// RenderReceipt builds the receipt email for task as if sent at now.
// The course starts a week after now and runs for twenty-five days.
func RenderReceipt(task model.ReceiptTask, brand Brand, now time.Time) (Receipt, error) {
	start := now.Add(courseStartsIn)
	end := start.Add(courseLength)
	paid := task.PaidAt
	if paid.IsZero() {
		paid = now
	}
	v := receiptView{
		Brand:          brand,
		SentOn:         FormatDate(now),
		StudentName:    task.StudentName,
		ClassName:      task.ClassName,
		InstructorName: task.InstructorName,
		StartDate:      formatCourseDate(start),
		EndDate:        formatCourseDate(end),
		DurationDays:   int(end.Sub(start).Hours() / 24),
		TransactionID:  task.TransactionID,
		Amount:         fmt.Sprintf("%.2f", task.Price),
		PaidOn:         formatPaidOn(paid),
	}
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, v); err != nil {
		return Receipt{}, fmt.Errorf("render receipt: %w", err)
	}
	text := fmt.Sprintf("Dear %s, thank you for choosing %s. Course %s with %s runs from %s to %s at %s. "+
		"Transaction %s, amount $%s, paid %s.",
		v.StudentName, brand.Name, v.ClassName, v.InstructorName, v.StartDate, v.EndDate, brand.Location,
		v.TransactionID, v.Amount, v.PaidOn)
	return Receipt{Subject: ReceiptSubject, Text: text, HTML: buf.String()}, nil
}
