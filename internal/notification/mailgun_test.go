package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/course-booking/internal/model"
)

func TestMailgunSender_Disabled(t *testing.T) {
	s := NewMailgunSender("", "", "no-reply@x.io", "", quietLogger())
	assert.False(t, s.Enabled())
	assert.NoError(t, s.Send(context.Background(), model.ReceiptTask{StudentEmail: "a@x.io"}))
}

func TestMailgunSender_Send(t *testing.T) {
	var got struct {
		path, to, subject, html string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// FormValue handles both multipart and urlencoded bodies
		got.path = r.URL.Path
		got.to = r.FormValue("to")
		got.subject = r.FormValue("subject")
		got.html = r.FormValue("html")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<20240101.1@mg.x.io>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	s := NewMailgunSender("mg.x.io", "key-123", "no-reply@x.io", srv.URL+"/v3", quietLogger())
	require.True(t, s.Enabled())
	err := s.Send(context.Background(), model.ReceiptTask{
		StudentEmail: "a@x.io", StudentName: "Ann", ClassName: "Yoga", Price: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "/v3/mg.x.io/messages", got.path)
	assert.Equal(t, "a@x.io", got.to)
	assert.Equal(t, ReceiptSubject, got.subject)
	assert.Contains(t, got.html, "Yoga")
}
