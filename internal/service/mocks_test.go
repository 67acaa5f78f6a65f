package service

import (
	"context"
	"io"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/course-booking/internal/model"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) UpsertByEmail(ctx context.Context, email string, patch model.UserPatch) (model.UpsertResult, error) {
	args := m.Called(ctx, email, patch)
	return args.Get(0).(model.UpsertResult), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetInstructor(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) ListInstructors(ctx context.Context, search string, limit int) ([]*model.User, error) {
	args := m.Called(ctx, search, limit)
	list, _ := args.Get(0).([]*model.User)
	return list, args.Error(1)
}

func (m *mockUsers) CountInstructors(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockClasses struct{ mock.Mock }

func (m *mockClasses) AddClass(ctx context.Context, instructorID string, c *model.Class) error {
	return m.Called(ctx, instructorID, c).Error(0)
}

func (m *mockClasses) IncrementStudents(ctx context.Context, instructorID, classID string, index int) error {
	return m.Called(ctx, instructorID, classID, index).Error(0)
}

func (m *mockClasses) CountClasses(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Upsert(ctx context.Context, b *model.Booking) (model.UpsertResult, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(model.UpsertResult), args.Error(1)
}

func (m *mockBookings) ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	args := m.Called(ctx, studentID)
	list, _ := args.Get(0).([]*model.Booking)
	return list, args.Error(1)
}

func (m *mockBookings) GetForStudent(ctx context.Context, studentID, bookingID string) (*model.Booking, error) {
	args := m.Called(ctx, studentID, bookingID)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) Delete(ctx context.Context, studentID, instructorID, classID string, classIndex int) (int64, error) {
	args := m.Called(ctx, studentID, instructorID, classID, classIndex)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBookings) DeleteUnpaid(ctx context.Context, studentID string) (int64, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(int64), args.Error(1)
}

type mockReceipts struct{ mock.Mock }

func (m *mockReceipts) Enqueue(ctx context.Context, task model.ReceiptTask) error {
	return m.Called(ctx, task).Error(0)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error) {
	args := m.Called(ctx, amountCents, currency)
	return args.String(0), args.Error(1)
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func intPtr(i int) *int { return &i }

func instructorWithClasses(id string, totals ...int) *model.User {
	u := &model.User{ID: id, Name: "Inst " + id, Role: model.RoleInstructor}
	for i, n := range totals {
		u.Classes = append(u.Classes, model.Class{
			ID:           id + "-c" + string(rune('0'+i)),
			Name:         "Class " + string(rune('A'+i)),
			Price:        10,
			TotalStudent: n,
			Position:     i,
		})
	}
	return u
}
