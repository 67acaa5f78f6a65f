package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/iliyamo/course-booking/internal/model"
)

// memStore is an in-memory implementation of the service store ports.
type memStore struct {
	mu       sync.Mutex
	users    []*model.User
	bookings []*model.Booking
	seq      int
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%03d", prefix, m.seq)
}

func (m *memStore) UpsertByEmail(_ context.Context, email string, p model.UserPatch) (model.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			applyPatch(u, p)
			return model.UpsertResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	u := &model.User{ID: m.nextID("u"), Email: email, Role: model.RoleStudent}
	applyPatch(u, p)
	m.users = append(m.users, u)
	return model.UpsertResult{UpsertedCount: 1, UpsertedID: u.ID}, nil
}

func applyPatch(u *model.User, p model.UserPatch) {
	for _, f := range p.Fields() {
		switch f.Key {
		case "name":
			u.Name = f.Value
		case "image":
			u.Image = f.Value
		case "gender":
			u.Gender = f.Value
		case "contactNo":
			u.ContactNo = f.Value
		case "address":
			u.Address = f.Value
		case "role":
			u.Role = f.Value
		case "quote":
			u.Quote = f.Value
		}
	}
}

func (m *memStore) find(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			cp.Classes = append([]model.Class(nil), u.Classes...)
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *memStore) GetByID(_ context.Context, id string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id })
}

func (m *memStore) GetInstructor(_ context.Context, id string) (*model.User, error) {
	if strings.HasPrefix(id, "bad") {
		return nil, model.ErrInvalidID
	}
	return m.find(func(u *model.User) bool { return u.ID == id && u.Role == model.RoleInstructor })
}

func (m *memStore) ListInstructors(_ context.Context, search string, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.Role != model.RoleInstructor {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(search)) {
			continue
		}
		cp := *u
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) CountInstructors(ctx context.Context) (int64, error) {
	list, _ := m.ListInstructors(ctx, "", 0)
	return int64(len(list)), nil
}

func (m *memStore) AddClass(_ context.Context, instructorID string, c *model.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == instructorID && u.Role == model.RoleInstructor {
			c.Position = len(u.Classes)
			u.Classes = append(u.Classes, *c)
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *memStore) IncrementStudents(_ context.Context, instructorID, classID string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID != instructorID {
			continue
		}
		for i := range u.Classes {
			if u.Classes[i].ID == classID {
				u.Classes[i].TotalStudent++
				return nil
			}
		}
	}
	return model.ErrNotFound
}

func (m *memStore) CountClasses(ctx context.Context) (int64, error) {
	list, _ := m.ListInstructors(ctx, "", 0)
	var n int64
	for _, u := range list {
		n += int64(len(u.Classes))
	}
	return n, nil
}

func (m *memStore) Upsert(_ context.Context, b *model.Booking) (model.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.bookings {
		if sameClass(cur, b.StudentID, b.InstructorID, b.ClassID, b.ClassIndex) {
			b.ID = cur.ID
			cp := *b
			m.bookings[i] = &cp
			return model.UpsertResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	b.ID = m.nextID("b")
	cp := *b
	m.bookings = append(m.bookings, &cp)
	return model.UpsertResult{UpsertedCount: 1, UpsertedID: cp.ID}, nil
}

func (m *memStore) ListByStudent(_ context.Context, studentID string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.StudentID == studentID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) GetForStudent(_ context.Context, studentID, bookingID string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.StudentID == studentID && b.ID == bookingID {
			return b, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memStore) Delete(_ context.Context, studentID, instructorID, classID string, classIndex int) (int64, error) {
	return m.deleteWhere(func(b *model.Booking) bool {
		return b.InstructorID == instructorID && sameClass(b, studentID, instructorID, classID, classIndex)
	}), nil
}

func sameClass(b *model.Booking, studentID, instructorID, classID string, classIndex int) bool {
	if b.StudentID != studentID {
		return false
	}
	if classID != "" {
		return b.ClassID == classID
	}
	return b.ClassID == "" && b.InstructorID == instructorID && b.ClassIndex == classIndex
}

func (m *memStore) DeleteUnpaid(_ context.Context, studentID string) (int64, error) {
	return m.deleteWhere(func(b *model.Booking) bool {
		return b.StudentID == studentID && b.PaymentStatus == model.PaymentUnpaid
	}), nil
}

func (m *memStore) deleteWhere(match func(*model.Booking) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.bookings[:0]
	var n int64
	for _, b := range m.bookings {
		if match(b) {
			n++
			continue
		}
		kept = append(kept, b)
	}
	m.bookings = kept
	return n
}
