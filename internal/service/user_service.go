package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/course-booking/internal/metrics"
	"github.com/iliyamo/course-booking/internal/model"
)

// topLimit is the size of the "top" leaderboards.
const topLimit = 6

var validate = validator.New()

// UserService manages user profiles, instructor lookups and the classes
// an instructor owns.
type UserService struct {
	users   UserStore
	classes ClassStore
	log     echo.Logger
	newID   func() string
}

func NewUserService(users UserStore, classes ClassStore, logger echo.Logger) *UserService {
	return &UserService{users: users, classes: classes, log: logger, newID: uuid.NewString}
}

// TopInstructors is the response of the instructor leaderboard.  All
// holds every instructor in ranking order, Top the first six of them.
type TopInstructors struct {
	Top []model.InstructorStats `json:"topInstructors"`
	All []model.InstructorStats `json:"instructorsWithTotalStudents"`
}

// UpsertUser merges the supplied profile fields into the user with the
// given email, creating the user when absent.
func (s *UserService) UpsertUser(ctx context.Context, email string, patch model.UserPatch) (model.UpsertResult, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return model.UpsertResult{}, fmt.Errorf("%w: invalid email %q", model.ErrValidation, email)
	}
	if patch.Role != "" {
		role, ok := model.NormalizeRole(patch.Role)
		if !ok {
			return model.UpsertResult{}, fmt.Errorf("%w: role must be instructor or student", model.ErrValidation)
		}
		patch.Role = role
	}
	return s.users.UpsertByEmail(ctx, email, patch)
}

func (s *UserService) GetUser(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(email))
}

// GetUserByID returns any user, student or instructor, by id.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, strings.TrimSpace(id))
}

func (s *UserService) ListInstructors(ctx context.Context, search string, limit int) ([]*model.User, error) {
	out, err := s.users.ListInstructors(ctx, strings.TrimSpace(search), limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.User{}
	}
	return out, nil
}

func (s *UserService) CountInstructors(ctx context.Context) (int64, error) {
	return s.users.CountInstructors(ctx)
}

func (s *UserService) GetInstructor(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetInstructor(ctx, id)
}

// TopInstructors ranks every instructor by the total number of students
// across their classes.  Ties keep store order.
func (s *UserService) TopInstructors(ctx context.Context) (TopInstructors, error) {
	list, err := s.users.ListInstructors(ctx, "", 0)
	if err != nil {
		return TopInstructors{}, err
	}
	all := make([]model.InstructorStats, 0, len(list))
	for _, u := range list {
		all = append(all, model.InstructorStats{User: u, TotalStudents: u.TotalStudents()})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].TotalStudents > all[j].TotalStudents })
	top := all
	if len(top) > topLimit {
		top = top[:topLimit]
	}
	return TopInstructors{Top: top, All: all}, nil
}

// IncrementSeatCount records one more student on the referenced class.
// The class is resolved against the instructor's current list and then
// incremented with a single atomic store write.
func (s *UserService) IncrementSeatCount(ctx context.Context, ref model.ClassRef) error {
	if ref.InstructorID == "" {
		return fmt.Errorf("%w: instructorId is required", model.ErrValidation)
	}
	if ref.ClassID == "" && ref.ClassIndex == nil {
		return fmt.Errorf("%w: classId or classIndex is required", model.ErrValidation)
	}
	instructor, err := s.users.GetInstructor(ctx, ref.InstructorID)
	if err != nil {
		return err
	}
	class, idx, ok := ref.Resolve(instructor.Classes)
	if !ok {
		return fmt.Errorf("class: %w", model.ErrNotFound)
	}
	if err := s.classes.IncrementStudents(ctx, instructor.ID, class.ID, idx); err != nil {
		return err
	}
	metrics.SeatIncrements.Inc()
	s.log.Debugj(log.JSON{"event": "seat_increment", "instructor_id": instructor.ID, "class_id": class.ID, "class_index": idx})
	return nil
}

// AddClass appends a new class to an instructor's list with a fresh id.
func (s *UserService) AddClass(ctx context.Context, instructorID string, c model.Class) (*model.Class, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, fmt.Errorf("%w: class name is required", model.ErrValidation)
	}
	if c.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", model.ErrValidation)
	}
	c.ID = s.newID()
	c.TotalStudent = 0
	if err := s.classes.AddClass(ctx, instructorID, &c); err != nil {
		return nil, err
	}
	s.log.Infoj(log.JSON{"event": "class_added", "instructor_id": instructorID, "class_id": c.ID, "position": c.Position})
	return &c, nil
}
