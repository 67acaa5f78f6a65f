package service

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/course-booking/internal/model"
)

// CatalogService exposes the classes of all instructors as one flat
// catalog.
type CatalogService struct {
	users   UserStore
	classes ClassStore
}

func NewCatalogService(users UserStore, classes ClassStore) *CatalogService {
	return &CatalogService{users: users, classes: classes}
}

// ListClasses returns every class whose name contains search (ignoring
// case), in instructor order then class order.  limit <= 0 means no
// limit; the limit applies after filtering.
func (s *CatalogService) ListClasses(ctx context.Context, search string, limit int) ([]model.ClassView, error) {
	views, err := s.flatten(ctx, false)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.ClassView, 0, len(views))
	for _, v := range views {
		if needle != "" && !strings.Contains(strings.ToLower(v.Name), needle) {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *CatalogService) CountClasses(ctx context.Context) (int64, error) {
	return s.classes.CountClasses(ctx)
}

// TopClasses returns up to six classes with the most students.
func (s *CatalogService) TopClasses(ctx context.Context) ([]model.ClassView, error) {
	views, err := s.flatten(ctx, true)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].TotalStudent > views[j].TotalStudent })
	if len(views) > topLimit {
		views = views[:topLimit]
	}
	return views, nil
}

func (s *CatalogService) flatten(ctx context.Context, withImage bool) ([]model.ClassView, error) {
	instructors, err := s.users.ListInstructors(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	views := make([]model.ClassView, 0)
	for _, u := range instructors {
		for i, c := range u.Classes {
			v := model.ClassView{
				Class:          c,
				InstructorID:   u.ID,
				InstructorName: u.Name,
				ClassIndex:     i,
			}
			if withImage {
				v.InstructorImg = u.Image
			}
			views = append(views, v)
		}
	}
	return views, nil
}
