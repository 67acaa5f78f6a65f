package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/course-booking/internal/model"
)

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	ImportedCount int `json:"importedCount"`
	Skipped       int `json:"skipped"`
}

// ImportClasses reads classes from the first sheet of an xlsx workbook
// and appends each one to the instructor's list.  The first row is a
// header.  Columns are name, price, image and description; rows without
// a name or with an unparsable price are skipped.
func (s *UserService) ImportClasses(ctx context.Context, instructorID string, r io.Reader) (ImportResult, error) {
	// fail fast on a bad instructor before touching the workbook
	if _, err := s.users.GetInstructor(ctx, instructorID); err != nil {
		return ImportResult{}, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: cannot read workbook: %v", model.ErrValidation, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return ImportResult{}, fmt.Errorf("%w: workbook has no sheets", model.ErrValidation)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: cannot read sheet %q: %v", model.ErrValidation, sheet, err)
	}

	var res ImportResult
	for i, row := range rows {
		if i == 0 {
			continue
		}
		c, ok := classFromRow(row)
		if !ok {
			res.Skipped++
			continue
		}
		if _, err := s.AddClass(ctx, instructorID, c); err != nil {
			if errors.Is(err, model.ErrValidation) {
				res.Skipped++
				continue
			}
			return res, err
		}
		res.ImportedCount++
	}
	s.log.Infoj(log.JSON{"event": "classes_imported", "instructor_id": instructorID,
		"imported": res.ImportedCount, "skipped": res.Skipped})
	return res, nil
}

func classFromRow(row []string) (model.Class, bool) {
	if len(row) < 2 {
		return model.Class{}, false
	}
	name := strings.TrimSpace(row[0])
	if name == "" {
		return model.Class{}, false
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil || price < 0 {
		return model.Class{}, false
	}
	return model.Class{
		Name:        name,
		Price:       price,
		Image:       cell(row, 2),
		Description: cell(row, 3),
	}, true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
