package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/model"
	"github.com/iliyamo/course-booking/internal/service"
)

// InstructorHandler serves instructor listings, the seat counter and
// class management of one instructor.
type InstructorHandler struct {
	Users *service.UserService
}

func NewInstructorHandler(users *service.UserService) *InstructorHandler {
	if users == nil {
		panic("nil user service passed to NewInstructorHandler")
	}
	return &InstructorHandler{Users: users}
}

// List handles GET /instructors?search=&count=.
func (h *InstructorHandler) List(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.Users.ListInstructors(c.Request().Context(), c.QueryParam("search"), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Total handles GET /instructors/total.
func (h *InstructorHandler) Total(c echo.Context) error {
	n, err := h.Users.CountInstructors(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"totalInstructors": n})
}

// Top handles GET /instructors/top.
func (h *InstructorHandler) Top(c echo.Context) error {
	top, err := h.Users.TopInstructors(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, top)
}

// Get handles GET /instructor/:id.
func (h *InstructorHandler) Get(c echo.Context) error {
	u, err := h.Users.GetInstructor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

type seatCountBody struct {
	InstructorID string `json:"instructorId" validate:"required"`
	ClassID      string `json:"classId"`    // preferred
	ClassIndex   *int   `json:"classIndex"` // position, for classes without an id
}

// UpdateStudentCount handles PUT /instructor/updateStudentCount.  The
// class is addressed by classId or by its classIndex.
func (h *InstructorHandler) UpdateStudentCount(c echo.Context) error {
	var body seatCountBody
	if err := bindAndValidate(c, &body); err != nil {
		return fail(c, err)
	}
	err := h.Users.IncrementSeatCount(c.Request().Context(), model.ClassRef{
		InstructorID: body.InstructorID,
		ClassID:      body.ClassID,
		ClassIndex:   body.ClassIndex,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, model.UpsertResult{MatchedCount: 1, ModifiedCount: 1})
}

type classBody struct {
	Name        string  `json:"name" validate:"required"`
	Image       string  `json:"image"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
}

// AddClass handles POST /instructor/:id/classes.  The class is appended
// to the instructor's list and gets a generated id; its position is
// returned as classIndex for clients that still address classes by index.
func (h *InstructorHandler) AddClass(c echo.Context) error {
	if err := requireOwner(c, h.Users, c.Param("id")); err != nil {
		return fail(c, err)
	}
	var body classBody
	if err := bindAndValidate(c, &body); err != nil {
		return fail(c, err)
	}
	class, err := h.Users.AddClass(c.Request().Context(), c.Param("id"), model.Class{
		Name:        body.Name,
		Image:       body.Image,
		Price:       body.Price,
		Description: body.Description,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"class": class, "classIndex": class.Position})
}

// ImportClasses handles POST /instructor/:id/classes/import with an
// xlsx workbook in the multipart field "file".
func (h *InstructorHandler) ImportClasses(c echo.Context) error {
	if err := requireOwner(c, h.Users, c.Param("id")); err != nil {
		return fail(c, err) // checked before the upload is read
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "multipart field \"file\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "cannot open uploaded file")
	}
	defer f.Close() // multipart temp file

	res, err := h.Users.ImportClasses(c.Request().Context(), c.Param("id"), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
