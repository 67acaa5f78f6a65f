package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/model"
	"github.com/iliyamo/course-booking/internal/service"
)

// UserHandler serves profile reads and writes keyed by email.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	if users == nil {
		panic("nil user service passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

// userBody is the profile payload of PUT /users/:email.  An email in the
// body is ignored; the path is the key.
type userBody struct {
	Name      string `json:"name"`
	Image     string `json:"image"`
	Gender    string `json:"gender"`
	ContactNo string `json:"contactNo"`
	Address   string `json:"address"`
	Role      string `json:"role"`  // instructor or student, any case
	Quote     string `json:"quote"` // instructors only, free text
}

// Upsert handles PUT /users/:email.  Only fields present in the body are
// written, so a partial profile never blanks the rest.  With auth enabled
// the token subject must be the email in the path.
func (h *UserHandler) Upsert(c echo.Context) error {
	if err := requireSelf(c, c.Param("email")); err != nil {
		return fail(c, err) // 403 for someone else's profile
	}
	var body userBody
	if err := bindAndValidate(c, &body); err != nil {
		return fail(c, err)
	}
	res, err := h.Users.UpsertUser(c.Request().Context(), c.Param("email"), model.UserPatch{
		Name:      body.Name,
		Image:     body.Image,
		Gender:    body.Gender,
		ContactNo: body.ContactNo,
		Address:   body.Address,
		Role:      body.Role,
		Quote:     body.Quote,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Get handles GET /users/:email.
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.Users.GetUser(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
