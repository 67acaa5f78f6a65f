package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/service"
	"github.com/iliyamo/course-booking/internal/utils"
)

// HeaderIssuerKey carries the shared key a trusted front end presents to
// POST /jwt.  The front end authenticates the person first and then asks
// this API for a token in their name.
const HeaderIssuerKey = "X-Issuer-Key"

// AuthHandler issues access tokens for registered users.
type AuthHandler struct {
	Users     *service.UserService
	Secret    string // HMAC signing secret
	IssuerKey string // required in HeaderIssuerKey
	TTLMin    int
}

func NewAuthHandler(users *service.UserService, secret, issuerKey string, ttlMin int) *AuthHandler {
	if users == nil {
		panic("nil user service passed to NewAuthHandler")
	}
	if issuerKey == "" {
		panic("empty issuer key passed to NewAuthHandler")
	}
	return &AuthHandler{Users: users, Secret: secret, IssuerKey: issuerKey, TTLMin: ttlMin}
}

type tokenBody struct {
	Email string `json:"email" validate:"required,email"`
}

// Token handles POST /jwt.  The caller must present the issuer key; the
// email alone proves nothing.  The token carries the user's email as
// subject and their stored role.
func (h *AuthHandler) Token(c echo.Context) error {
	key := c.Request().Header.Get(HeaderIssuerKey)
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.IssuerKey)) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid issuer key"})
	}
	var body tokenBody
	if err := bindAndValidate(c, &body); err != nil {
		return fail(c, err)
	}
	u, err := h.Users.GetUser(c.Request().Context(), body.Email)
	if err != nil {
		return fail(c, err)
	}
	tok, err := utils.NewAccessToken(h.Secret, u.Email, u.Role, h.TTLMin)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": tok.Token, "expiresAt": tok.Exp})
}
