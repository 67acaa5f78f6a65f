// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/handler"
	"github.com/iliyamo/course-booking/internal/metrics"
	"github.com/iliyamo/course-booking/internal/middleware"
	"github.com/iliyamo/course-booking/internal/model"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Users       *handler.UserHandler
	Instructors *handler.InstructorHandler
	Catalog     *handler.CatalogHandler
	Bookings    *handler.BookingHandler
	Payments    *handler.PaymentHandler
	Auth        *handler.AuthHandler // nil when no JWT secret is configured
}

// Options carry the cross-cutting middleware settings.
type Options struct {
	AppName     string
	Port        string
	AuthEnabled bool
	JWTSecret   string
	Cache       echo.MiddlewareFunc // applied to catalog reads
	RateLimit   echo.MiddlewareFunc // applied to every API route
}

// RegisterRoutes mounts the API on e.
//
// Reads are public, as they have always been.  When auth is enabled every
// write requires a bearer access token; the handlers then compare the
// token subject with the owner of the student, instructor or profile the
// request touches and answer 403 on a mismatch.  Class management also
// requires the instructor role.  POST /jwt is mounted only when an
// AuthHandler is supplied, and that handler demands the issuer key.
//
// Every API route passes through the rate limiter when one is configured;
// the catalog listings are additionally served through the Redis cache.
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	cache := opt.Cache
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next } // no Redis, no cache
	}
	auth := middleware.JWTAuth(opt.JWTSecret, opt.AuthEnabled)                      // no-op when auth is off
	instructorOnly := middleware.RequireRole(opt.AuthEnabled, model.RoleInstructor) // role claim check

	// Liveness, health and metrics endpoints bypass the limiter.
	e.GET("/", handler.Liveness(opt.AppName, opt.Port))
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// with limits the route with the rate limiter first, then extra.
	with := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		out := make([]echo.MiddlewareFunc, 0, len(extra)+1)
		if opt.RateLimit != nil {
			out = append(out, opt.RateLimit)
		}
		return append(out, extra...)
	}

	// Token issuance for trusted front ends holding the issuer key.
	if h.Auth != nil {
		e.POST("/jwt", h.Auth.Token, with()...)
	}

	// Profiles are keyed by email; only the owner may write one.
	e.PUT("/users/:email", h.Users.Upsert, with(auth)...)
	e.GET("/users/:email", h.Users.Get, with()...)

	// Instructor listings are cached; a single instructor is read fresh.
	e.GET("/instructors", h.Instructors.List, with(cache)...)
	e.GET("/instructors/total", h.Instructors.Total, with(cache)...)
	e.GET("/instructors/top", h.Instructors.Top, with(cache)...)
	e.GET("/instructor/:id", h.Instructors.Get, with()...)
	// Any signed in user may bump a seat count, as students do after booking.
	e.PUT("/instructor/updateStudentCount", h.Instructors.UpdateStudentCount, with(auth)...)
	// Class management is limited to the instructor named by :id.
	e.POST("/instructor/:id/classes", h.Instructors.AddClass, with(auth, instructorOnly)...)
	e.POST("/instructor/:id/classes/import", h.Instructors.ImportClasses, with(auth, instructorOnly)...)

	// The flattened class catalog.
	e.GET("/classes", h.Catalog.List, with(cache)...)
	e.GET("/classes/total", h.Catalog.Total, with(cache)...)
	e.GET("/classes/top", h.Catalog.Top, with(cache)...)

	// Bookings: reads by student id are public, writes belong to the student.
	e.PUT("/book-class", h.Bookings.Book, with(auth)...)
	e.GET("/book-class/:studentId", h.Bookings.List, with()...)
	e.GET("/book-class/:studentId/:itemId", h.Bookings.Get, with()...)
	e.DELETE("/book-class/:studentId", h.Bookings.Delete, with(auth)...)
	e.DELETE("/booking/:studentId", h.Bookings.PurgeUnpaid, with(auth)...)

	// Payment intents are created for the signed in user's checkout.
	e.POST("/create-payment-intent", h.Payments.CreateIntent, with(auth)...)
}
