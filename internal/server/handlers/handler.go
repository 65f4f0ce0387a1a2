// Package handlers exposes the bookkeeping use cases over a JSON HTTP API
// built with gin. Every route under /api/v1 requires a bearer token; the
// books served are those of the token's principal or of the owner that
// shared them with the principal's e-mail.
package handlers

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/server/auth"
	"github.com/dmitrijs2005/famledger/internal/services"
	"github.com/dmitrijs2005/famledger/internal/session"
	"github.com/dmitrijs2005/famledger/internal/sharing"
	"github.com/gin-gonic/gin"
)

// Sessions hands out the session of the books a principal works on.
type Sessions interface {
	Get(ctx context.Context, principalUID, email string) (*session.Session, error)
	Shares() sharing.Repository
}

type Handler struct {
	sessions Sessions
	logger   logging.Logger
}

func New(sessions Sessions, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{sessions: sessions, logger: logger.With("component", "http")}
}

// services resolves the caller's use cases or writes the error reply.
func (h *Handler) services(c *gin.Context) (*services.Services, bool) {
	ctx := c.Request.Context()
	p, found := auth.PrincipalFrom(ctx)
	if !found {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	s, err := h.sessions.Get(ctx, p.UserID, p.Email)
	if err == nil {
		var svc *services.Services
		if svc, err = s.Services(); err == nil {
			return svc, true
		}
	}

	h.logger.Error(ctx, "session unavailable", "principal", p.UserID, "error", err)
	fail(c, statusFor(err), messageFor(err, "not found"))
	return nil, false
}

// crud is what the generic routes need from a service.
type crud[T models.Entity] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, id string) services.Result[services.None]
}

type updater[T models.Entity] interface {
	Update(ctx context.Context, entity T) services.Result[T]
}

func listAll[T models.Entity](h *Handler, pick func(*services.Services) crud[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, ok := h.services(c)
		if !ok {
			return
		}
		items, err := pick(svc).GetAll(c.Request.Context())
		if err != nil {
			fail(c, statusFor(err), messageFor(err, "not found"))
			return
		}
		if items == nil {
			items = []T{}
		}
		okJSON(c, items)
	}
}

func getOne[T models.Entity](h *Handler, pick func(*services.Services) crud[T], notFound string) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, ok := h.services(c)
		if !ok {
			return
		}
		item, err := pick(svc).GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, statusFor(err), messageFor(err, notFound))
			return
		}
		okJSON(c, item)
	}
}

func remove[T models.Entity](h *Handler, pick func(*services.Services) crud[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, ok := h.services(c)
		if !ok {
			return
		}
		reply(c, pick(svc).Delete(c.Request.Context(), c.Param("id")), http.StatusOK)
	}
}

// update decodes the whole entity; the id in the path wins over the body.
func update[T models.Entity](h *Handler, pick func(*services.Services) updater[T], setID func(*T, string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entity T
		if err := c.ShouldBindJSON(&entity); err != nil {
			fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
		setID(&entity, c.Param("id"))

		svc, ok := h.services(c)
		if !ok {
			return
		}
		reply(c, pick(svc).Update(c.Request.Context(), entity), http.StatusOK)
	}
}

// create decodes In and hands it to run.
func create[In any, T any](h *Handler, run func(ctx context.Context, svc *services.Services, in In) services.Result[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
		svc, ok := h.services(c)
		if !ok {
			return
		}
		reply(c, run(c.Request.Context(), svc, in), http.StatusCreated)
	}
}

func okJSON(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}
