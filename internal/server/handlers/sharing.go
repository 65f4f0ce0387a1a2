package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/server/auth"
	"github.com/dmitrijs2005/famledger/internal/sharing"
	"github.com/gin-gonic/gin"
)

type shareRequest struct {
	Email string `json:"email" binding:"required"`
}

// shares returns the repository and the caller's uid. Principals only ever
// manage the grants on their own books; one working on books shared with
// them gets 403.
func (h *Handler) shares(c *gin.Context) (sharing.Repository, string, bool) {
	ctx := c.Request.Context()
	p, found := auth.PrincipalFrom(ctx)
	if !found {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return nil, "", false
	}
	repo := h.sessions.Shares()
	if repo == nil {
		fail(c, http.StatusNotImplemented, "sharing is disabled")
		return nil, "", false
	}

	s, err := h.sessions.Get(ctx, p.UserID, p.Email)
	if err != nil {
		h.logger.Error(ctx, "session unavailable", "principal", p.UserID, "error", err)
		fail(c, statusFor(err), messageFor(err, "not found"))
		return nil, "", false
	}
	if s.DataOwnerUID() != p.UserID {
		fail(c, http.StatusForbidden, "only the owner of the books can manage sharing")
		return nil, "", false
	}
	return repo, p.UserID, true
}

func (h *Handler) sharedEmails(c *gin.Context) {
	repo, uid, ok := h.shares(c)
	if !ok {
		return
	}
	emails, err := repo.GetSharedEmails(c.Request.Context(), uid)
	if err != nil {
		h.logger.Error(c.Request.Context(), "list shared e-mails failed", "owner_uid", uid, "error", err)
		fail(c, statusFor(err), messageFor(err, "not found"))
		return
	}
	okJSON(c, emails)
}

func (h *Handler) addSharedEmail(c *gin.Context) {
	var in shareRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	repo, uid, ok := h.shares(c)
	if !ok {
		return
	}
	email, err := sharing.NormalizeEmail(in.Email)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid e-mail address")
		return
	}
	if p, _ := auth.PrincipalFrom(c.Request.Context()); p.Email != "" && p.Email == email {
		fail(c, http.StatusBadRequest, "cannot share with yourself")
		return
	}

	if err := repo.AddSharedEmail(c.Request.Context(), uid, email); err != nil {
		h.logger.Error(c.Request.Context(), "share failed", "owner_uid", uid, "error", err)
		fail(c, statusFor(err), messageFor(err, "not found"))
		return
	}
	h.logger.Info(c.Request.Context(), "books shared", "owner_uid", uid, "email", email)
	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"email": email}})
}

func (h *Handler) removeSharedEmail(c *gin.Context) {
	repo, uid, ok := h.shares(c)
	if !ok {
		return
	}
	email, err := sharing.NormalizeEmail(c.Param("email"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid e-mail address")
		return
	}

	err = repo.RemoveSharedEmail(c.Request.Context(), uid, email)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		fail(c, http.StatusNotFound, "e-mail is not shared")
		return
	case err != nil:
		h.logger.Error(c.Request.Context(), "unshare failed", "owner_uid", uid, "error", err)
		fail(c, statusFor(err), messageFor(err, "not found"))
		return
	}
	okJSON(c, gin.H{"email": email})
}
