package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"skillup-tracker/internal/model"
)

// UserFinder loads a local user by id.
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

type ProfileHandler struct {
	users UserFinder
}

func NewProfileHandler(users UserFinder) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Profile returns the caller's local user record
// GET /api/auth/profile/
func (h *ProfileHandler) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, Unauthorized("missing or invalid authentication"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, NotFound("user"))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(*user))
}
