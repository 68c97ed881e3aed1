package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

const maxAvatarUploadBytes = 8 << 20

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	user, err := uh.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

func (uh *UserHandler) UpdateTheme(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var req struct {
		Theme string `json:"theme"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	if err := uh.userService.UpdateTheme(c.Request.Context(), userID, req.Theme); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_THEME", err)
		return
	}
	response.OK(c, gin.H{"theme": req.Theme})
}

func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_UPLOAD", fmt.Errorf("avatar file is required"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxAvatarUploadBytes))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_UPLOAD", err)
		return
	}
	user, err := uh.userService.UpdateAvatarFromImage(c.Request.Context(), userID, raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
