package handler

import (
	"fmt"
	"net/http"

	"parley/internal/services"
	"parley/internal/transport/httpdto"
	parley_errors "parley/pkg/errors"

	"github.com/gin-gonic/gin"
)

// UserHandler handles account and session HTTP endpoints.
type UserHandler struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewUserHandler(auth *services.AuthService, users *services.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// SignUp creates an account and opens a session in one step.
func (h *UserHandler) SignUp(c *gin.Context) {
	var req httpdto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	u, token, err := h.auth.SignUp(c.Request.Context(), services.SignUpInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse("user created", httpdto.AuthResponse{
		Token: token,
		User:  httpdto.NewUserDTO(u),
	}))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	u, token, err := h.auth.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("logged in", httpdto.AuthResponse{
		Token: token,
		User:  httpdto.NewUserDTO(u),
	}))
}

// Logout revokes the session the request was authenticated with.
func (h *UserHandler) Logout(c *gin.Context) {
	sessionID, ok := services.SessionIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("not authenticated"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("logged out", nil))
}

func (h *UserHandler) Current(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("current user", httpdto.NewUserDTO(u)))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("user found", httpdto.NewUserDTO(u)))
}

func (h *UserHandler) UpdateUsername(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	var req httpdto.UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	u, err := h.users.UpdateUsername(c.Request.Context(), userID, req.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("username updated", httpdto.NewUserDTO(u)))
}

func (h *UserHandler) UpdateEmail(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	var req httpdto.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	u, err := h.users.UpdateEmail(c.Request.Context(), userID, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("email updated", httpdto.NewUserDTO(u)))
}

func (h *UserHandler) UpdatePhone(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	var req httpdto.UpdatePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	u, err := h.users.UpdatePhone(c.Request.Context(), userID, req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("phone updated", httpdto.NewUserDTO(u)))
}

// UpdatePassword requires the new password twice; a mismatch is rejected
// before any validation runs.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	var req httpdto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(c, fmt.Errorf("%w: passwords do not match", parley_errors.ErrInvalidInput))
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), userID, req.Password); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("password updated", nil))
}

func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	target, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), userID, target); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("user deleted", nil))
}
