package handler

import (
	"net/http"

	"github.com/avocado/teamhub/internal/application/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration and session HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	userService *identity.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, userService *identity.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// RegisterRequest is the self-registration body. The booleans are pointers
// so an explicit false still counts as present.
type RegisterRequest struct {
	Zid        string `json:"zid" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RoleID     *int64 `json:"role_id" binding:"required"`
	CourseCode string `json:"course_code" binding:"required"`
	IsLeader   *bool  `json:"is_leader" binding:"required"`
	IsNewGroup *bool  `json:"is_new_group" binding:"required"`
	GroupName  string `json:"group_name"`
	GroupID    *int64 `json:"group_id"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse keeps user and token at the top level of the envelope
type LoginResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	User    identity.LoginUser   `json:"user"`
	Token   identity.TokenResult `json:"token"`
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register godoc
// @Summary      Register a student
// @Description  Creates the user and creates or joins a group in one transaction. Only the student role can self-register.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} dto.Response{data=identity.RegisterResult}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.userService.Register(c.Request.Context(), identity.RegisterInput{
		Zid:        req.Zid,
		Name:       req.Name,
		Password:   req.Password,
		RoleID:     *req.RoleID,
		CourseCode: req.CourseCode,
		IsLeader:   *req.IsLeader,
		IsNewGroup: *req.IsNewGroup,
		GroupName:  req.GroupName,
		GroupID:    req.GroupID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Login godoc
// @Summary      User login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Status:  dto.StatusSuccess,
		Message: "success",
		User:    result.User,
		Token:   result.Token,
	})
}

// Refresh godoc
// @Summary      Rotate the token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identity.TokenResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, token)
}

// Me godoc
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}

	current, err := h.authService.Me(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, current)
}

// Logout godoc
// @Summary      Revoke the access token
// @Description  The token stays revoked until it would have expired.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.TokenClaims(c)
	if claims == nil {
		h.Fail(c, http.StatusUnauthorized, shared.CodeUnauthorized, "Authentication required")
		return
	}

	err := h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		TokenID:   claims.ID,
		ExpiresAt: claims.Expiry(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, "Logged out")
}
