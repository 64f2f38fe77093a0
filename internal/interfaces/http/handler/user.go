package handler

import (
	"net/http"

	"github.com/avocado/teamhub/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the user and role lookups
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
	roleService *identity.RoleService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService, roleService *identity.RoleService) *UserHandler {
	return &UserHandler{
		userService: userService,
		roleService: roleService,
	}
}

// ZidQuery selects a user by zid
type ZidQuery struct {
	Zid string `form:"zid" binding:"required"`
}

// Username godoc
// @Summary      Display name of a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        zid query string true "User zid"
// @Success      200 {object} map[string]string
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /username [get]
func (h *UserHandler) Username(c *gin.Context) {
	var q ZidQuery
	if !h.BindQuery(c, &q) {
		return
	}

	name, err := h.userService.Username(c.Request.Context(), q.Zid)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name})
}

// UserRole godoc
// @Summary      Role rows of a user
// @Description  An unknown zid has no rows.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        zid query string true "User zid"
// @Success      200 {array} identity.RoleRef
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /user-role [get]
func (h *UserHandler) UserRole(c *gin.Context) {
	var q ZidQuery
	if !h.BindQuery(c, &q) {
		return
	}

	roles, err := h.userService.UserRole(c.Request.Context(), q.Zid)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, roles)
}

// Tutors godoc
// @Summary      List tutors
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} identity.TutorInfo
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /tutors [get]
func (h *UserHandler) Tutors(c *gin.Context) {
	tutors, err := h.userService.Tutors(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tutors)
}

// Roles godoc
// @Summary      List roles
// @Description  The body is always an array.
// @Tags         users
// @Produce      json
// @Success      200 {array} identity.RoleInfo
// @Failure      500 {object} dto.Response
// @Router       /roles [get]
func (h *UserHandler) Roles(c *gin.Context) {
	roles, err := h.roleService.Roles(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, roles)
}
