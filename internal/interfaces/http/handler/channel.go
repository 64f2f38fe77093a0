package handler

import (
	"github.com/avocado/teamhub/internal/application/channel"
	"github.com/gin-gonic/gin"
)

// ChannelHandler serves the chat REST API
type ChannelHandler struct {
	BaseHandler
	channelService *channel.ChannelService
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(channelService *channel.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// ListChannelsQuery filters the channel list
type ListChannelsQuery struct {
	Zid       string `form:"zid"`
	ChannelID int64  `form:"channelId" binding:"omitempty,min=1"`
}

// CreateChannelRequest creates a channel; created_by defaults to the caller
type CreateChannelRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	CreatedBy string `json:"created_by"`
	IsPrivate bool   `json:"is_private"`
	GroupID   *int64 `json:"group_id" binding:"omitempty,min=1"`
}

// PostMessageRequest is a chat message; sender_zid defaults to the caller
type PostMessageRequest struct {
	SenderZid string `json:"sender_zid"`
	Content   string `json:"content" binding:"required"`
}

// AddMemberRequest names the user joining a channel
type AddMemberRequest struct {
	Zid string `json:"zid" binding:"required"`
}

// List godoc
// @Summary      List channels
// @Description  Served by the chat server. Filters by member zid or a single channel.
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Param        zid query string false "Member zid"
// @Param        channelId query int false "Channel ID"
// @Success      200 {object} dto.Response{data=[]channel.ChannelInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels [get]
func (h *ChannelHandler) List(c *gin.Context) {
	var q ListChannelsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	channels, err := h.channelService.List(c.Request.Context(), q.Zid, q.ChannelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, channels)
}

// Create godoc
// @Summary      Create a channel
// @Description  Served by the chat server. created_by defaults to the caller, who becomes the first member.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateChannelRequest true "Channel"
// @Success      201 {object} dto.Response{data=channel.ChannelInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels [post]
func (h *ChannelHandler) Create(c *gin.Context) {
	var req CreateChannelRequest
	if !h.BindJSON(c, &req) {
		return
	}
	creator, ok := h.ActingAs(c, req.CreatedBy)
	if !ok {
		return
	}

	info, err := h.channelService.Create(c.Request.Context(), channel.CreateChannelInput{
		Name:      req.Name,
		CreatedBy: creator,
		IsPrivate: req.IsPrivate,
		GroupID:   req.GroupID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// Delete godoc
// @Summary      Delete a channel
// @Description  Served by the chat server. Messages and members go in the same transaction.
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Channel ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels/{id} [delete]
func (h *ChannelHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.channelService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Channel deleted")
}

// Messages godoc
// @Summary      Messages of a channel
// @Description  Served by the chat server. Ordered by sent_at.
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Channel ID"
// @Success      200 {object} dto.Response{data=[]object}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels/{id}/messages [get]
func (h *ChannelHandler) Messages(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	messages, err := h.channelService.Messages(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, messages)
}

// PostMessage godoc
// @Summary      Post a message
// @Description  Served by the chat server. The message is broadcast to the channel room. Mentioning @assistant requests a reply.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Channel ID"
// @Param        request body PostMessageRequest true "Message"
// @Success      201 {object} dto.Response{data=object}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels/{id}/messages [post]
func (h *ChannelHandler) PostMessage(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req PostMessageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sender, ok := h.ActingAs(c, req.SenderZid)
	if !ok {
		return
	}

	msg, err := h.channelService.PostMessage(c.Request.Context(), id, sender, req.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// Members godoc
// @Summary      Members of a channel
// @Description  Served by the chat server.
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Channel ID"
// @Success      200 {object} dto.Response{data=[]channel.MemberInfo}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels/{id}/members [get]
func (h *ChannelHandler) Members(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	members, err := h.channelService.Members(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// AddMember godoc
// @Summary      Add a channel member
// @Description  Served by the chat server.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Channel ID"
// @Param        request body AddMemberRequest true "Member"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels/{id}/members [post]
func (h *ChannelHandler) AddMember(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.channelService.AddMember(c.Request.Context(), id, req.Zid); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"channel_id": id, "zid": req.Zid})
}

// RemoveMember godoc
// @Summary      Remove a channel member
// @Description  Served by the chat server.
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Channel ID"
// @Param        zid path string true "Member zid"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/channels/{id}/members/{zid} [delete]
func (h *ChannelHandler) RemoveMember(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.channelService.RemoveMember(c.Request.Context(), id, c.Param("zid")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Member removed")
}
