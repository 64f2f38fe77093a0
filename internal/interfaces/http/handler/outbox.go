package handler

import (
	"context"

	"github.com/avocado/teamhub/internal/application/event"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OutboxHandler serves the staff-only outbox admin routes
type OutboxHandler struct {
	BaseHandler
	outboxService *event.OutboxService
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outboxService *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{outboxService: outboxService}
}

// RetryAllResponse reports how many dead entries were reset
type RetryAllResponse struct {
	Count int64 `json:"count"`
}

// List godoc
// @Summary      List outbox entries
// @Description  Staff only. Most recently touched first.
// @Tags         outbox
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "PENDING, PROCESSING, SENT, FAILED or DEAD"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=event.OutboxListResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /system/outbox [get]
func (h *OutboxHandler) List(c *gin.Context) {
	h.list(c, h.outboxService.List)
}

// DeadLetters godoc
// @Summary      List dead letters
// @Description  Staff only.
// @Tags         outbox
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=event.OutboxListResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /system/outbox/dead [get]
func (h *OutboxHandler) DeadLetters(c *gin.Context) {
	h.list(c, h.outboxService.DeadLetters)
}

func (h *OutboxHandler) list(c *gin.Context, fetch func(context.Context, event.OutboxFilter) (*event.OutboxListResult, error)) {
	var filter event.OutboxFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := fetch(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Entry godoc
// @Summary      Get an outbox entry
// @Description  Staff only.
// @Tags         outbox
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=event.OutboxEntryDTO}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /system/outbox/{id} [get]
func (h *OutboxHandler) Entry(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}

	entry, err := h.outboxService.Entry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// Retry godoc
// @Summary      Requeue an outbox entry
// @Description  Staff only. Only failed or dead entries can be retried.
// @Tags         outbox
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=event.OutboxEntryDTO}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /system/outbox/{id}/retry [post]
func (h *OutboxHandler) Retry(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}

	entry, err := h.outboxService.Retry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// RetryAll godoc
// @Summary      Requeue every dead letter
// @Description  Staff only.
// @Tags         outbox
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=RetryAllResponse}
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /system/outbox/dead/retry-all [post]
func (h *OutboxHandler) RetryAll(c *gin.Context) {
	count, err := h.outboxService.RetryAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RetryAllResponse{Count: count})
}

// Stats godoc
// @Summary      Outbox counts per status
// @Description  Staff only.
// @Tags         outbox
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=event.OutboxStatsDTO}
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /system/outbox/stats [get]
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.outboxService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

func (h *OutboxHandler) entryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return uuid.Nil, false
	}
	return id, true
}
