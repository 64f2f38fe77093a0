package event

import (
	"context"
	"fmt"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// EventNewMessage is the websocket event carrying a stored message
const EventNewMessage = "new_message"

// Broadcaster pushes an event to every client in a room
type Broadcaster interface {
	Broadcast(ctx context.Context, room, event string, data any) error
}

// AssistantReplier answers a message that mentioned the assistant
type AssistantReplier interface {
	ReplyToMention(ctx context.Context, channelID, messageID int64, question string) (*channel.Message, error)
}

// Recorder receives event counters
type Recorder interface {
	RecordEventHandled(ctx context.Context, eventType, outcome string, occurredAt time.Time)
	RecordRegistration(ctx context.Context, courseCode string, newGroup bool)
	RecordMessagePosted(ctx context.Context)
	RecordMeetingCompleted(ctx context.Context, automatic bool)
}

func unexpected(logger *zap.Logger, expected string, event shared.DomainEvent) error {
	logger.Error("unexpected event type",
		zap.String("expected", expected),
		zap.String("actual", event.EventType()))
	return fmt.Errorf("unexpected event type: expected %s, got %s", expected, event.EventType())
}

// LookupInvalidationHandler drops cached lookup lists made stale by an event
type LookupInvalidationHandler struct {
	cache  appshared.LookupCache
	logger *zap.Logger
}

// NewLookupInvalidationHandler creates a new LookupInvalidationHandler
func NewLookupInvalidationHandler(cache appshared.LookupCache, logger *zap.Logger) *LookupInvalidationHandler {
	return &LookupInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LookupInvalidationHandler) EventTypes() []string {
	return []string{identity.EventTypeUserRegistered}
}

// Handle invalidates the group list when registration created a group
func (h *LookupInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	registered, ok := event.(*identity.UserRegisteredEvent)
	if !ok {
		return unexpected(h.logger, identity.EventTypeUserRegistered, event)
	}
	if !registered.NewGroup || h.cache == nil {
		return nil
	}
	if err := h.cache.Invalidate(ctx, appshared.LookupGroups); err != nil {
		return fmt.Errorf("invalidate groups lookup: %w", err)
	}
	h.logger.Debug("groups lookup invalidated", zap.Int64("group_id", registered.GroupID))
	return nil
}

// ChatBroadcastHandler pushes stored messages to the channel room
type ChatBroadcastHandler struct {
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewChatBroadcastHandler creates a new ChatBroadcastHandler
func NewChatBroadcastHandler(broadcaster Broadcaster, logger *zap.Logger) *ChatBroadcastHandler {
	return &ChatBroadcastHandler{broadcaster: broadcaster, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ChatBroadcastHandler) EventTypes() []string {
	return []string{channel.EventTypeMessagePosted}
}

// Handle broadcasts new_message {message} to channel_{id}
func (h *ChatBroadcastHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	posted, ok := event.(*channel.MessagePostedEvent)
	if !ok {
		return unexpected(h.logger, channel.EventTypeMessagePosted, event)
	}
	msg := posted.Message()
	room := channel.RoomName(msg.ChannelID)
	if err := h.broadcaster.Broadcast(ctx, room, EventNewMessage, map[string]any{"message": msg}); err != nil {
		return fmt.Errorf("broadcast to %s: %w", room, err)
	}
	return nil
}

// AssistantReplyHandler answers @assistant mentions. Wrap it in the
// idempotent handler so a redelivered event does not reply twice.
type AssistantReplyHandler struct {
	replier AssistantReplier
	logger  *zap.Logger
}

// NewAssistantReplyHandler creates a new AssistantReplyHandler
func NewAssistantReplyHandler(replier AssistantReplier, logger *zap.Logger) *AssistantReplyHandler {
	return &AssistantReplyHandler{replier: replier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AssistantReplyHandler) EventTypes() []string {
	return []string{channel.EventTypeAssistantMentioned}
}

// Handle stores the assistant's answer; its MessagePosted event delivers it
func (h *AssistantReplyHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	mentioned, ok := event.(*channel.AssistantMentionedEvent)
	if !ok {
		return unexpected(h.logger, channel.EventTypeAssistantMentioned, event)
	}
	reply, err := h.replier.ReplyToMention(ctx, mentioned.ChannelID, mentioned.MessageID, mentioned.Question)
	if err != nil {
		return err
	}
	h.logger.Debug("assistant reply stored",
		zap.Int64("channel_id", mentioned.ChannelID),
		zap.Int64("question_id", mentioned.MessageID),
		zap.Int64("reply_id", reply.ID))
	return nil
}

// ActivityLogHandler writes every event to the activity log
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new ActivityLogHandler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger.Named("activity")}
}

// EventTypes subscribes to all events
func (h *ActivityLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event identity
func (h *ActivityLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()))
	return nil
}

// MetricsHandler turns events into telemetry counters
type MetricsHandler struct {
	recorder Recorder
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(recorder Recorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// EventTypes subscribes to all events
func (h *MetricsHandler) EventTypes() []string {
	return nil
}

// Handle records the event and any domain counter it maps to
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *identity.UserRegisteredEvent:
		h.recorder.RecordRegistration(ctx, e.CourseCode, e.NewGroup)
	case *channel.MessagePostedEvent:
		if !e.IsAIResponse {
			h.recorder.RecordMessagePosted(ctx)
		}
	case *meeting.MeetingCompletedEvent:
		h.recorder.RecordMeetingCompleted(ctx, e.Automatic)
	}
	h.recorder.RecordEventHandled(ctx, event.EventType(), "delivered", event.OccurredAt())
	return nil
}

var (
	_ shared.EventHandler = (*LookupInvalidationHandler)(nil)
	_ shared.EventHandler = (*ChatBroadcastHandler)(nil)
	_ shared.EventHandler = (*AssistantReplyHandler)(nil)
	_ shared.EventHandler = (*ActivityLogHandler)(nil)
	_ shared.EventHandler = (*MetricsHandler)(nil)
)
