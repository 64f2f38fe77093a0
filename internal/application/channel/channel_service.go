// Package channel contains the chat application service used by both the
// REST handlers and the websocket server.
package channel

import (
	"context"
	"errors"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

const msgChannelNotFound = "Channel not found"

// ChannelService manages channels, memberships and messages
type ChannelService struct {
	txScope   appshared.TransactionScope
	channels  channel.ChannelRepository
	members   channel.MemberRepository
	messages  channel.MessageRepository
	completer shared.Completer
	opts      Options
	recorder  AssistantRecorder
	logger    *zap.Logger
}

// AssistantRecorder observes assistant replies
type AssistantRecorder interface {
	RecordAssistantReply(ctx context.Context, outcome string, latency time.Duration)
}

// NewChannelService creates a new channel service
func NewChannelService(
	txScope appshared.TransactionScope,
	channels channel.ChannelRepository,
	members channel.MemberRepository,
	messages channel.MessageRepository,
	completer shared.Completer,
	opts Options,
	logger *zap.Logger,
) *ChannelService {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = channel.DefaultMaxContentLength
	}
	if opts.AssistantContext <= 0 {
		opts.AssistantContext = channel.DefaultAssistantContext
	}
	return &ChannelService{
		txScope:   txScope,
		channels:  channels,
		members:   members,
		messages:  messages,
		completer: completer,
		opts:      opts,
		logger:    logger,
	}
}

// SetRecorder sets the assistant reply recorder
func (s *ChannelService) SetRecorder(recorder AssistantRecorder) {
	s.recorder = recorder
}

// List returns channels. A zid restricts the result to that user's
// memberships and a channel id to that single channel.
func (s *ChannelService) List(ctx context.Context, zid string, channelID int64) ([]ChannelInfo, error) {
	if channelID > 0 {
		c, err := s.channels.FindByID(ctx, channelID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return []ChannelInfo{}, nil
			}
			return nil, appshared.Internal(s.logger, "Failed to load channel", err, zap.Int64("channel_id", channelID))
		}
		if zid != "" {
			ok, err := s.members.IsMember(ctx, channelID, zid)
			if err != nil {
				return nil, appshared.Internal(s.logger, "Failed to check membership", err)
			}
			if !ok {
				return []ChannelInfo{}, nil
			}
		}
		return []ChannelInfo{toChannelInfo(c)}, nil
	}

	var (
		rows []channel.Channel
		err  error
	)
	if zid != "" {
		rows, err = s.channels.FindByMember(ctx, zid)
	} else {
		rows, err = s.channels.FindAll(ctx)
	}
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list channels", err, zap.String("zid", zid))
	}
	return toChannelInfos(rows), nil
}

// Create stores the channel and makes the creator its first member
func (s *ChannelService) Create(ctx context.Context, input CreateChannelInput) (*ChannelInfo, error) {
	c, err := channel.NewChannel(input.Name, input.CreatedBy, input.IsPrivate, input.GroupID)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		if err := repos.Channels().Create(ctx, c); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.ErrAlreadyExists.WithMessage("Channel name already exists")
			}
			return err
		}
		return repos.ChannelMembers().Add(ctx, &channel.Member{ChannelID: c.ID, Zid: c.CreatedBy, JoinedAt: c.CreatedAt})
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to create channel", err, zap.String("name", c.Name))
	}

	s.logger.Info("Channel created", zap.Int64("channel_id", c.ID), zap.String("created_by", c.CreatedBy))
	info := toChannelInfo(c)
	return &info, nil
}

// Delete removes the channel with its messages and members
func (s *ChannelService) Delete(ctx context.Context, channelID int64) error {
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		if err := repos.Channels().Delete(ctx, channelID); err != nil {
			return appshared.NotFound(s.logger, err, msgChannelNotFound)
		}
		return nil
	})
	if err != nil {
		return appshared.Internal(s.logger, "Failed to delete channel", err, zap.Int64("channel_id", channelID))
	}
	s.logger.Info("Channel deleted", zap.Int64("channel_id", channelID))
	return nil
}

// Messages returns the channel history ordered by sent_at
func (s *ChannelService) Messages(ctx context.Context, channelID int64) ([]channel.Message, error) {
	if err := s.ensureChannel(ctx, channelID); err != nil {
		return nil, err
	}
	rows, err := s.messages.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list messages", err, zap.Int64("channel_id", channelID))
	}
	if rows == nil {
		rows = []channel.Message{}
	}
	return rows, nil
}

// PostMessage stores a sanitised message from a channel member. The
// MessagePosted event, and AssistantMentioned when the assistant is
// addressed, commit with it.
func (s *ChannelService) PostMessage(ctx context.Context, channelID int64, senderZid, content string) (*channel.Message, error) {
	var msg *channel.Message
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		if _, err := repos.Channels().FindByID(ctx, channelID); err != nil {
			return appshared.NotFound(s.logger, err, msgChannelNotFound)
		}
		ok, err := repos.ChannelMembers().IsMember(ctx, channelID, senderZid)
		if err != nil {
			return err
		}
		if !ok {
			return shared.ErrForbidden.WithMessage("You are not a member of this channel")
		}

		msg, err = channel.NewMessage(channelID, senderZid, content, s.opts.MaxMessageLength)
		if err != nil {
			return err
		}
		if err := repos.Messages().Create(ctx, msg); err != nil {
			return err
		}

		events := []shared.DomainEvent{channel.NewMessagePostedEvent(msg)}
		if channel.MentionsAssistant(msg.Content) {
			events = append(events, channel.NewAssistantMentionedEvent(msg))
		}
		return repos.Events().Save(ctx, events...)
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to post message", err,
			zap.Int64("channel_id", channelID),
			zap.String("sender_zid", senderZid))
	}
	return msg, nil
}

// ReplyToMention answers an @assistant message using the recent history as
// context. A failed completion stores the fallback apology instead.
func (s *ChannelService) ReplyToMention(ctx context.Context, channelID, messageID int64, question string) (*channel.Message, error) {
	recent, err := s.messages.FindRecent(ctx, channelID, messageID, s.opts.AssistantContext)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to load assistant context", err, zap.Int64("channel_id", channelID))
	}

	turns := channel.AssistantConversation(recent, question, s.opts.AssistantContext)
	started := time.Now()
	answer, err := s.completer.Complete(ctx, shared.PurposeAssistant, turns)
	outcome := "answered"
	if err != nil {
		s.logger.Warn("Assistant completion failed, sending fallback",
			zap.Int64("channel_id", channelID),
			zap.Int64("message_id", messageID),
			zap.Error(err))
		answer = channel.AssistantFallbackReply
		outcome = "fallback"
	}
	if s.recorder != nil {
		s.recorder.RecordAssistantReply(ctx, outcome, time.Since(started))
	}

	reply := channel.NewAssistantMessage(channelID, answer)
	err = s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		if err := repos.Messages().Create(ctx, reply); err != nil {
			return err
		}
		return repos.Events().Save(ctx, channel.NewMessagePostedEvent(reply))
	})
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to store assistant reply", err, zap.Int64("channel_id", channelID))
	}

	s.logger.Info("Assistant replied",
		zap.Int64("channel_id", channelID),
		zap.Int64("message_id", reply.ID),
		zap.Duration("latency", time.Since(started)))
	return reply, nil
}

// Members lists the members of a channel
func (s *ChannelService) Members(ctx context.Context, channelID int64) ([]MemberInfo, error) {
	if err := s.ensureChannel(ctx, channelID); err != nil {
		return nil, err
	}
	rows, err := s.members.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list channel members", err, zap.Int64("channel_id", channelID))
	}
	out := make([]MemberInfo, 0, len(rows))
	for _, m := range rows {
		out = append(out, MemberInfo{Zid: m.Zid, Name: m.Name, JoinedAt: m.JoinedAt})
	}
	return out, nil
}

// AddMember adds zid to the channel
func (s *ChannelService) AddMember(ctx context.Context, channelID int64, zid string) error {
	if zid == "" {
		return shared.ErrMissingFields.WithMessage("Missing required fields: zid")
	}
	err := s.txScope.Execute(ctx, func(repos appshared.TxRepositories) error {
		if _, err := repos.Channels().FindByID(ctx, channelID); err != nil {
			return appshared.NotFound(s.logger, err, msgChannelNotFound)
		}
		if err := repos.ChannelMembers().Add(ctx, &channel.Member{ChannelID: channelID, Zid: zid, JoinedAt: time.Now()}); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.ErrAlreadyExists.WithMessage("User is already a member of this channel")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return appshared.Internal(s.logger, "Failed to add channel member", err, zap.Int64("channel_id", channelID))
	}
	return nil
}

// RemoveMember removes zid from the channel
func (s *ChannelService) RemoveMember(ctx context.Context, channelID int64, zid string) error {
	if err := s.members.Remove(ctx, channelID, zid); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound.WithMessage("User is not a member of this channel")
		}
		return appshared.Internal(s.logger, "Failed to remove channel member", err, zap.Int64("channel_id", channelID))
	}
	return nil
}

// IsMember reports whether zid belongs to the channel
func (s *ChannelService) IsMember(ctx context.Context, channelID int64, zid string) (bool, error) {
	ok, err := s.members.IsMember(ctx, channelID, zid)
	if err != nil {
		return false, appshared.Internal(s.logger, "Failed to check membership", err, zap.Int64("channel_id", channelID))
	}
	return ok, nil
}

func (s *ChannelService) ensureChannel(ctx context.Context, channelID int64) error {
	if _, err := s.channels.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound.WithMessage(msgChannelNotFound)
		}
		return appshared.Internal(s.logger, "Failed to load channel", err, zap.Int64("channel_id", channelID))
	}
	return nil
}
