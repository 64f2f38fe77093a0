package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// ChatService is the part of the channel service the socket needs
type ChatService interface {
	IsMember(ctx context.Context, channelID int64, zid string) (bool, error)
	PostMessage(ctx context.Context, channelID int64, senderZid, content string) (*channel.Message, error)
}

type channelRef struct {
	ChannelID int64 `json:"channel_id"`
}

type sendMessagePayload struct {
	ChannelID int64  `json:"channel_id"`
	Content   string `json:"content"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Server upgrades HTTP requests and dispatches client frames
type Server struct {
	hub            *Hub
	chat           ChatService
	originPatterns []string
	sendBuffer     int
	writeTimeout   time.Duration
	pingInterval   time.Duration
	readLimit      int64
	gauge          ConnectionGauge
	logger         *zap.Logger
}

// ConnectionGauge tracks open websocket connections
type ConnectionGauge interface {
	ConnectionOpened(ctx context.Context)
	ConnectionClosed(ctx context.Context)
}

// SetGauge sets the open connection gauge
func (s *Server) SetGauge(gauge ConnectionGauge) {
	s.gauge = gauge
}

// NewServer creates a websocket server bound to hub
func NewServer(hub *Hub, chat ChatService, cfg config.ChatConfig, origins []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hub:            hub,
		chat:           chat,
		originPatterns: origins,
		sendBuffer:     cfg.SendBuffer,
		writeTimeout:   cfg.WriteTimeout,
		pingInterval:   cfg.PingInterval,
		// content is counted in characters; allow 4 bytes each plus the envelope
		readLimit: int64(cfg.MaxMessageLength)*4 + 1024,
		logger:    logger,
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = 10 * time.Second
	}
	if s.pingInterval <= 0 {
		s.pingInterval = 30 * time.Second
	}
	if cfg.MaxMessageLength <= 0 {
		s.readLimit = int64(channel.DefaultMaxContentLength)*4 + 1024
	}
	return s
}

// Serve upgrades the request for an authenticated session and blocks until
// the connection ends.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, session identity.Session) {
	opts := &websocket.AcceptOptions{OriginPatterns: s.originPatterns}
	for _, o := range s.originPatterns {
		if o == "*" {
			opts.InsecureSkipVerify = true
		}
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(s.readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := NewClient(conn, session, s.sendBuffer)
	if err := s.hub.Register(ctx, client); err != nil {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer s.hub.Unregister(client)

	if s.gauge != nil {
		s.gauge.ConnectionOpened(ctx)
		defer s.gauge.ConnectionClosed(context.WithoutCancel(ctx))
	}

	s.logger.Debug("Websocket client connected", zap.String("zid", session.Zid))

	go func() {
		client.writeLoop(ctx, s.writeTimeout, s.pingInterval)
		cancel()
	}()

	s.readLoop(ctx, client)
	_ = conn.Close(websocket.StatusNormalClosure, "")
	s.logger.Debug("Websocket client disconnected", zap.String("zid", session.Zid))
}

func (s *Server) readLoop(ctx context.Context, c *Client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.reply(ctx, c, EventError, errorPayload{Message: "Malformed frame"})
			continue
		}
		s.dispatch(ctx, c, f)
	}
}

func (s *Server) dispatch(ctx context.Context, c *Client, f Frame) {
	switch f.Event {
	case EventJoin:
		var ref channelRef
		if err := json.Unmarshal(f.Data, &ref); err != nil || ref.ChannelID <= 0 {
			s.reply(ctx, c, EventError, errorPayload{Message: "channel_id is required"})
			return
		}
		if err := s.authorize(ctx, c, ref.ChannelID); err != nil {
			s.replyError(ctx, c, err)
			return
		}
		if err := s.hub.Join(ctx, c, channel.RoomName(ref.ChannelID)); err != nil {
			return
		}
		s.reply(ctx, c, EventJoined, ref)

	case EventLeave:
		var ref channelRef
		if err := json.Unmarshal(f.Data, &ref); err != nil || ref.ChannelID <= 0 {
			s.reply(ctx, c, EventError, errorPayload{Message: "channel_id is required"})
			return
		}
		_ = s.hub.Leave(ctx, c, channel.RoomName(ref.ChannelID))

	case EventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(f.Data, &p); err != nil || p.ChannelID <= 0 {
			s.reply(ctx, c, EventError, errorPayload{Message: "channel_id is required"})
			return
		}
		// the stored message reaches the room through the MessagePosted event
		if _, err := s.chat.PostMessage(ctx, p.ChannelID, c.session.Zid, p.Content); err != nil {
			s.replyError(ctx, c, err)
		}

	default:
		s.reply(ctx, c, EventError, errorPayload{Message: "Unknown event " + f.Event})
	}
}

func (s *Server) authorize(ctx context.Context, c *Client, channelID int64) error {
	if c.session.IsStaff() {
		return nil
	}
	ok, err := s.chat.IsMember(ctx, channelID, c.session.Zid)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden.WithMessage("You are not a member of this channel")
	}
	return nil
}

func (s *Server) replyError(ctx context.Context, c *Client, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		s.reply(ctx, c, EventError, errorPayload{Message: de.Message})
		return
	}
	s.logger.Error("Websocket request failed", zap.String("zid", c.session.Zid), zap.Error(err))
	s.reply(ctx, c, EventError, errorPayload{Message: "Internal server error"})
}

func (s *Server) reply(ctx context.Context, c *Client, event string, data any) {
	if err := s.hub.SendTo(ctx, c, event, data); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("Websocket reply dropped", zap.String("event", event), zap.Error(err))
	}
}
