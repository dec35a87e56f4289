package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Zubra14/verista-tracking/internal/adapter/http/handler/dto"
	"github.com/Zubra14/verista-tracking/internal/adapter/http/middleware"
	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/metrics"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
	"github.com/Zubra14/verista-tracking/pkg/wshub"
)

type TrackingService interface {
	Ingest(ctx context.Context, user *models.User, sample models.PositionSample) error
	SubscribeChild(ctx context.Context, user *models.User, conn wshub.Sender, studentID uuid.UUID)
	SubscribeSchool(ctx context.Context, user *models.User, conn wshub.Sender, schoolID uuid.UUID)
	Disconnect(ctx context.Context, connID uuid.UUID)
}

// Track owns the realtime channel: one websocket endpoint carrying
// driver position ingest and subscriber topic management.
type Track struct {
	upgrader websocket.Upgrader

	tracking    TrackingService
	tokens      middleware.TokenValidator
	connections *wshub.ConnectionHub
	limiter     *middleware.RateLimiter
	l           logger.Logger
}

func NewTrack(tracking TrackingService, tokens middleware.TokenValidator, connections *wshub.ConnectionHub, limiter *middleware.RateLimiter, l logger.Logger) *Track {
	return &Track{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are native apps, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		tracking:    tracking,
		tokens:      tokens,
		connections: connections,
		limiter:     limiter,
		l:           l,
	}
}

// HandleWS godoc
// @Summary      Realtime tracking channel
// @Description  Upgrades to a websocket carrying location-update and subscribe events
// @Tags         Tracking
// @Param        token  query  string  false  "Bearer token (alternative to Authorization header)"
// @Success      101
// @Failure      401  {object}  map[string]any
// @Security     BearerAuth
// @Router       /ws/track [get]
func (h *Track) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_track")

	// The Auth middleware handles the Authorization header; browsers and
	// some clients can only pass the credential as a query parameter.
	user := models.UserFromContext(ctx)
	if user == nil || user.IsAnonymous() {
		token := r.URL.Query().Get("token")
		if token == "" {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		validated, err := h.tokens.Validate(ctx, token)
		if err != nil || validated == nil {
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		user = validated
		ctx = wrap.WithUserID(ctx, user.ID.String())
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "websocket upgrade failed", err)
		return
	}

	conn := wshub.NewConn(ctx, wsConn)
	if err := h.connections.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		conn.Close()
		return
	}
	metrics.WebSocketConnectionsGauge.WithLabelValues(serviceLabel).Inc()

	h.l.Info(ctx, "websocket connected", "conn_id", conn.ID(), "role", user.Role.String())

	defer func() {
		h.tracking.Disconnect(ctx, conn.ID())
		h.connections.Delete(conn.ID())
		metrics.WebSocketConnectionsGauge.WithLabelValues(serviceLabel).Dec()
		h.l.Info(ctx, "websocket disconnected", "conn_id", conn.ID())
	}()

	h.readLoop(ctx, user, conn)
}

// readLoop is the single reader for the connection; gorilla allows at
// most one concurrent reader.
func (h *Track) readLoop(ctx context.Context, user *models.User, conn *wshub.Conn) {
	for {
		var frame dto.ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.l.Debug(ctx, "websocket read error", "err", err.Error())
			}
			return
		}

		switch frame.Type {
		case models.EventLocationUpdate:
			h.handleLocationUpdate(ctx, user, conn, frame)

		case models.EventSubscribeChildTrips:
			if frame.ChildID == nil {
				h.sendError(conn, "child_id is required")
				continue
			}
			h.tracking.SubscribeChild(ctx, user, conn, *frame.ChildID)

		case models.EventSubscribeSchool:
			if frame.SchoolID == nil {
				h.sendError(conn, "school_id is required")
				continue
			}
			h.tracking.SubscribeSchool(ctx, user, conn, *frame.SchoolID)

		default:
			h.sendError(conn, "unknown event type")
		}
	}
}

func (h *Track) handleLocationUpdate(ctx context.Context, user *models.User, conn *wshub.Conn, frame dto.ClientFrame) {
	if !h.limiter.Allow(user.ID.String()) {
		h.sendError(conn, "rate limit exceeded")
		return
	}

	if frame.Latitude == nil || frame.Longitude == nil {
		h.sendError(conn, "latitude and longitude are required")
		return
	}

	sample := models.PositionSample{
		TripID:     frame.TripID,
		RouteID:    frame.RouteID,
		Latitude:   *frame.Latitude,
		Longitude:  *frame.Longitude,
		IsFallback: frame.IsFallback,
		Timestamp:  time.Now().UTC(),
	}
	if frame.Speed != nil {
		sample.SpeedKmh = *frame.Speed
	}

	if err := h.tracking.Ingest(ctx, user, sample); err != nil {
		h.l.Debug(ctx, "ingest rejected", "err", err.Error())
		h.sendError(conn, err.Error())
	}
}

func (h *Track) sendError(conn *wshub.Conn, message string) {
	if err := conn.Send(dto.NewWSError(message)); err != nil {
		h.l.Debug(context.Background(), "failed to send error frame", "err", err.Error())
	}
}
