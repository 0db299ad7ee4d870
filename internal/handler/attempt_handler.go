package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/config"
	"github.com/Oksidation/iq-testing-app/internal/engine"
	"github.com/Oksidation/iq-testing-app/internal/middleware"
	"github.com/Oksidation/iq-testing-app/internal/service"
	ws "github.com/Oksidation/iq-testing-app/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// AttemptHandler runs timed test attempts over WebSocket. One connection owns
// one engine instance; closing the socket abandons the attempt.
type AttemptHandler struct {
	cfg            *config.Config
	rdb            *redis.Client
	catalogService *service.CatalogService
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(cfg *config.Config, rdb *redis.Client, catalogService *service.CatalogService, sessionService *service.SessionService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		cfg:            cfg,
		rdb:            rdb,
		catalogService: catalogService,
		sessionService: sessionService,
		log:            log.With().Str("component", "attempt_handler").Logger(),
		upgrader:       buildUpgrader(cfg.AllowedOrigins),
	}
}

// attemptConn serializes WebSocket writes. The engine emits events from its
// countdown goroutine while the read loop writes acks, so every write goes
// through one mutex.
type attemptConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *attemptConn) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ws.WriteTyped(c.conn, v)
}

func (c *attemptConn) writeError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = ws.WriteError(c.conn, msg)
}

// AttemptStream godoc
// WS /ws/v1/tests/:test_id/attempt
// Upgrades to WebSocket and runs one full timed attempt: question stream,
// countdown, selections, attention signals and final grading.
func (h *AttemptHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	t, err := h.catalogService.GetTest(c.Request.Context(), testID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test not found"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer rawConn.Close()

	conn := &attemptConn{conn: rawConn}

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("test_id", testID.String()).
		Logger()

	eng := engine.New(h.sessionService, t, claims.UserID, func(ev engine.Event) {
		h.forwardEvent(conn, ev)
	}, h.log)
	defer eng.Close()

	if err := eng.Start(context.Background()); err != nil {
		wsLog.Error().Err(err).Msg("Attempt start failed")
		conn.writeError("could not start attempt")
		return
	}

	wsLog.Info().Str("session_id", eng.SessionID().String()).Msg("Attempt connected")

	for {
		var env ws.RequestEnvelope
		_, raw, err := rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			conn.writeError("malformed message")
			continue
		}

		switch env.Action {
		case ws.ActionSelect:
			h.handleSelect(conn, eng, raw)
		case ws.ActionNext:
			h.handleNext(conn, eng)
		case ws.ActionSubmit:
			h.handleSubmit(conn, eng, wsLog)
		case ws.ActionHidden:
			h.handleAttention(conn, eng, wsLog, claims.UserID, testID, engine.CauseTabHidden)
		case ws.ActionBlur:
			h.handleAttention(conn, eng, wsLog, claims.UserID, testID, engine.CauseWindowBlur)
		case ws.ActionPing:
			_ = conn.write(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			conn.writeError("unknown action: " + string(env.Action))
		}

		// Terminal attempts keep the socket open just long enough for the
		// final event to flush; nothing else is accepted.
		if eng.State().Status.Terminal() {
			return
		}
	}
}

// forwardEvent translates engine events into wire responses.
func (h *AttemptHandler) forwardEvent(conn *attemptConn, ev engine.Event) {
	switch ev.Type {
	case engine.EventState:
		_ = conn.write(ws.StateResponse{Event: ws.EventState, State: ev.State})
	case engine.EventGraded:
		_ = conn.write(ws.GradedResponse{Event: ws.EventGraded, State: ev.State, Result: *ev.Result})
	case engine.EventDisqualified:
		_ = conn.write(ws.DisqualifiedResponse{Event: ws.EventDisqualified, State: ev.State, Reason: ev.Reason})
	}
}

func (h *AttemptHandler) handleSelect(conn *attemptConn, eng *engine.Engine, raw []byte) {
	var req ws.SelectRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		conn.writeError("malformed select message")
		return
	}
	if req.QuestionID == "" || req.Option == "" {
		conn.writeError("question_id and option are required")
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		conn.writeError("invalid question_id format")
		return
	}

	if err := eng.Select(questionID, req.Option); err != nil {
		conn.writeError(err.Error())
		return
	}

	_ = conn.write(ws.SavedResponse{Event: ws.EventSaved, Status: "saved"})
}

func (h *AttemptHandler) handleNext(conn *attemptConn, eng *engine.Engine) {
	advanced, err := eng.Advance()
	if err != nil {
		conn.writeError(err.Error())
		return
	}
	if !advanced {
		conn.writeError("already at the last question, submit instead")
	}
	// The advance itself emits the new state event.
}

func (h *AttemptHandler) handleSubmit(conn *attemptConn, eng *engine.Engine, wsLog zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := eng.Submit(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Submit error")
		if !eng.State().Status.Terminal() {
			conn.writeError(err.Error())
		}
	}
}

func (h *AttemptHandler) handleAttention(conn *attemptConn, eng *engine.Engine, wsLog zerolog.Logger, userID, testID uuid.UUID, cause engine.Cause) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	h.queueIntegrityEvent(ctx, eng.SessionID(), userID, testID, cause)

	if err := eng.AttentionLost(ctx, cause); err != nil {
		wsLog.Error().Err(err).Msg("Disqualification write error")
	}
}

// queueIntegrityEvent pushes the raw attention signal onto the Redis queue for
// batched persistence by the integrity worker. Queue failures are logged and
// dropped; the disqualification itself does not depend on this trail.
func (h *AttemptHandler) queueIntegrityEvent(ctx context.Context, sessionID, userID, testID uuid.UUID, cause engine.Cause) {
	payload, _ := json.Marshal(map[string]interface{}{
		"session_id": sessionID.String(),
		"user_id":    userID.String(),
		"test_id":    testID.String(),
		"event_type": string(cause),
		"timestamp":  time.Now().Unix(),
	})
	if err := h.rdb.RPush(ctx, config.WorkerKey.PersistIntegrityQueue, payload).Err(); err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Integrity event enqueue failed")
	}
}
