package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizarena-service/internal/app"
	"quizarena-service/internal/domain"
)

// LeaderboardReader ranks the current leaderboard of a quiz.
type LeaderboardReader interface {
	Leaderboard(ctx context.Context, quizID string, limit int) (domain.Leaderboard, error)
}

// WSHandler streams live leaderboards of a quiz over a websocket.
type WSHandler struct {
	attempts LeaderboardReader
	feed     *app.LeaderboardFeed
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(attempts LeaderboardReader, feed *app.LeaderboardFeed, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		attempts: attempts,
		feed:     feed,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS sends the current leaderboard, then a new one after every attempt
// recorded for the quiz. Clients may send {"type":"refresh"} to re-read it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeError(w, domain.Validation("quizId is required"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// subscribe first so no attempt lands between snapshot and feed
	updates, cancel := h.feed.Subscribe(quizID)
	defer cancel()

	board, err := h.attempts.Leaderboard(r.Context(), quizID, app.DefaultLeaderboardLimit)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: domain.MessageOf(err)}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	// queued before the forwarder starts so the snapshot precedes every update
	send <- outboundMessage[any]{Type: "leaderboard", Payload: board}
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", zap.String("quiz_id", quizID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			board, err := h.attempts.Leaderboard(r.Context(), quizID, app.DefaultLeaderboardLimit)
			if err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: domain.MessageOf(err)}})
				continue
			}
			push(outboundMessage[any]{Type: "leaderboard", Payload: board})
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
