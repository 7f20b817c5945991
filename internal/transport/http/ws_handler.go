package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"chat-trivia-service/internal/app"
	"chat-trivia-service/internal/notify"
	"chat-trivia-service/internal/quiz"
	"github.com/gorilla/websocket"
)

// WidgetConfig tunes the per-connection toast center and confetti effect.
type WidgetConfig struct {
	ToastTTL time.Duration
	Confetti quiz.ConfettiConfig
	FPS      int
	// Scheduler overrides the frame scheduler; nil uses a ticker at FPS.
	Scheduler quiz.FrameScheduler
}

type WSHandler struct {
	service  *app.TriviaService
	widget   WidgetConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.TriviaService, widget WidgetConfig) *WSHandler {
	return &WSHandler{
		service: service,
		widget:  widget,
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

type selectPayload struct {
	Choice string `json:"choice"`
}

type statePayload struct {
	SessionID string        `json:"sessionId"`
	Applied   bool          `json:"applied"`
	State     quiz.Snapshot `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errConnectionClosed = errors.New("connection closed")

// wsSurface draws confetti frames by queueing them on the connection writer.
type wsSurface struct {
	send   chan<- outboundMessage[any]
	closed <-chan struct{}
}

func (s wsSurface) Draw(frame quiz.Frame) error {
	select {
	case s.send <- outboundMessage[any]{Type: "confetti", Payload: frame}:
		return nil
	case <-s.closed:
		return errConnectionClosed
	}
}

// ServeWS upgrades HTTP requests to websockets and drives one play session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	setID := r.URL.Query().Get("setId")
	if setID == "" {
		http.Error(w, "missing setId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	toasts := notify.NewCenter(h.widget.ToastTTL)
	defer toasts.Close()

	sessionID, session, err := h.service.OpenSession(r.Context(), setID, toasts)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.CloseSession(sessionID)

	send := make(chan outboundMessage[any], 64)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	toastsDone := make(chan struct{})

	scheduler := h.widget.Scheduler
	if scheduler == nil {
		scheduler = quiz.NewTickerScheduler(h.widget.FPS)
	}
	confetti := quiz.NewConfetti(h.widget.Confetti, scheduler, wsSurface{send: send, closed: closeSignals})

	// Only this goroutine writes to conn. send is never closed; once
	// closeSignals fires, pending frames are dropped.
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	events, cancelToasts := toasts.Subscribe()
	go func() {
		defer close(toastsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev.Toast}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	enqueue := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}
	state := func(applied bool) outboundMessage[any] {
		return outboundMessage[any]{Type: "state", Payload: statePayload{
			SessionID: sessionID,
			Applied:   applied,
			State:     session.Snapshot(),
		}}
	}

	enqueue(state(true))

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			enqueue(state(session.Start()))
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}})
				continue
			}
			enqueue(state(session.SelectAnswer(payload.Choice)))
		case "advance":
			outcome, applied := session.Advance()
			enqueue(state(applied))
			// Keyed to the finishing transition, so re-renders never replay it.
			if applied && outcome.Finished && outcome.Perfect {
				confetti.Start()
			}
		case "restart":
			confetti.Cancel()
			session.Restart()
			enqueue(state(true))
		default:
			enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	confetti.Cancel()
	cancelToasts()
	close(closeSignals)
	<-toastsDone
	<-writerDone
}
