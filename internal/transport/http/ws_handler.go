package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"introxpection-quiz/internal/app"
	"introxpection-quiz/internal/domain"
	"introxpection-quiz/internal/engine"
	"github.com/gorilla/websocket"
)

// WSHandler plays one quiz attempt per socket. The socket is the engine's
// view: every render and warning becomes an outbound message, and inbound
// messages are applied on a single loop goroutine.
type WSHandler struct {
	service     *app.PlayService
	upgrader    websocket.Upgrader
	autoAdvance time.Duration
	keepAlive   time.Duration

	wg    sync.WaitGroup
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewWSHandler(service *app.PlayService, autoAdvance time.Duration) *WSHandler {
	return &WSHandler{
		service:     service,
		autoAdvance: autoAdvance,
		keepAlive:   time.Minute,
		conns:       make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// WithKeepAlive sets how often an idle attempt is marked live. Attempts are
// also marked on every inbound message.
func (h *WSHandler) WithKeepAlive(d time.Duration) *WSHandler {
	if d > 0 {
		h.keepAlive = d
	}
	return h
}

// Shutdown closes every open socket and waits for their handlers to return.
// http.Server.Shutdown does not track hijacked connections, so call this
// before releasing anything the handlers use.
func (h *WSHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	for conn := range h.conns {
		conn.Close()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *WSHandler) track(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *WSHandler) untrack(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	AnswerIndex   int  `json:"answerIndex"`
	QuestionIndex *int `json:"questionIndex,omitempty"`
}

type keyPayload struct {
	Key string `json:"key"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	AttemptID string `json:"attemptId"`
	QuizID    string `json:"quizId"`
	Title     string `json:"title"`
}

type renderPayload struct {
	State domain.Snapshot `json:"state"`
	View  domain.Frame    `json:"view"`
}

// socketView forwards engine output to the writer goroutine. Output is held
// back until release, so the first frame follows the "started" message.
type socketView struct {
	send chan<- outboundMessage[any]
	held []outboundMessage[any]
	hold bool
}

func (v *socketView) Render(snap domain.Snapshot, frame domain.Frame) {
	typ := "question"
	if _, ok := frame.(domain.ResultView); ok {
		typ = "result"
	}
	v.emit(outboundMessage[any]{Type: typ, Payload: renderPayload{State: snap, View: frame}})
}

func (v *socketView) Notify(message string) {
	v.emit(outboundMessage[any]{Type: "warning", Payload: errorPayload{Message: message}})
}

func (v *socketView) emit(msg outboundMessage[any]) {
	if v.hold {
		v.held = append(v.held, msg)
		return
	}
	v.send <- msg
}

func (v *socketView) release() {
	v.hold = false
	for _, msg := range v.held {
		v.send <- msg
	}
	v.held = nil
}

// ServeWS upgrades the request and runs the attempt until the client leaves.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	h.wg.Add(1)
	defer h.wg.Done()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	h.track(conn)
	defer h.untrack(conn)
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// keep draining so the loop never blocks on a dead socket
				for range send {
				}
				return
			}
		}
	}()
	defer func() {
		close(send)
		<-writerDone
	}()

	view := &socketView{send: send, hold: true}
	attempt, err := h.service.Start(r.Context(), quizID, view, view)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return
	}
	defer h.service.Finish(attempt.ID)
	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		Title:     attempt.Engine.Definition().Title,
	}}
	view.release()

	inbound := make(chan inboundMessage)
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			inbound <- msg
		}
	}()

	done := make(chan struct{})
	timers := make(chan func(), 1)
	post := func(fn func()) {
		select {
		case timers <- fn:
		case <-done:
		}
	}
	session := &wsSession{
		engine: attempt.Engine,
		auto:   engine.NewAutoAdvancer(attempt.Engine, h.autoAdvance, post),
		send:   send,
	}

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for running := true; running; {
		select {
		case msg, ok := <-inbound:
			if !ok {
				running = false
				break
			}
			h.service.Touch(attempt.ID)
			session.handle(msg)
		case fn := <-timers:
			fn()
		case <-keepAlive.C:
			h.service.Touch(attempt.ID)
		}
	}

	session.auto.Cancel()
	close(done)
}

// wsSession holds the per-socket state touched only by the loop goroutine.
type wsSession struct {
	engine *engine.Engine
	auto   *engine.AutoAdvancer
	send   chan<- outboundMessage[any]
}

func (s *wsSession) handle(msg inboundMessage) {
	var err error
	switch msg.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.fail("invalid select payload")
			return
		}
		if payload.QuestionIndex != nil && *payload.QuestionIndex != s.engine.CurrentQuestion() {
			s.fail("stale question")
			return
		}
		err = s.auto.Select(payload.AnswerIndex)
	case "advance":
		s.auto.Cancel()
		err = s.engine.Advance()
	case "back":
		s.auto.Cancel()
		err = s.engine.GoBack()
	case "retake":
		s.auto.Cancel()
		s.engine.Retake()
	case "complete":
		s.auto.Cancel()
		s.engine.Complete()
	case "key":
		var payload keyPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.fail("invalid key payload")
			return
		}
		err = s.handleKey(payload.Key)
	default:
		s.fail("unsupported message type")
		return
	}
	// the warning already reached the client through Notify
	if err != nil && !errors.Is(err, domain.ErrAnswerRequired) {
		s.fail(err.Error())
	}
}

// handleKey maps letters to answers and ArrowLeft to going back. Keys are
// ignored once the attempt is complete.
func (s *wsSession) handleKey(key string) error {
	if s.engine.IsComplete() {
		return nil
	}
	if key == "ArrowLeft" {
		s.auto.Cancel()
		return s.engine.GoBack()
	}
	idx, ok := letterIndex(key)
	if !ok {
		return nil
	}
	q := s.engine.Definition().Questions[s.engine.CurrentQuestion()]
	if idx >= len(q.Answers) {
		return nil
	}
	return s.auto.Select(idx)
}

func (s *wsSession) fail(message string) {
	s.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

func letterIndex(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := strings.ToLower(key)[0]
	if c < 'a' || c > 'z' {
		return 0, false
	}
	return int(c - 'a'), true
}
