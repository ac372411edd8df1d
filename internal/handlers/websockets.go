package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"controlling_irrigation/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamIdleTimeout  = 60 * time.Second
	streamPingEvery    = streamIdleTimeout * 9 / 10
	streamReadLimit    = 4 << 10
	streamDefaultEvery = time.Second
	streamMaxEvery     = 10 * time.Second
	commandBacklog     = 4
)

// streamMessage is the frame shape in both directions.
// Server to client: "state", "action" or "error".
// Client to server: a command name in Type.
type streamMessage struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict to the dashboard origin once it has a fixed host
}

// stream is one connected client. Only the goroutine running serve writes.
type stream struct {
	h    *Handler
	conn *websocket.Conn
	log  *logger.Logger
}

// @Summary      State stream
// @Description  Pushes {"type":"state"} every interval (?interval=2s or ?interval_ms=2000). Accepts command messages such as {"type":"pause"}.
// @Tags         sequence
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	every := streamInterval(c)

	log := h.log
	if log == nil {
		log = logger.Nop()
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	s := &stream{h: h, conn: conn, log: log}
	defer func() { _ = conn.Close() }()

	s.serve(c.Request.Context(), every)
}

func (s *stream) serve(ctx context.Context, every time.Duration) {
	s.conn.SetReadLimit(streamReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))
	})

	commands := make(chan string, commandBacklog)
	go s.readCommands(commands)

	if err := s.pushState(ctx); err != nil {
		s.log.Infow("ws_initial_push_failed", "err", err)
		return
	}

	push := time.NewTicker(every)
	defer push.Stop()
	keepalive := time.NewTicker(streamPingEvery)
	defer keepalive.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			err = s.handle(ctx, cmd)
		case <-keepalive.C:
			err = s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout))
		case <-push.C:
			err = s.pushState(ctx)
		}
		if err != nil {
			s.log.Infow("ws_write_failed", "err", err)
			return
		}
	}
}

// readCommands forwards command names until the connection drops, then
// closes out. Frames that are not JSON or carry no type are skipped.
func (s *stream) readCommands(out chan<- string) {
	defer close(out)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debugw("ws_read_closed", "err", err)
			return
		}
		var msg streamMessage
		if json.Unmarshal(raw, &msg) != nil || msg.Type == "" {
			continue
		}
		select {
		case out <- msg.Type:
		default:
			s.log.Warnw("ws_command_dropped", "command", msg.Type)
		}
	}
}

func (s *stream) send(msg streamMessage) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

func (s *stream) pushState(ctx context.Context) error {
	st, err := s.h.services.Monitoring.GetState(ctx)
	if err != nil {
		s.log.Errorw("ws_get_state_failed", "err", err)
		return err
	}
	return s.send(streamMessage{Type: "state", Data: st})
}

// handle runs a client command, replies with an action frame and then
// pushes the resulting state.
func (s *stream) handle(ctx context.Context, cmd string) error {
	action, ok := s.action(cmd)
	if !ok {
		return s.send(streamMessage{Type: "error", Error: fmt.Sprintf("unknown command %q", cmd)})
	}

	resp := ActionResponse{Message: cmd, Success: true}
	if err := action(ctx); err != nil {
		s.log.Errorw("ws_command_failed", "command", cmd, "err", err)
		resp.Success = false
		resp.Error = err.Error()
	}
	if mode, err := s.h.services.ModeControl.GetMode(ctx); err == nil {
		resp.CurrentMode = string(mode)
	}
	if err := s.send(streamMessage{Type: "action", Data: resp}); err != nil {
		return err
	}
	return s.pushState(ctx)
}

func (s *stream) action(cmd string) (func(context.Context) error, bool) {
	svc := s.h.services
	switch cmd {
	case "pause":
		return svc.PauseControl.Pause, true
	case "resume":
		return svc.PauseControl.Resume, true
	case "reset":
		return svc.ModeControl.Reset, true
	case "manual":
		return svc.ModeControl.Manual, true
	case "start_sequence":
		return svc.Sequencer.StartSequence, true
	}
	return nil, false
}

// streamInterval picks the push period from ?interval (Go duration) or
// ?interval_ms, in that order. Values outside (0, streamMaxEvery] fall
// through to the next source.
func streamInterval(c *gin.Context) time.Duration {
	if d, err := time.ParseDuration(c.Query("interval")); err == nil && validStreamInterval(d) {
		return d
	}
	if ms, err := strconv.Atoi(c.Query("interval_ms")); err == nil {
		if d := time.Duration(ms) * time.Millisecond; validStreamInterval(d) {
			return d
		}
	}
	return streamDefaultEvery
}

func validStreamInterval(d time.Duration) bool {
	return d > 0 && d <= streamMaxEvery
}
