package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"coderoom/internal/exec"
	"coderoom/internal/models"
	"coderoom/internal/session"
	"coderoom/internal/status"
	"coderoom/internal/utils"
)

// runner is the execution service client surface (mocked in tests).
type runner interface {
	Execute(ctx context.Context, req models.ExecRequest) (models.ExecResponse, error)
}

// execFailedOutput is the only run feedback clients ever see when the
// execution service fails; the real cause stays in the operator log.
const execFailedOutput = "❌ Error during code execution"

type Handlers struct {
	log      *utils.Logger
	runner   runner
	hub      *session.Hub
	reporter *status.Reporter // nil when the Redis mirror is disabled
}

func NewHandlers(log *utils.Logger, execURL string, reporter *status.Reporter) *Handlers {
	return NewHandlersWithDeps(log, exec.NewClient(execURL), session.NewHub(), reporter)
}

func NewHandlersWithDeps(log *utils.Logger, run runner, hub *session.Hub, reporter *status.Reporter) *Handlers {
	return &Handlers{
		log:      log,
		runner:   run,
		hub:      hub,
		reporter: reporter,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) ListLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, exec.SupportedLanguages())
}

func (h *Handlers) RoomStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, ok := h.hub.Get(id)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, room.Snapshot())
}

/*** Room WebSocket: membership, shared document, shared runs ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.NewString(), conn)
	h.log.Info("client connected", "conn", client.ID)

	// Per-connection session: the room and display name this connection
	// currently occupies. Only this goroutine touches them.
	var (
		room     *session.Room
		userName string
	)

	leave := func() {
		if room == nil {
			return
		}
		room.RemoveMember(client, userName)
		h.reportRoom(room)
		room = nil
		userName = ""
	}
	defer func() {
		leave()
		h.log.Info("client disconnected", "conn", client.ID)
	}()

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "join":
			var req models.JoinRequest
			if err := decode(frame.Data, &req); err != nil {
				client.Send(errFrame("bad_payload"))
				continue
			}
			// Re-joining from another room leaves the old one first.
			leave()
			room = h.hub.GetOrCreate(req.RoomID)
			userName = req.UserName
			room.AddMember(client, userName)
			h.reportRoom(room)
			h.log.Info("user joined room", "room", req.RoomID, "user", req.UserName, "conn", client.ID)

		case "codeChange":
			var chg models.CodeChange
			if err := decode(frame.Data, &chg); err != nil {
				client.Send(errFrame("bad_payload"))
				continue
			}
			if target, ok := h.hub.Get(chg.RoomID); ok {
				target.UpdateCode(client, chg.Code)
				h.reportRoom(target)
			}

		case "typing":
			var typ models.Typing
			if err := decode(frame.Data, &typ); err != nil {
				client.Send(errFrame("bad_payload"))
				continue
			}
			if target, ok := h.hub.Get(typ.RoomID); ok {
				target.NotifyTyping(client, typ.UserName)
			}

		case "languageChange":
			var chg models.LanguageChange
			if err := decode(frame.Data, &chg); err != nil {
				client.Send(errFrame("bad_payload"))
				continue
			}
			if target, ok := h.hub.Get(chg.RoomID); ok {
				target.UpdateLanguage(client, chg.Language)
				h.reportRoom(target)
			}

		case "compileRequest":
			var req models.CompileRequest
			if err := decode(frame.Data, &req); err != nil {
				client.Send(errFrame("bad_payload"))
				continue
			}
			target, ok := h.hub.Get(req.RoomID)
			if !ok {
				continue
			}
			go h.runRemote(target, req)

		case "leaveRoom":
			leave()

		default:
			client.Send(errFrame("unknown_type"))
		}
	}
}

// runRemote proxies one compile request to the execution service and
// applies the result to the room. It runs detached: the room stays
// responsive while the call is outstanding, and the broadcast happens
// even if every member has left in the meantime.
func (h *Handlers) runRemote(room *session.Room, req models.CompileRequest) {
	execReq := models.ExecRequest{
		Language: exec.NormalizeLanguage(req.Language),
		Version:  req.Version,
		Files:    []models.ExecFile{{Content: req.Code}},
		Stdin:    req.Input,
	}
	h.log.Info("running code", "room", room.ID, "language", execReq.Language)

	resp, err := h.runner.Execute(context.Background(), execReq)
	if err != nil {
		h.log.Error("remote execution failed", "room", room.ID, "error", err.Error())
		room.BroadcastAll(models.WSFrame{
			Type: "codeResponse",
			Data: models.ExecResponse{Run: &models.ExecRun{Output: execFailedOutput}},
		})
		return
	}

	room.ApplyRunResult(resp)
	h.reportRoom(room)
}

// reportRoom pushes a snapshot to the Redis mirror off the event path.
func (h *Handlers) reportRoom(room *session.Room) {
	if h.reporter == nil {
		return
	}
	snap := room.Snapshot()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.reporter.Publish(ctx, snap)
	}()
}

// decode re-decodes a frame's data field into its typed payload,
// rejecting shapes that do not match the variant.
func decode(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func errFrame(msg string) models.WSFrame { return models.WSFrame{Type: "error", Data: msg} }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
