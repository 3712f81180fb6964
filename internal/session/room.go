package session

import (
	"sort"
	"sync"

	"coderoom/internal/models"
)

// Defaults applied when a room is first created.
const (
	DefaultCode     = "// start code here"
	DefaultLanguage = "Java"
)

// Room holds the authoritative shared state for one collaboration
// session: the document, the selected language, and the roster.
//
// Membership is keyed by display name, so two connections joining with
// the same name collapse into one roster entry. Both connections still
// receive broadcasts; the roster entry disappears when either leaves.
//
// Every mutating method broadcasts while still holding the room lock, so
// all members observe state-changing events in the order they were
// applied.
type Room struct {
	ID string

	mu         sync.Mutex
	clients    map[*Client]struct{}
	users      map[string]struct{}
	code       string
	language   string
	lastOutput string
	hasOutput  bool
}

func NewRoom(id string) *Room {
	return &Room{
		ID:       id,
		clients:  make(map[*Client]struct{}),
		users:    make(map[string]struct{}),
		code:     DefaultCode,
		language: DefaultLanguage,
	}
}

// AddMember registers the connection under the given display name, sends
// the current document and language to the joiner only, and broadcasts
// the updated roster to every member including the joiner.
func (r *Room) AddMember(c *Client, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
	r.users[name] = struct{}{}
	c.Send(models.WSFrame{Type: "codeUpdate", Data: r.code})
	c.Send(models.WSFrame{Type: "languageUpdate", Data: r.language})
	r.broadcastLocked(nil, models.WSFrame{Type: "userJoined", Data: r.rosterLocked()})
}

// RemoveMember drops the connection and its display name and broadcasts
// the updated roster to the remaining members. Explicit leave and
// disconnect both land here.
func (r *Room) RemoveMember(c *Client, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
	delete(r.users, name)
	r.broadcastLocked(nil, models.WSFrame{Type: "userJoined", Data: r.rosterLocked()})
}

// UpdateCode overwrites the document (last writer wins) and relays it to
// every member except the sender.
func (r *Room) UpdateCode(sender *Client, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
	r.broadcastLocked(sender, models.WSFrame{Type: "codeUpdate", Data: code})
}

// UpdateLanguage overwrites the language and relays it to every member
// including the sender. The echo back to the sender is part of the
// client contract; codeUpdate deliberately has no such echo.
func (r *Room) UpdateLanguage(sender *Client, language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.language = language
	r.broadcastLocked(nil, models.WSFrame{Type: "languageUpdate", Data: language})
}

// NotifyTyping relays a typing indicator to every member except the
// sender. Nothing is persisted.
func (r *Room) NotifyTyping(sender *Client, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(sender, models.WSFrame{Type: "userTyping", Data: name})
}

// ApplyRunResult records a successful execution result and broadcasts it
// to every member. It works even when the room has emptied since the run
// was requested.
func (r *Room) ApplyRunResult(resp models.ExecResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resp.Run != nil {
		r.lastOutput = resp.Run.Output
		r.hasOutput = true
	}
	r.broadcastLocked(nil, models.WSFrame{Type: "codeResponse", Data: resp})
}

// BroadcastAll sends a frame to every member, sender included.
func (r *Room) BroadcastAll(frame models.WSFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(nil, frame)
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Room) Snapshot() models.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomStatus{
		ID:        r.ID,
		Users:     r.rosterLocked(),
		Language:  r.language,
		CodeBytes: len(r.code),
		HasRun:    r.hasOutput,
	}
}

func (r *Room) rosterLocked() []string {
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Room) broadcastLocked(sender *Client, frame models.WSFrame) {
	for c := range r.clients {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}
