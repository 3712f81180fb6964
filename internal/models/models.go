package models

// WSFrame is the envelope for every message crossing a room websocket.
// Inbound types: "join","codeChange","typing","languageChange",
// "compileRequest","leaveRoom". Outbound types: "codeUpdate",
// "languageUpdate","userJoined","userTyping","codeResponse","error".
type WSFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

/*** Inbound event payloads ***/

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type CodeChange struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type Typing struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type LanguageChange struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

// CompileRequest asks for a shared run of the room's document against the
// execution service. Version is optional and means "latest" when empty.
type CompileRequest struct {
	Code     string `json:"code"`
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
	Version  string `json:"version,omitempty"`
	Input    string `json:"input"`
}

/*** Execution service wire types ***/

type ExecFile struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

type ExecRequest struct {
	Language string     `json:"language"`
	Version  string     `json:"version"`
	Files    []ExecFile `json:"files"`
	Stdin    string     `json:"stdin"`
}

type ExecRun struct {
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
	Code   int    `json:"code,omitempty"`
	Output string `json:"output"`
}

// ExecResponse is broadcast to the whole room as the "codeResponse"
// payload. A response without a run object is treated as malformed.
type ExecResponse struct {
	Language string   `json:"language,omitempty"`
	Version  string   `json:"version,omitempty"`
	Run      *ExecRun `json:"run"`
}

/*** Observability ***/

type LanguageOption struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// RoomStatus is a point-in-time copy of a room, used by the REST status
// endpoint and the Redis status mirror.
type RoomStatus struct {
	ID        string   `json:"id"`
	Users     []string `json:"users"`
	Language  string   `json:"language"`
	CodeBytes int      `json:"codeBytes"`
	HasRun    bool     `json:"hasRun"`
}
