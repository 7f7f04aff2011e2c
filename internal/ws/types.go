package ws

const (
	// server - client
	MsgReady        = "ready"
	MsgTasksChanged = "tasks_changed"
	MsgError        = "error"

	// client - server
	MsgPing = "ping"
	MsgPong = "pong"
)
