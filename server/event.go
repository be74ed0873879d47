package server

// Event is the struct sent and received from the websocket clients
type Event struct {
	Name string      `json:"name"`
	Data interface{} `json:"data"`
}

// Event names.
const (
	EventSubscribed = "subscribed"
	EventStarted    = "started"
	EventProgress   = "progress"
	EventFinished   = "finished"
	EventFailed     = "failed"
)

// ProgressData is the payload of started and progress events.
type ProgressData struct {
	Job     string  `json:"job"`
	Percent float32 `json:"percent"`
}

// FinishedData is the payload of finished events.
type FinishedData struct {
	Job       string `json:"job"`
	Grid      string `json:"grid,omitempty"`
	Obstacles uint64 `json:"obstacles"`
	Error     string `json:"error,omitempty"`
}

type subscribeRequest struct {
	Job string `mapstructure:"job" json:"job"`
}
