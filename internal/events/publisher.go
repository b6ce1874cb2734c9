package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Lifecycle event names. Published on the "boardgame.events.<name>" subject.
const (
	GameCreated  = "game.created"
	GameStarted  = "game.started"
	GameFinished = "game.finished"
	GameExpired  = "game.expired"
)

const subjectPrefix = "boardgame.events."

// Publisher pushes game lifecycle events to a NATS broker for whoever wants
// to observe the server (lobby dashboards, analytics). With no broker URL
// configured the publisher is a no-op; gameplay never depends on it.
type Publisher struct {
	nc  *nats.Conn
	log *zap.SugaredLogger
}

// envelope is the wire shape of every published event.
type envelope struct {
	Event string            `json:"event"`
	At    int64             `json:"at"`
	Data  map[string]string `json:"data"`
}

// NewPublisher connects to the broker at url. An empty url yields a disabled
// publisher; a failed connect is logged and also yields a disabled one.
func NewPublisher(url string, log *zap.SugaredLogger) *Publisher {
	if url == "" {
		return &Publisher{log: log}
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		log.Warnw("event broker unavailable, events disabled", "url", url, "error", err)
		return &Publisher{log: log}
	}

	log.Infow("event broker connected", "url", url)
	return &Publisher{nc: nc, log: log}
}

// Publish fires one event. Errors are logged, never returned: an unreachable
// broker must not slow a game down.
func (p *Publisher) Publish(event string, data map[string]string) {
	if p == nil || p.nc == nil {
		return
	}

	payload, err := json.Marshal(envelope{
		Event: event,
		At:    time.Now().UnixMilli(),
		Data:  data,
	})
	if err != nil {
		p.log.Errorw("marshalling event", "event", event, "error", err)
		return
	}
	if err := p.nc.Publish(subjectPrefix+event, payload); err != nil {
		p.log.Warnw("publishing event", "event", event, "error", err)
	}
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}
