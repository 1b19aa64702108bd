package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/events"
)

// PropertyAll subscribes a client to events from every property.
const PropertyAll = "*"

// LiveClient represents a single connected dashboard client.
type LiveClient struct {
	Conn     *websocket.Conn
	Property string
	Send     chan []byte
}

// NewLiveClient wraps a websocket connection for the broadcaster.
func NewLiveClient(conn *websocket.Conn, property string) *LiveClient {
	return &LiveClient{
		Conn:     conn,
		Property: property,
		Send:     make(chan []byte, config.LiveSendBuffer),
	}
}

// WritePump drains the send channel onto the websocket until the
// channel closes or a write fails.
func (c *LiveClient) WritePump() {
	ticker := time.NewTicker(config.LivePingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.LiveWriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.LiveWriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// LiveBroadcaster manages all connected live-feed clients and fans
// ingested events out to them.
type LiveBroadcaster struct {
	propertyClients map[string]map[*LiveClient]bool
	register        chan *LiveClient
	unregister      chan *LiveClient
	broadcast       chan []events.AnalyticsEvent
	logger          *logging.ChanneledLogger
	mu              sync.RWMutex
}

// NewLiveBroadcaster creates a new broadcaster instance.
func NewLiveBroadcaster(logger *logging.ChanneledLogger) *LiveBroadcaster {
	return &LiveBroadcaster{
		propertyClients: make(map[string]map[*LiveClient]bool),
		register:        make(chan *LiveClient),
		unregister:      make(chan *LiveClient),
		broadcast:       make(chan []events.AnalyticsEvent, 64),
		logger:          logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *LiveBroadcaster) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			if len(b.propertyClients[client.Property]) >= config.LiveMaxSubscribers {
				b.mu.Unlock()
				close(client.Send)
				b.logger.Live().Warn("Live client rejected, subscriber limit reached",
					"property", client.Property,
					"limit", config.LiveMaxSubscribers)
				continue
			}
			if _, ok := b.propertyClients[client.Property]; !ok {
				b.propertyClients[client.Property] = make(map[*LiveClient]bool)
			}
			b.propertyClients[client.Property][client] = true
			b.mu.Unlock()
			b.logger.Live().Debug("Live client registered", "property", client.Property)

		case client := <-b.unregister:
			b.mu.Lock()
			if clients, ok := b.propertyClients[client.Property]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(b.propertyClients, client.Property)
					}
				}
			}
			b.mu.Unlock()
			b.logger.Live().Debug("Live client unregistered", "property", client.Property)

		case batch := <-b.broadcast:
			b.fanOut(batch)
		}
	}
}

// Register queues a client for registration.
func (b *LiveBroadcaster) Register(client *LiveClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *LiveBroadcaster) Unregister(client *LiveClient) {
	b.unregister <- client
}

// BroadcastEvents queues a batch of ingested events for fan-out.
// Drops the batch when the broadcast buffer is full rather than
// blocking the ingest path.
func (b *LiveBroadcaster) BroadcastEvents(batch []events.AnalyticsEvent) {
	if len(batch) == 0 {
		return
	}
	select {
	case b.broadcast <- batch:
	default:
		b.logger.Live().Warn("Live broadcast buffer full, dropping batch", "count", len(batch))
	}
}

// SubscriberCount returns the number of clients watching a property.
func (b *LiveBroadcaster) SubscriberCount(property string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.propertyClients[property])
}

func (b *LiveBroadcaster) fanOut(batch []events.AnalyticsEvent) {
	for _, event := range batch {
		message, err := json.Marshal(event)
		if err != nil {
			b.logger.Live().Error("Failed to marshal live event", "error", err.Error(), "eventId", event.ID)
			continue
		}

		b.mu.RLock()
		for _, property := range []string{event.Property, PropertyAll} {
			for client := range b.propertyClients[property] {
				select {
				case client.Send <- message:
				default:
					// Slow consumers miss events instead of stalling the hub
				}
			}
		}
		b.mu.RUnlock()
	}
}
