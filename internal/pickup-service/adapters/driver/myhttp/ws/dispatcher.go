package ws

import (
	"net/http"
	"sync"

	"waste-collect/internal/mylogger"
	websocketdto "waste-collect/internal/pickup-service/core/domain/websocket_dto"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// websocketUpgrader upgrades incoming HTTP requests into persistent
// websocket connections.
var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type ClientList map[*Client]bool

// Dispatcher tracks open citizen sessions and fans events out to them.
type Dispatcher struct {
	sync.RWMutex
	clients ClientList
	log     mylogger.Logger
}

func NewDispatcher(log mylogger.Logger) *Dispatcher {
	return &Dispatcher{
		clients: make(ClientList),
		log:     log,
	}
}

// WsHandler upgrades GET /ws/citizens/{citizen_id} into a session.
func (d *Dispatcher) WsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("wsHandler")
		citizenID := chi.URLParam(r, "citizen_id")

		if citizenID == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade connection", err)
			return
		}

		client := NewClient(r.Context(), conn, d, citizenID)
		d.AddClient(client)
		go client.ReadMessages()
		go client.WriteMessages()

		log.Info("citizen connected", "citizen_id", citizenID)
	}
}

func (d *Dispatcher) AddClient(client *Client) {
	d.Lock()
	defer d.Unlock()
	d.clients[client] = true
}

func (d *Dispatcher) RemoveClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.clients[client]; ok {
		client.conn.Close()
		delete(d.clients, client)
	}
}

// WriteToUser delivers an event to every open session of the user.
func (d *Dispatcher) WriteToUser(userID string, msg websocketdto.Event) {
	d.RLock()
	defer d.RUnlock()

	for client := range d.clients {
		if client.userID == userID {
			select {
			case client.egress <- msg:
			default:
				// Slow consumer, drop rather than block the dispatcher.
			}
		}
	}
}
