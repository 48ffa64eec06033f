package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active connections and broadcasts messages to them.
type Hub struct {
	// Registered connections.
	clients map[*Client]bool

	// Inbound messages for global broadcast.
	Broadcast chan []byte

	// Register requests from connections.
	Register chan *Client

	// Unregister requests from connections.
	Unregister chan *Client

	// A map of account IDs to the set of connections subscribed to them.
	subscriptions map[string]map[*Client]bool

	// Targeted messages for a single account's connections.
	direct chan directMessage
}

type directMessage struct {
	accountID string
	payload   []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		direct:        make(chan directMessage, 64),
	}
}

// Run starts the Hub's message processing loop. All connection maps are owned
// by this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if client.AccountID != "" {
				h.addSubscription(client, client.AccountID)
			}
			log.Info().Int("total_clients", len(h.clients)).Msg("Websocket client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Websocket client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		case msg := <-h.direct:
			for client := range h.subscriptions[msg.accountID] {
				select {
				case client.Send <- msg.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
					delete(h.subscriptions[msg.accountID], client)
				}
			}
		}
	}
}

// BroadcastTo sends a message to every connection of one account.
func (h *Hub) BroadcastTo(accountID string, message []byte) {
	select {
	case h.direct <- directMessage{accountID: accountID, payload: message}:
	default:
		log.Warn().Str("account_id", accountID).Msg("Dropping websocket message, hub backlog full")
	}
}

func (h *Hub) addSubscription(client *Client, accountID string) {
	if h.subscriptions[accountID] == nil {
		h.subscriptions[accountID] = make(map[*Client]bool)
	}
	h.subscriptions[accountID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for accountID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, accountID)
			}
		}
	}
}
