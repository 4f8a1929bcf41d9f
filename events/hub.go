package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/utils"
)

// Event types
const (
	EventOrderUpdate   = "order_update"
	EventLoyaltyUpdate = "loyalty_update"
	EventCardUpdate    = "card_update"
	EventConfigUpdate  = "config_update"
	EventStaffNotif    = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected staff screen (waiter, kitchen, bar, cashier,
// admin) for broadcast.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate pushes a changed order to every screen.
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order})
}

// BroadcastLoyaltyUpdate pushes a customer/points change.
func BroadcastLoyaltyUpdate(data interface{}) {
	broadcast(Message{Event: EventLoyaltyUpdate, Data: data})
}

// BroadcastCardUpdate pushes a card read/write result.
func BroadcastCardUpdate(data interface{}) {
	broadcast(Message{Event: EventCardUpdate, Data: data})
}

// BroadcastConfigUpdate tells screens to reload business parameters.
func BroadcastConfigUpdate() {
	broadcast(Message{Event: EventConfigUpdate, Data: nil})
}

// BroadcastStaffNotification sends a plain text notice.
func BroadcastStaffNotification(text string) {
	broadcast(Message{Event: EventStaffNotif, Data: text})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("marshaling event: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("sending event to %s client: %v", role, err)
		}
	}
}
