package realtime

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// EchoPrefix is prepended to every message sent back to a client.
const EchoPrefix = "Echo: "

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Echo upgrades the request and answers every inbound message with the same
// payload prefixed by EchoPrefix until the client disconnects or an I/O
// error occurs.  It blocks for the lifetime of the connection.
func Echo(hub *Hub, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		return err
	}
	id := uuid.NewString()
	hub.Add(id, conn)
	log.Printf("realtime: connection %s open (active=%d)", id, hub.Count())
	defer func() {
		_ = conn.Close()
		hub.Remove(id)
		log.Printf("realtime: connection %s closed (active=%d)", id, hub.Count())
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if !isNormalClose(err) {
				log.Printf("realtime: connection %s read: %v", id, err)
			}
			return nil
		}
		reply := make([]byte, 0, len(EchoPrefix)+len(msg))
		reply = append(reply, EchoPrefix...)
		reply = append(reply, msg...)
		if err := conn.WriteMessage(mt, reply); err != nil {
			log.Printf("realtime: connection %s write: %v", id, err)
			return nil
		}
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, websocket.ErrCloseSent)
}
