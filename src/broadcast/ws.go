package broadcast

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades the request to a websocket and streams hub messages
// for the symbols named in the "symbols" query parameter.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("symbols")
		if raw == "" {
			http.Error(w, "symbols query parameter is required", http.StatusBadRequest)
			return
		}
		symbols := strings.Split(raw, ",")
		for i := range symbols {
			symbols[i] = strings.ToUpper(strings.TrimSpace(symbols[i]))
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}

		sub := hub.Subscribe(symbols)

		// Reader goroutine: we never expect client messages, but reading
		// is what surfaces the close frame.
		go func() {
			defer hub.Unsubscribe(sub)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		go func() {
			defer conn.Close()
			for msg := range sub.C() {
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}()
	}
}
