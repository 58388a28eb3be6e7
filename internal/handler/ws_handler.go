/*
Package handler provides the HTTP handler function for WebSocket connection upgrading.

HandleWebSocket upgrades the request and hands the socket to the chat Gateway, which
owns the connection from then on. Room and username arrive later in the join event.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"eventchat/internal/app/chat"
	"eventchat/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(gateway *chat.Gateway, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// the upgrader has already written the HTTP error
			logx.Warn("Failed to upgrade connection to WebSocket", "error", err.Error())
			return
		}

		gateway.Serve(conn)
	}
}
