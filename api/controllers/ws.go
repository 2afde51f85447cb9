package controllers

import (
	"net/http"

	"github.com/ateliernord/commandes/internal/hub"
)

// Websocket hands the connection to the push hub.
func Websocket(h *hub.Hub) http.HandlerFunc {
	return h.HandleWS
}
