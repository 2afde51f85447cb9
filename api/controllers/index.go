package controllers

import (
	"net/http"

	"github.com/ateliernord/commandes/api/web"
)

// Index serves the shared shopping page phones land on from the QR code.
func Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(web.IndexHTML)
	}
}
