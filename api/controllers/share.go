package controllers

import (
	"net/http"
	"strconv"

	"github.com/ateliernord/commandes/api/responses"
	"github.com/ateliernord/commandes/internal/cart"
	"github.com/ateliernord/commandes/internal/share"
	"github.com/ateliernord/commandes/pkg/config"
	"github.com/ateliernord/commandes/pkg/logger"
)

// CartSummary renders the cart as the tab separated order text.
func CartSummary(cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := share.Summary(cartSvc.Snapshot())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(text)))
		if _, err := w.Write([]byte(text)); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "summary write interrupted")
		}
	}
}

// CartQR serves a PNG QR code pointing phones at the shopping page.
func CartQR(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := share.ShareURL(cfg.Share.PublicURL, r.Host)
		png, err := share.QRPNG(url)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		if _, err := w.Write(png); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "qr write interrupted")
		}
	}
}
