package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ateliernord/commandes/api/responses"
	"github.com/ateliernord/commandes/api/validators"
	"github.com/ateliernord/commandes/internal/cart"
	"github.com/ateliernord/commandes/internal/catalog"
	"github.com/ateliernord/commandes/pkg/logger"
)

type cartPayload struct {
	Panier cart.Document `json:"panier"`
	Total  string        `json:"total"`
}

func cartPayloadFrom(snap cart.Snapshot) cartPayload {
	return cartPayload{Panier: snap.Document(), Total: snap.Total.Format()}
}

// GetCart returns the current cart with its grand total.
func GetCart(cartSvc cart.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, cartPayloadFrom(cartSvc.Snapshot()))
	}
}

type addCartItemRequest struct {
	ID       int64 `json:"id" validate:"required,gt=0"`
	Quantite int   `json:"quantite" validate:"required,gt=0"`
}

// AddCartItem resolves the product in the catalog, snapshots it into the
// cart and increments the quantity when the line already exists.
func AddCartItem(catalogSvc catalog.Service, cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalogSvc.Get(r.Context(), payload.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cartSvc.AddOrIncrement(r.Context(), *product, payload.Quantite); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartPayloadFrom(cartSvc.Snapshot()))
	}
}

type setQuantityRequest struct {
	Quantite *int `json:"quantite" validate:"required,min=0"`
}

// SetCartItemQuantity overwrites a line's quantity. Zero removes the line;
// an id absent from the cart is left untouched.
func SetCartItemQuantity(cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cartSvc.SetQuantity(r.Context(), chi.URLParam(r, "id"), *payload.Quantite); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartPayloadFrom(cartSvc.Snapshot()))
	}
}

// RemoveCartItem deletes a line; an absent id is a no-op.
func RemoveCartItem(cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cartSvc.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartPayloadFrom(cartSvc.Snapshot()))
	}
}

// ClearCart empties the cart for a fresh order.
func ClearCart(cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cartSvc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartPayloadFrom(cartSvc.Snapshot()))
	}
}
