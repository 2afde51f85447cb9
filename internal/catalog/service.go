package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ateliernord/commandes/pkg/db"
	"github.com/ateliernord/commandes/pkg/db/models"
	pkgerrors "github.com/ateliernord/commandes/pkg/errors"
	"github.com/ateliernord/commandes/pkg/money"
)

// Service exposes catalog management and search.
type Service interface {
	Create(ctx context.Context, input ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id int64, input ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Product, error)
	Search(ctx context.Context, freeText string) ([]ProductDTO, error)
	SearchShopping(ctx context.Context, freeText string) ([]ProductDTO, error)
	Transfer
}

// cartPresence reports whether a product id currently sits in the cart.
// Deleting such a product is blocked: the cart entry is a snapshot and would
// survive, but the operator expects what they see in the cart to still exist.
type cartPresence interface {
	Contains(productID int64) bool
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	cart     cartPresence
}

// NewService constructs the catalog service.
func NewService(repo *Repository, dbClient *db.Client, cart cartPresence) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart presence checker required")
	}
	return &service{repo: repo, dbClient: dbClient, cart: cart}, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, product.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "product id already exists").
			WithDetails(map[string]any{"id": product.ID})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading product")
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating product")
	}

	dto := newProductDTO(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int64, input ProductInput) (*ProductDTO, error) {
	input.ID = id
	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading product")
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating product")
	}

	dto := newProductDTO(*product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if s.cart.Contains(id) {
		return pkgerrors.New(pkgerrors.CodeConflict, "product is in the current cart")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deleting product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading product")
	}
	return product, nil
}

// Search runs the management search: keyword filter, id order.
func (s *service) Search(ctx context.Context, freeText string) ([]ProductDTO, error) {
	products, err := s.repo.Search(ctx, freeText, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "searching catalog")
	}
	return newProductDTOs(products), nil
}

// SearchShopping runs the same keyword filter but orders by ascending price
// for the shopping view.
func (s *service) SearchShopping(ctx context.Context, freeText string) ([]ProductDTO, error) {
	products, err := s.repo.Search(ctx, freeText, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "searching catalog")
	}
	return newProductDTOs(products), nil
}

func productFromInput(input ProductInput) (*models.Product, error) {
	if input.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id must be a positive integer")
	}
	cents, err := money.Parse(input.Prix)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid prix").
			WithDetails(map[string]any{"prix": input.Prix})
	}
	if cents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prix must not be negative")
	}
	return &models.Product{
		ID:          input.ID,
		Description: input.Description,
		Type:        input.Type,
		PriceCents:  cents,
		Brand:       input.Marque,
	}, nil
}
