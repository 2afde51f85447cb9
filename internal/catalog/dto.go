package catalog

import (
	"github.com/ateliernord/commandes/pkg/db/models"
)

// ProductInput holds the validated payload to create or update a product.
// The price arrives as the operator typed it ("12,50 €", "12.50"); it is
// parsed to cents at this boundary.
type ProductInput struct {
	ID          int64  `json:"id" validate:"required"`
	Description string `json:"description" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Prix        string `json:"prix" validate:"required"`
	Marque      string `json:"marque"`
}

// ProductDTO is the API representation of a catalog row.
type ProductDTO struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Prix        string `json:"prix"`
	Marque      string `json:"marque"`
}

func newProductDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Description: p.Description,
		Type:        p.Type,
		Prix:        p.PriceCents.Format(),
		Marque:      p.Brand,
	}
}

func newProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, newProductDTO(p))
	}
	return dtos
}
