package models

import "github.com/ateliernord/commandes/pkg/money"

// Product is a row of the catalog table. The price is stored in cents;
// the "12.50 €" form exists only at presentation boundaries.
type Product struct {
	ID          int64       `gorm:"column:id;primaryKey"`
	Description string      `gorm:"column:description;not null"`
	Type        string      `gorm:"column:type;not null"`
	PriceCents  money.Cents `gorm:"column:prix_cents;not null"`
	Brand       string      `gorm:"column:marque;not null"`
}

// TableName keeps the legacy table name.
func (Product) TableName() string {
	return "produits"
}
