package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ateliernord/commandes/pkg/db/models"
)

// Repository wraps catalog persistence over the shared GORM connection.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts the product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update overwrites the editable fields of an existing row.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("description", "type", "prix_cents", "marque").
		Updates(product).Error
}

// Delete removes the row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListAll returns the whole catalog ordered by id.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Search filters the catalog with the shared keyword semantics: the free
// text is split on whitespace, every keyword must match, and a keyword
// matches when it is a case-insensitive substring of the description, the
// type, or the marque. Empty input returns the whole catalog. Management
// surfaces order by id, the shopping surface by ascending price.
func (r *Repository) Search(ctx context.Context, freeText string, byPrice bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	for _, keyword := range strings.Fields(strings.ToUpper(freeText)) {
		pattern := "%" + keyword + "%"
		query = query.Where(
			"(UPPER(description) LIKE ? OR UPPER(type) LIKE ? OR UPPER(marque) LIKE ?)",
			pattern, pattern, pattern,
		)
	}

	order := "id"
	if byPrice {
		order = "prix_cents, id"
	}

	var products []models.Product
	if err := query.Order(order).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ReplaceAll clears the catalog and inserts the given rows. Callers run it
// inside a transaction so a failed import leaves the catalog untouched.
func (r *Repository) ReplaceAll(ctx context.Context, products []models.Product) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	return tx.Create(&products).Error
}
