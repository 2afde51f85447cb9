package catalog

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ateliernord/commandes/pkg/db/models"
	pkgerrors "github.com/ateliernord/commandes/pkg/errors"
	"github.com/ateliernord/commandes/pkg/money"
)

// Transfer moves the whole catalog to and from the tabular xlsx format used
// for bulk exchange: a header row then one row per product, prices in their
// formatted form.
type Transfer interface {
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader) (int, error)
}

var transferHeader = []string{"ID", "Description", "Type", "Prix", "Marque"}

func (s *service) Export(ctx context.Context, w io.Writer) error {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing catalog")
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(transferHeader))
	for i, h := range transferHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing export header")
	}

	for i, p := range products {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{p.ID, p.Description, p.Type, p.PriceCents.Format(), p.Brand}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing export row")
		}
	}

	if err := f.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing workbook")
	}
	return nil
}

// Import replaces the entire catalog with the workbook contents. Every row
// is parsed and validated before the database is touched; on any row error
// the catalog is left exactly as it was. Returns the number of imported rows.
func (s *service) Import(ctx context.Context, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading sheet")
	}
	if len(rows) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no header row")
	}
	if err := checkHeader(rows[0]); err != nil {
		return 0, err
	}

	products, err := parseRows(rows[1:])
	if err != nil {
		return 0, err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceAll(ctx, products)
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "replacing catalog")
	}
	return len(products), nil
}

func checkHeader(header []string) error {
	if len(header) < len(transferHeader) {
		return pkgerrors.New(pkgerrors.CodeValidation, "header row is incomplete").
			WithDetails(map[string]any{"attendu": transferHeader})
	}
	for i, want := range transferHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unexpected header row").
				WithDetails(map[string]any{"attendu": transferHeader, "recu": header})
		}
	}
	return nil
}

func parseRows(rows [][]string) ([]models.Product, error) {
	var (
		products []models.Product
		rowErrs  error
		seen     = map[int64]int{}
	)

	for i, row := range rows {
		line := i + 2
		if isBlankRow(row) {
			continue
		}

		product, err := parseRow(row)
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("ligne %d: %w", line, err))
			continue
		}

		if prevLine, dup := seen[product.ID]; dup {
			rowErrs = multierr.Append(rowErrs,
				fmt.Errorf("ligne %d: id %d already used on ligne %d", line, product.ID, prevLine))
			continue
		}
		seen[product.ID] = line
		products = append(products, product)
	}

	if rowErrs != nil {
		details := make([]string, 0, len(multierr.Errors(rowErrs)))
		for _, e := range multierr.Errors(rowErrs) {
			details = append(details, e.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataIntegrity, rowErrs, "import rejected").
			WithDetails(map[string]any{"lignes": details})
	}
	return products, nil
}

func parseRow(row []string) (models.Product, error) {
	if len(row) < 4 {
		return models.Product{}, fmt.Errorf("row has %d columns, want at least 4", len(row))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid id %q", row[0])
	}
	if id <= 0 {
		return models.Product{}, fmt.Errorf("id %d must be positive", id)
	}

	cents, err := money.Parse(row[3])
	if err != nil {
		return models.Product{}, err
	}
	if cents < 0 {
		return models.Product{}, fmt.Errorf("negative prix %q", row[3])
	}

	var brand string
	if len(row) > 4 {
		brand = strings.TrimSpace(row[4])
	}

	return models.Product{
		ID:          id,
		Description: strings.TrimSpace(row[1]),
		Type:        strings.TrimSpace(row[2]),
		PriceCents:  cents,
		Brand:       brand,
	}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
