package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/whyyagswhy/dealcalc-sub000/internal/productname"
)

const listPriceBookProducts = `SELECT id::text, category, edition, monthly_list_price::text, annual_list_price::text
FROM price_book_products
ORDER BY sort_order, category, edition`

// ListPriceBookProducts returns the catalog.
func (q *Queries) ListPriceBookProducts(ctx context.Context) ([]productname.PriceBookProduct, error) {
	rows, err := q.db.Query(ctx, listPriceBookProducts)
	if err != nil {
		return nil, fmt.Errorf("list price book: %w", err)
	}
	defer rows.Close()

	var out []productname.PriceBookProduct
	for rows.Next() {
		var (
			id, edition, monthly string
			annual               *string
			p                    productname.PriceBookProduct
		)
		if err := rows.Scan(&id, &p.Category, &edition, &monthly, &annual); err != nil {
			return nil, fmt.Errorf("scan price book product: %w", err)
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("price book product id: %w", err)
		}
		p.Edition = editionFromColumn(edition)
		p.Name = productname.Build(p.Category, p.Edition)
		m, err := parseNumeric(&monthly)
		if err != nil {
			return nil, fmt.Errorf("price book product %s: %w", p.ID, err)
		}
		if m != nil {
			p.MonthlyListPrice = *m
		}
		if p.AnnualListPrice, err = parseNumeric(annual); err != nil {
			return nil, fmt.Errorf("price book product %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list price book: %w", err)
	}
	return out, nil
}

const upsertPriceBookProduct = `INSERT INTO price_book_products (category, edition, monthly_list_price, annual_list_price, sort_order)
VALUES ($1, $2, $3::numeric, $4::numeric, $5)
ON CONFLICT (category, edition) DO UPDATE
SET monthly_list_price = EXCLUDED.monthly_list_price,
    annual_list_price  = EXCLUDED.annual_list_price,
    sort_order         = EXCLUDED.sort_order,
    updated_at         = now()
RETURNING id::text`

// UpsertPriceBookProduct inserts or reprices a catalog row keyed by category
// and edition.
func (q *Queries) UpsertPriceBookProduct(ctx context.Context, p productname.PriceBookProduct, sortOrder int) (uuid.UUID, error) {
	var id string
	monthly := p.MonthlyListPrice.String()
	err := q.db.QueryRow(ctx, upsertPriceBookProduct,
		p.Category, editionParam(p.Edition), monthly, numericParam(p.AnnualListPrice), sortOrder,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert price book product %q: %w", p.DisplayName(), err)
	}
	return uuid.Parse(id)
}
