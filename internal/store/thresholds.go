package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/whyyagswhy/dealcalc-sub000/internal/approval"
)

const listDiscountThresholds = `SELECT id::text, product_name, qty_min, qty_max,
       level0_max::text, level1_max::text, level2_max::text, level3_max::text, level4_max::text
FROM discount_thresholds
ORDER BY sort_order, id`

// ListDiscountThresholds returns the matrix in seeding order, which is the
// tie-break order of the resolver.
func (q *Queries) ListDiscountThresholds(ctx context.Context) ([]approval.DiscountThreshold, error) {
	rows, err := q.db.Query(ctx, listDiscountThresholds)
	if err != nil {
		return nil, fmt.Errorf("list discount thresholds: %w", err)
	}
	defer rows.Close()

	var out []approval.DiscountThreshold
	for rows.Next() {
		var (
			id     string
			t      approval.DiscountThreshold
			levels [approval.LevelCount]*string
		)
		if err := rows.Scan(&id, &t.ProductName, &t.QtyMin, &t.QtyMax,
			&levels[0], &levels[1], &levels[2], &levels[3], &levels[4]); err != nil {
			return nil, fmt.Errorf("scan discount threshold: %w", err)
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("discount threshold id: %w", err)
		}
		targets := [approval.LevelCount]**decimal.Decimal{&t.Level0Max, &t.Level1Max, &t.Level2Max, &t.Level3Max, &t.Level4Max}
		for i, raw := range levels {
			if *targets[i], err = parseNumeric(raw); err != nil {
				return nil, fmt.Errorf("discount threshold %s level %d: %w", t.ID, i, err)
			}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list discount thresholds: %w", err)
	}
	return out, nil
}

const insertDiscountThreshold = `INSERT INTO discount_thresholds
    (product_name, qty_min, qty_max, level0_max, level1_max, level2_max, level3_max, level4_max, sort_order)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9)
RETURNING id::text`

// InsertDiscountThreshold stores one matrix row. sortOrder preserves the
// position of the row in its source so lookups keep first-row-wins ties.
func (q *Queries) InsertDiscountThreshold(ctx context.Context, t approval.DiscountThreshold, sortOrder int) (uuid.UUID, error) {
	var id string
	err := q.db.QueryRow(ctx, insertDiscountThreshold,
		t.ProductName, t.QtyMin, t.QtyMax,
		numericParam(t.Level0Max), numericParam(t.Level1Max), numericParam(t.Level2Max),
		numericParam(t.Level3Max), numericParam(t.Level4Max), sortOrder,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert discount threshold %q: %w", t.ProductName, err)
	}
	return uuid.Parse(id)
}

// DeleteAllDiscountThresholds clears the matrix ahead of a full reseed.
func (q *Queries) DeleteAllDiscountThresholds(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM discount_thresholds`)
	if err != nil {
		return 0, fmt.Errorf("delete discount thresholds: %w", err)
	}
	return tag.RowsAffected(), nil
}
