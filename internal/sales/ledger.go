package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/01moynul/gotogro-members/internal/models"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const inventoryColumns = `id, item_name, slug, inventory_amount, remaining_quantity, recommended_inventory_level, updated_at`

func scanInventory(row rowScanner) (*models.Inventory, error) {
	var inv models.Inventory
	if err := row.Scan(
		&inv.ID,
		&inv.ItemName,
		&inv.Slug,
		&inv.InventoryAmount,
		&inv.RemainingQuantity,
		&inv.RecommendedInventoryLevel,
		&inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

// saleAggregate summarizes every sale recorded for one item.
type saleAggregate struct {
	Count   int
	Sold    int
	Average float64
}

func (s *Service) aggregate(ctx context.Context, q querier, itemName string) (saleAggregate, error) {
	var agg saleAggregate
	query := `
		SELECT COUNT(*), COALESCE(SUM(purchase_quantity), 0), COALESCE(AVG(purchase_quantity), 0)
		FROM sales
		WHERE item_name = ?`
	if err := q.QueryRowContext(ctx, query, itemName).Scan(&agg.Count, &agg.Sold, &agg.Average); err != nil {
		return saleAggregate{}, fmt.Errorf("aggregate sales for %s: %w", itemName, err)
	}
	return agg, nil
}

// recommendedLevel is twice the average purchase quantity, or the default
// when the item has never sold.
func recommendedLevel(agg saleAggregate, fallback int) int {
	if agg.Count == 0 {
		return fallback
	}
	return int(math.Round(2 * agg.Average))
}

// lockInventory loads the inventory row for an item, holding its row lock
// until the transaction ends where the dialect supports it.
func (s *Service) lockInventory(ctx context.Context, tx *sql.Tx, itemName string) (*models.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE item_name = ?` + s.dialect.LockSuffix
	inv, err := scanInventory(tx.QueryRowContext(ctx, query, itemName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("inventory for %s: %w", itemName, ErrNotFound)
		}
		return nil, fmt.Errorf("load inventory for %s: %w", itemName, err)
	}
	return inv, nil
}

// getOrCreate returns the locked inventory row for an item, creating it with
// the default amount on first use.
func (s *Service) getOrCreate(ctx context.Context, tx *sql.Tx, itemName string) (*models.Inventory, error) {
	query := s.dialect.InsertIgnore + ` INTO inventory
		(item_name, slug, inventory_amount, remaining_quantity, recommended_inventory_level, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		itemName, slug.Make(itemName), s.cfg.DefaultInventoryAmount, s.cfg.DefaultRecommendedLevel, s.now())
	if err != nil {
		return nil, fmt.Errorf("create inventory for %s: %w", itemName, err)
	}

	inv, err := s.lockInventory(ctx, tx, itemName)
	if err != nil {
		return nil, err
	}

	// remaining_quantity was inserted as a placeholder
	if created, _ := result.RowsAffected(); created > 0 {
		s.log.Info("inventory created", zap.String("item", itemName), zap.Int("amount", inv.InventoryAmount))
		if err := s.recompute(ctx, tx, inv); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// recompute derives remaining_quantity and recommended_inventory_level from
// the full sales aggregate and persists them. The aggregate is the only
// source of truth for both values.
func (s *Service) recompute(ctx context.Context, tx *sql.Tx, inv *models.Inventory) error {
	agg, err := s.aggregate(ctx, tx, inv.ItemName)
	if err != nil {
		return err
	}

	inv.RemainingQuantity = inv.InventoryAmount - agg.Sold
	inv.RecommendedInventoryLevel = recommendedLevel(agg, s.cfg.DefaultRecommendedLevel)
	inv.UpdatedAt = s.now()

	query := `
		UPDATE inventory
		SET remaining_quantity = ?, recommended_inventory_level = ?, updated_at = ?
		WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, inv.RemainingQuantity, inv.RecommendedInventoryLevel, inv.UpdatedAt, inv.ID); err != nil {
		return fmt.Errorf("update inventory for %s: %w", inv.ItemName, err)
	}
	return nil
}

// Recompute refreshes the derived fields of an existing inventory row.
func (s *Service) Recompute(ctx context.Context, itemName string) (*models.Inventory, error) {
	itemName, err := normalizeItemName(itemName)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(itemName)
	defer unlock()

	var inv *models.Inventory
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		inv, err = s.lockInventory(ctx, tx, itemName)
		if err != nil {
			return err
		}
		return s.recompute(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// SetAmount replaces an item's inventory_amount. The amount may not drop
// below the quantity already sold.
func (s *Service) SetAmount(ctx context.Context, itemName string, amount int) (*models.Inventory, error) {
	itemName, err := normalizeItemName(itemName)
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, invalidf("inventory amount must not be negative")
	}
	if amount > math.MaxInt32 {
		return nil, invalidf("inventory amount must be at most %d", math.MaxInt32)
	}

	unlock := s.locks.lock(itemName)
	defer unlock()

	var inv *models.Inventory
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		inv, err = s.getOrCreate(ctx, tx, itemName)
		if err != nil {
			return err
		}

		agg, err := s.aggregate(ctx, tx, itemName)
		if err != nil {
			return err
		}
		if amount < agg.Sold {
			return &BelowCommittedError{ItemName: itemName, Amount: amount, Committed: agg.Sold}
		}

		inv.InventoryAmount = amount
		if _, err := tx.ExecContext(ctx, `UPDATE inventory SET inventory_amount = ? WHERE id = ?`, amount, inv.ID); err != nil {
			return fmt.Errorf("set inventory amount for %s: %w", itemName, err)
		}
		return s.recompute(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("inventory amount set",
		zap.String("item", itemName),
		zap.Int("amount", inv.InventoryAmount),
		zap.Int("remaining", inv.RemainingQuantity))
	return inv, nil
}

// Inventory returns the inventory row for an item name.
func (s *Service) Inventory(ctx context.Context, itemName string) (*models.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE item_name = ?`
	inv, err := scanInventory(s.db.QueryRowContext(ctx, query, itemName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("inventory for %s: %w", itemName, ErrNotFound)
		}
		return nil, err
	}
	return inv, nil
}

// InventoryBySlug returns the oldest inventory row whose slug matches.
func (s *Service) InventoryBySlug(ctx context.Context, itemSlug string) (*models.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE slug = ? ORDER BY id ASC LIMIT 1`
	inv, err := scanInventory(s.db.QueryRowContext(ctx, query, itemSlug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("inventory %q: %w", itemSlug, ErrNotFound)
		}
		return nil, err
	}
	return inv, nil
}

// ListInventory returns every inventory row ordered by item name.
func (s *Service) ListInventory(ctx context.Context) ([]*models.Inventory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+inventoryColumns+` FROM inventory ORDER BY item_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	items := []*models.Inventory{}
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}
