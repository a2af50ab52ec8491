package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/gotogro-members/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Upper bounds of the price_per_unit DECIMAL(10,2) and total_price DECIMAL(12,2) columns.
var (
	maxPricePerUnit = decimal.New(1, 8)
	maxTotalPrice   = decimal.New(1, 10)
)

const saleColumns = `id, member_id, item_name, purchase_quantity, price_per_unit, total_price, purchase_date`

func scanSale(row rowScanner) (*models.Sale, error) {
	var sale models.Sale
	if err := row.Scan(
		&sale.ID,
		&sale.MemberID,
		&sale.ItemName,
		&sale.PurchaseQuantity,
		&sale.PricePerUnit,
		&sale.TotalPrice,
		&sale.PurchaseDate,
	); err != nil {
		return nil, err
	}
	return &sale, nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return invalidf("purchase quantity must be a positive integer")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return invalidf("price per unit must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return invalidf("price per unit must have at most 2 decimal places")
	}
	if price.GreaterThanOrEqual(maxPricePerUnit) {
		return invalidf("price per unit must be below %s", maxPricePerUnit)
	}
	return nil
}

func validateTotal(total decimal.Decimal) error {
	if total.GreaterThanOrEqual(maxTotalPrice) {
		return invalidf("total price must be below %s", maxTotalPrice)
	}
	return nil
}

// totalPrice is quantity * pricePerUnit at two decimal places.
func totalPrice(quantity int, pricePerUnit decimal.Decimal) decimal.Decimal {
	return pricePerUnit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Record validates a purchase against the item's inventory and stores it.
// A rejected purchase writes nothing.
func (s *Service) Record(ctx context.Context, memberID int64, itemName string, quantity int, pricePerUnit decimal.Decimal) (*models.Sale, error) {
	itemName, err := normalizeItemName(itemName)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validatePrice(pricePerUnit); err != nil {
		return nil, err
	}

	sale := &models.Sale{
		MemberID:         memberID,
		ItemName:         itemName,
		PurchaseQuantity: quantity,
		PricePerUnit:     pricePerUnit.Round(2),
		TotalPrice:       totalPrice(quantity, pricePerUnit),
	}
	if err := validateTotal(sale.TotalPrice); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(itemName)
	defer unlock()

	var emitted []*models.Notification
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		member, err := s.memberName(ctx, tx, memberID)
		if err != nil {
			return err
		}

		inv, err := s.getOrCreate(ctx, tx, itemName)
		if err != nil {
			return err
		}

		agg, err := s.aggregate(ctx, tx, itemName)
		if err != nil {
			return err
		}
		if available := inv.InventoryAmount - agg.Sold; quantity > available {
			return &InsufficientInventoryError{ItemName: itemName, Requested: quantity, Available: available}
		}

		sale.PurchaseDate = s.now()
		query := `
			INSERT INTO sales
			(member_id, item_name, purchase_quantity, price_per_unit, total_price, purchase_date)
			VALUES (?, ?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			sale.MemberID, sale.ItemName, sale.PurchaseQuantity, sale.PricePerUnit, sale.TotalPrice, sale.PurchaseDate)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if sale.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("read sale id: %w", err)
		}

		if err := s.recompute(ctx, tx, inv); err != nil {
			return err
		}

		emitted, err = s.evaluate(ctx, tx, triggerContext{
			ItemName:   itemName,
			MemberID:   memberID,
			MemberName: member,
			Quantity:   quantity,
			Action:     actionCreate,
			Inventory:  inv,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientInventory) {
			s.log.Info("sale rejected", zap.String("item", itemName), zap.Int("quantity", quantity), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("member_id", memberID),
		zap.String("item", itemName),
		zap.Int("quantity", quantity),
		zap.String("total_price", sale.TotalPrice.StringFixed(2)),
		zap.Int("notifications", len(emitted)))
	return sale, nil
}

// Sale returns one of the member's sales.
func (s *Service) Sale(ctx context.Context, memberID, saleID int64) (*models.Sale, error) {
	return s.findSale(ctx, s.db, memberID, saleID, "")
}

func (s *Service) findSale(ctx context.Context, q querier, memberID, saleID int64, suffix string) (*models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = ? AND member_id = ?` + suffix
	sale, err := scanSale(q.QueryRowContext(ctx, query, saleID, memberID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sale %d: %w", saleID, ErrNotFound)
		}
		return nil, fmt.Errorf("load sale %d: %w", saleID, err)
	}
	return sale, nil
}

// History returns the member's sales, newest first.
func (s *Service) History(ctx context.Context, memberID int64) ([]*models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE member_id = ? ORDER BY purchase_date DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := []*models.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}
