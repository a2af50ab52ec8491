package sales

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/gotogro-members/internal/models"
	"go.uber.org/zap"
)

// Update changes the quantity of one of the member's sales. The total is
// recomputed from the sale's original price per unit; the purchase date is
// left untouched.
func (s *Service) Update(ctx context.Context, memberID, saleID int64, quantity int) (*models.Sale, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	// Neither the item name nor the price per unit ever changes, so both can
	// be read before taking the item lock.
	current, err := s.Sale(ctx, memberID, saleID)
	if err != nil {
		return nil, err
	}
	if err := validateTotal(totalPrice(quantity, current.PricePerUnit)); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(current.ItemName)
	defer unlock()

	var sale *models.Sale
	var emitted []*models.Notification
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		member, err := s.memberName(ctx, tx, memberID)
		if err != nil {
			return err
		}

		sale, err = s.findSale(ctx, tx, memberID, saleID, s.dialect.LockSuffix)
		if err != nil {
			return err
		}

		inv, err := s.getOrCreate(ctx, tx, sale.ItemName)
		if err != nil {
			return err
		}

		agg, err := s.aggregate(ctx, tx, sale.ItemName)
		if err != nil {
			return err
		}
		// Stock not committed to any other sale of this item.
		available := inv.InventoryAmount - (agg.Sold - sale.PurchaseQuantity)
		if quantity > available {
			return &InsufficientInventoryError{ItemName: sale.ItemName, Requested: quantity, Available: available}
		}

		sale.PurchaseQuantity = quantity
		sale.TotalPrice = totalPrice(quantity, sale.PricePerUnit)
		query := `UPDATE sales SET purchase_quantity = ?, total_price = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, query, sale.PurchaseQuantity, sale.TotalPrice, sale.ID); err != nil {
			return fmt.Errorf("update sale %d: %w", sale.ID, err)
		}

		if err := s.recompute(ctx, tx, inv); err != nil {
			return err
		}

		emitted, err = s.evaluate(ctx, tx, triggerContext{
			ItemName:   sale.ItemName,
			MemberID:   memberID,
			MemberName: member,
			Quantity:   quantity,
			Action:     actionUpdate,
			Inventory:  inv,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale updated",
		zap.Int64("sale_id", sale.ID),
		zap.String("item", sale.ItemName),
		zap.Int("quantity", quantity),
		zap.Int("notifications", len(emitted)))
	return sale, nil
}
