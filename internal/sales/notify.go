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

type saleAction string

const (
	actionCreate saleAction = "create"
	actionUpdate saleAction = "update"
)

// triggerContext describes the sale mutation that just happened.
type triggerContext struct {
	ItemName   string
	MemberID   int64
	MemberName string
	Quantity   int
	Action     saleAction
	Inventory  *models.Inventory
}

// evaluate applies the threshold rules after a sale create or update and
// writes one notification per rule that fires. Repeated crossings produce
// repeated notifications.
func (s *Service) evaluate(ctx context.Context, tx *sql.Tx, tc triggerContext) ([]*models.Notification, error) {
	th := s.cfg.Thresholds
	var emitted []*models.Notification

	member := tc.MemberName
	link := "/v1/inventory/" + tc.Inventory.Slug

	if tc.Quantity >= th.HighQuantityMin && tc.Quantity <= th.HighQuantityMax {
		verb := "recorded"
		if tc.Action == actionUpdate {
			verb = "updated"
		}
		emitted = append(emitted, &models.Notification{
			Type: models.NotificationHighPurchaseQuantity,
			Message: fmt.Sprintf("%s %s a high purchase quantity of %d for %s. Verification is required.",
				member, verb, tc.Quantity, tc.ItemName),
		})
	}

	if tc.Action == actionCreate {
		var total decimal.Decimal
		query := `SELECT COALESCE(SUM(total_price), 0) FROM sales WHERE item_name = ? AND member_id = ?`
		if err := tx.QueryRowContext(ctx, query, tc.ItemName, tc.MemberID).Scan(&total); err != nil {
			return nil, fmt.Errorf("sum sales amount: %w", err)
		}
		total = total.Round(2)
		if total.GreaterThan(th.HighSalesAmount) {
			emitted = append(emitted, &models.Notification{
				Type: models.NotificationHighSalesAmount,
				Message: fmt.Sprintf("%s has reached a total sales amount of $%s for %s, above the $%s threshold. Verification is required.",
					member, total.StringFixed(2), tc.ItemName, th.HighSalesAmount.StringFixed(2)),
			})
		}
	}

	if tc.Inventory.RemainingQuantity <= th.LowInventory {
		emitted = append(emitted, &models.Notification{
			Type:    models.NotificationLowInventory,
			Message: fmt.Sprintf("Inventory for %s is low: %d remaining.", tc.ItemName, tc.Inventory.RemainingQuantity),
		})
	}

	for _, n := range emitted {
		n.Link = &link
		n.TriggeredBy = &tc.MemberID
		if err := s.addNotification(ctx, tx, n); err != nil {
			return nil, err
		}
		s.log.Info("notification emitted",
			zap.String("type", string(n.Type)),
			zap.String("item", tc.ItemName),
			zap.Int64("member_id", tc.MemberID))
	}
	return emitted, nil
}

// addNotification inserts a notification inside the caller's transaction.
func (s *Service) addNotification(ctx context.Context, tx *sql.Tx, n *models.Notification) error {
	n.CreatedAt = s.now()
	query := `
		INSERT INTO notifications
		(type, message, link, is_read, created_at, triggered_by)
		VALUES (?, ?, ?, 0, ?, ?)`

	result, err := tx.ExecContext(ctx, query, string(n.Type), n.Message, n.Link, n.CreatedAt, n.TriggeredBy)
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	if n.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	return nil
}

func (s *Service) memberName(ctx context.Context, q querier, memberID int64) (string, error) {
	var username string
	err := q.QueryRowContext(ctx, `SELECT username FROM users WHERE id = ?`, memberID).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("member %d: %w", memberID, ErrNotFound)
		}
		return "", fmt.Errorf("load member %d: %w", memberID, err)
	}
	return username, nil
}
