package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *Service) itemNames(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list affected items: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan item name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// errItemsChanged aborts a transaction whose affected items were not all locked.
var errItemsChanged = errors.New("affected items changed")

// inTxLockingItems runs fn in a transaction while holding the lock of every
// item the query returns. The query is repeated inside the transaction; if it
// names an item that is not locked yet, the transaction is rolled back and
// retried with that item locked as well.
func (s *Service) inTxLockingItems(ctx context.Context, locked []string, query string, args []any, fn func(tx *sql.Tx, names []string) error) error {
	for {
		var missing []string
		unlock := s.locks.lock(locked...)
		err := s.inTx(ctx, func(tx *sql.Tx) error {
			names, err := s.itemNames(ctx, tx, query, args...)
			if err != nil {
				return err
			}
			missing = notIn(names, locked)
			if len(missing) > 0 {
				return errItemsChanged
			}
			return fn(tx, names)
		})
		unlock()

		if !errors.Is(err, errItemsChanged) {
			return err
		}
		s.log.Debug("affected items changed, retrying", zap.Strings("items", missing))
		locked = append(append([]string(nil), locked...), missing...)
	}
}

func notIn(names, set []string) []string {
	seen := make(map[string]bool, len(set))
	for _, n := range set {
		seen[n] = true
	}
	var out []string
	for _, n := range names {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}

// recomputeItems refreshes the ledger of every listed item.
func (s *Service) recomputeItems(ctx context.Context, tx *sql.Tx, names []string) error {
	for _, name := range names {
		inv, err := s.getOrCreate(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := s.recompute(ctx, tx, inv); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the listed sales owned by the member and restores their
// quantities to the affected inventories. Ids that do not belong to the
// member are ignored. It returns the number of sales deleted.
func (s *Service) Delete(ctx context.Context, memberID int64, saleIDs []int64) (int, error) {
	if len(saleIDs) == 0 {
		return 0, invalidf("no sales have been selected for deletion")
	}

	args := make([]any, 0, len(saleIDs)+1)
	args = append(args, memberID)
	for _, id := range saleIDs {
		args = append(args, id)
	}
	where := `member_id = ? AND id IN (` + placeholders(len(saleIDs)) + `)`
	query := `SELECT DISTINCT item_name FROM sales WHERE ` + where

	names, err := s.itemNames(ctx, s.db, query, args...)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}

	var deleted int64
	err = s.inTxLockingItems(ctx, names, query, args, func(tx *sql.Tx, affected []string) error {
		names = affected
		result, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE `+where, args...)
		if err != nil {
			return fmt.Errorf("delete sales: %w", err)
		}
		if deleted, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("count deleted sales: %w", err)
		}
		return s.recomputeItems(ctx, tx, affected)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("sales deleted", zap.Int64("member_id", memberID), zap.Int64("count", deleted), zap.Strings("items", names))
	return int(deleted), nil
}

// RemoveMember deletes a member together with its profile, transactions and
// sales. Notifications it triggered are kept with no triggering member, and
// the inventories of its sold items are recomputed.
func (s *Service) RemoveMember(ctx context.Context, memberID int64) error {
	names, err := s.itemNames(ctx, s.db, memberItemsQuery, memberID)
	if err != nil {
		return err
	}
	return s.removeMember(ctx, memberID, names)
}

const memberItemsQuery = `SELECT DISTINCT item_name FROM sales WHERE member_id = ?`

// removeMember starts out holding the locks of the given items; any item
// sold since they were read is picked up inside the transaction.
func (s *Service) removeMember(ctx context.Context, memberID int64, names []string) error {
	err := s.inTxLockingItems(ctx, names, memberItemsQuery, []any{memberID}, func(tx *sql.Tx, affected []string) error {
		names = affected
		if _, err := s.memberName(ctx, tx, memberID); err != nil {
			return err
		}

		statements := []struct {
			what  string
			query string
		}{
			{"detach notifications", `UPDATE notifications SET triggered_by = NULL WHERE triggered_by = ?`},
			{"delete sales", `DELETE FROM sales WHERE member_id = ?`},
			{"delete transactions", `DELETE FROM transactions WHERE user_id = ?`},
			{"delete profile", `DELETE FROM profiles WHERE user_id = ?`},
			{"delete user", `DELETE FROM users WHERE id = ?`},
		}
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt.query, memberID); err != nil {
				return fmt.Errorf("%s: %w", stmt.what, err)
			}
		}
		return s.recomputeItems(ctx, tx, affected)
	})
	if err != nil {
		return err
	}

	s.log.Info("member removed", zap.Int64("member_id", memberID), zap.Strings("items", names))
	return nil
}
