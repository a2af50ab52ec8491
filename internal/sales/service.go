// Package sales holds the sale, inventory and notification reconciliation rules.
// Every exported operation runs inside a single database transaction and
// holds an in-process lock on each item it touches.
package sales

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/01moynul/gotogro-members/internal/database"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Thresholds configures when the notification trigger emits alerts.
type Thresholds struct {
	HighQuantityMin int
	HighQuantityMax int
	HighSalesAmount decimal.Decimal
	LowInventory    int
}

// Config holds the ledger defaults and alert thresholds.
type Config struct {
	DefaultInventoryAmount  int
	DefaultRecommendedLevel int
	Thresholds              Thresholds
}

// DefaultConfig returns the stock business rules.
func DefaultConfig() Config {
	return Config{
		DefaultInventoryAmount:  1000,
		DefaultRecommendedLevel: 100,
		Thresholds: Thresholds{
			HighQuantityMin: 100,
			HighQuantityMax: 1000,
			HighSalesAmount: decimal.NewFromInt(100000),
			LowInventory:    50,
		},
	}
}

// Service records, edits and removes sales against the inventory ledger.
type Service struct {
	db      *sql.DB
	dialect database.Dialect
	cfg     Config
	log     *zap.Logger
	locks   *itemLocks
	now     func() time.Time
}

func NewService(db *sql.DB, dialect database.Dialect, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:      db,
		dialect: dialect,
		cfg:     cfg,
		log:     log,
		locks:   newItemLocks(),
		now:     time.Now,
	}
}

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, s.dialect.TxOptions())
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func normalizeItemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidf("item name is required")
	}
	if len(name) > 255 {
		return "", invalidf("item name must be at most 255 characters")
	}
	// The slug is the item's URL handle.
	if slug.Make(name) == "" {
		return "", invalidf("item name must contain at least one letter or digit")
	}
	return name, nil
}

// itemLocks serializes operations per item name inside this process.
type itemLocks struct {
	mu    sync.Mutex
	items map[string]*itemLock
}

type itemLock struct {
	sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{items: make(map[string]*itemLock)}
}

// lock acquires every named lock in sorted order and returns the matching unlock.
func (l *itemLocks) lock(names ...string) func() {
	names = uniqueSorted(names)
	held := make([]*itemLock, 0, len(names))
	for _, name := range names {
		l.mu.Lock()
		il, ok := l.items[name]
		if !ok {
			il = &itemLock{}
			l.items[name] = il
		}
		il.refs++
		l.mu.Unlock()

		il.Lock()
		held = append(held, il)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.items, names[i])
			}
			l.mu.Unlock()
		}
	}
}

func uniqueSorted(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// LowInventoryThreshold is the remaining quantity at or below which an item counts as low.
func (s *Service) LowInventoryThreshold() int {
	return s.cfg.Thresholds.LowInventory
}
