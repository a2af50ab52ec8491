package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, " FOR UPDATE", d.LockSuffix)
	assert.Equal(t, sql.LevelSerializable, d.TxOptions().Isolation)

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Empty(t, d.LockSuffix)
	assert.Equal(t, "INSERT OR IGNORE", d.InsertIgnore)

	_, err = DialectFor("postgres")
	assert.Error(t, err)
}

func TestMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := Open(ctx, "sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, dialect))
	// Migrations are idempotent.
	require.NoError(t, Migrate(ctx, db, dialect))

	for _, table := range []string{"users", "profiles", "transactions", "sales", "inventory", "notifications"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO inventory (item_name, slug, inventory_amount, remaining_quantity, recommended_inventory_level, updated_at)
		VALUES ('Rice', 'rice', 1000, 1000, 100, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	result, err := db.ExecContext(ctx, dialect.InsertIgnore+` INTO inventory (item_name, slug, inventory_amount, remaining_quantity, recommended_inventory_level, updated_at)
		VALUES ('Rice', 'rice', 5, 5, 100, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), "oracle", "dsn", zap.NewNop())
	assert.Error(t, err)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS users", firstLine("\n\tCREATE TABLE IF NOT EXISTS users (\n\tid INT\n)"))
	assert.Equal(t, "CREATE INDEX x ON y(z)", firstLine("CREATE INDEX x ON y(z)"))
}
