package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL,
		first_name VARCHAR(30) NOT NULL,
		last_name VARCHAR(30) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id BIGINT PRIMARY KEY,
		first_name VARCHAR(30) NOT NULL,
		last_name VARCHAR(30) NOT NULL,
		address VARCHAR(255) NOT NULL DEFAULT '',
		phone_number VARCHAR(15) NOT NULL DEFAULT '',
		preferences VARCHAR(100) NOT NULL DEFAULT '',
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		date DATETIME NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		description VARCHAR(255) NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		member_id BIGINT NOT NULL,
		item_name VARCHAR(255) NOT NULL,
		purchase_quantity INT NOT NULL,
		price_per_unit DECIMAL(10,2) NOT NULL,
		total_price DECIMAL(12,2) NOT NULL,
		purchase_date DATETIME NOT NULL,
		INDEX idx_sales_item (item_name),
		INDEX idx_sales_member (member_id),
		FOREIGN KEY (member_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_name VARCHAR(255) NOT NULL UNIQUE,
		slug VARCHAR(255) NOT NULL,
		inventory_amount INT NOT NULL,
		remaining_quantity INT NOT NULL,
		recommended_inventory_level INT NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_inventory_slug (slug)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		type VARCHAR(32) NOT NULL,
		message TEXT NOT NULL,
		link VARCHAR(255) NULL,
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		triggered_by BIGINT NULL,
		FOREIGN KEY (triggered_by) REFERENCES users(id) ON DELETE SET NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		preferences TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date DATETIME NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		item_name TEXT NOT NULL,
		purchase_quantity INTEGER NOT NULL,
		price_per_unit DECIMAL(10,2) NOT NULL,
		total_price DECIMAL(12,2) NOT NULL,
		purchase_date DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_item ON sales(item_name)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_member ON sales(member_id)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL,
		inventory_amount INTEGER NOT NULL,
		remaining_quantity INTEGER NOT NULL,
		recommended_inventory_level INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_slug ON inventory(slug)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		link TEXT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		triggered_by INTEGER NULL REFERENCES users(id) ON DELETE SET NULL
	)`,
}

// Migrate creates any missing tables for the dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	statements := mysqlSchema
	if dialect.Name == SQLite.Name {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(stmt), "\n")
	return strings.TrimSuffix(strings.TrimSpace(line), " (")
}
