// Package dbtest opens an in-memory SQLite database carrying the account schema.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const schema = `
CREATE TABLE admins (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT 'Admin',
  role TEXT NOT NULL DEFAULT 'admin',
  created_at DATETIME
);
CREATE TABLE supervisors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL,
  password TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'supervisor',
  status TEXT NOT NULL DEFAULT 'Active',
  termination_reason TEXT,
  created_date DATETIME
);
CREATE TABLE guards (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL,
  password TEXT,
  role TEXT NOT NULL DEFAULT 'guard',
  address TEXT NOT NULL,
  date_of_birth DATE NOT NULL,
  emergency_contact TEXT NOT NULL,
  assigned_area TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Active',
  termination_reason TEXT,
  supervisor_id INTEGER REFERENCES supervisors(id) ON DELETE SET NULL,
  created_at DATETIME
);
CREATE TABLE account_emails (
  email TEXT PRIMARY KEY,
  account_kind TEXT NOT NULL,
  account_id INTEGER NOT NULL
);`

// Open returns a fresh database. A single pooled connection keeps the in-memory
// database alive for the test and lets foreign keys stay enabled.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}
