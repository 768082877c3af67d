// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema contains the DDL for orders, coupons, checkout snapshots,
// owner stats, the relational catalog mirror, and API keys.
//
//go:embed migrations/001_schema.sql
var Schema string
