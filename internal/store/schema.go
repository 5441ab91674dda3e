package store

import "fmt"

// SQL schemas for the record store tables. Record ids are the primary keys;
// merging overwrites the row on conflict.

// TransactionSchema defines the transactions store
const TransactionSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY NOT NULL,
	client_id INTEGER NOT NULL,
	closed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_closed_at ON transactions(closed_at);
`

// ClientSchema defines the clients store
const ClientSchema = `
CREATE TABLE IF NOT EXISTS clients (
	id INTEGER PRIMARY KEY NOT NULL,
	activated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clients_activated_at ON clients(activated_at);
`

// allSchemas contains all store table schemas for initialization
var allSchemas = []string{
	TransactionSchema,
	ClientSchema,
}

// validTableNames is the whitelist of allowed store table names
// Used to prevent SQL injection when interpolating table names
var validTableNames = map[string]bool{
	"transactions": true,
	"clients":      true,
}

func validateTableName(tableName string) error {
	if !validTableNames[tableName] {
		return fmt.Errorf("invalid store table name: %s", tableName)
	}
	return nil
}
