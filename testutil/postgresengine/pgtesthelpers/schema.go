package pgtesthelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const createTablesDDL = `
CREATE TABLE IF NOT EXISTS items (
	id               TEXT PRIMARY KEY,
	title            TEXT        NOT NULL,
	total_copies     INTEGER     NOT NULL CHECK (total_copies >= 0),
	available_copies INTEGER     NOT NULL CHECK (available_copies >= 0),
	CHECK (available_copies <= total_copies)
);

CREATE TABLE IF NOT EXISTS members (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	membership_status TEXT NOT NULL
);

-- loans carry no FK to items: resolved loans are history and must survive
-- the deletion of their catalog entry.
CREATE TABLE IF NOT EXISTS loans (
	id          UUID PRIMARY KEY,
	item_id     TEXT        NOT NULL,
	member_id   TEXT        NOT NULL REFERENCES members (id),
	loan_date   TIMESTAMPTZ NOT NULL,
	due_date    TIMESTAMPTZ NOT NULL,
	return_date TIMESTAMPTZ NULL,
	status      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS loans_member_open_idx ON loans (member_id) WHERE return_date IS NULL;
CREATE INDEX IF NOT EXISTS loans_item_open_idx ON loans (item_id) WHERE return_date IS NULL;

CREATE TABLE IF NOT EXISTS fines (
	id           UUID PRIMARY KEY,
	loan_id      UUID        NOT NULL REFERENCES loans (id),
	amount_cents BIGINT      NOT NULL CHECK (amount_cents >= 0),
	issue_date   TIMESTAMPTZ NOT NULL,
	payment_date TIMESTAMPTZ NULL,
	status       TEXT        NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id          UUID PRIMARY KEY,
	entity_type TEXT        NOT NULL,
	entity_id   TEXT        NOT NULL,
	action      TEXT        NOT NULL,
	payload     JSONB       NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
`

const truncateTablesSQL = `TRUNCATE TABLE audit_log, fines, loans, members, items`

// CreateLendingTables creates the lending schema on the wrapped connection if
// it does not exist yet.
func CreateLendingTables(t testing.TB, wrapper Wrapper) {
	t.Helper()

	err := wrapper.Exec(context.Background(), createTablesDDL)
	require.NoError(t, err, "error creating lending tables in test setup")
}

// TruncateLendingTables empties all lending tables between test runs.
func TruncateLendingTables(t testing.TB, wrapper Wrapper) {
	t.Helper()

	err := wrapper.Exec(context.Background(), truncateTablesSQL)
	require.NoError(t, err, "error truncating lending tables in test setup")
}
