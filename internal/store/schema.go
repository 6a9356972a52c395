package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS savings (
    period               TEXT PRIMARY KEY,
    position             INTEGER NOT NULL,
    amount               NUMERIC NOT NULL DEFAULT 0,
    updated_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_savings_position ON savings(position);
`
