package store

// Schema is the DDL for the template tables.
const Schema = `
CREATE TABLE IF NOT EXISTS templates (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    html       TEXT NOT NULL,
    rules      TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at DESC);
`
