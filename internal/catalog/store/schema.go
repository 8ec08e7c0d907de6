package store

// Schema creates the catalog tables. Applied at startup; every statement is
// idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS services (
	id                 UUID PRIMARY KEY,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL,
	category           TEXT NOT NULL DEFAULT '',
	required_documents JSONB NOT NULL DEFAULT '[]',
	processing_time    TEXT NOT NULL DEFAULT '',
	fees               BIGINT NOT NULL DEFAULT 0,
	is_active          BOOLEAN NOT NULL DEFAULT TRUE,
	created_by         UUID NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS services_active_idx ON services (is_active);
`
