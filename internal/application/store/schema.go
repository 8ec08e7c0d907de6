package store

// Schema is the DDL for the application tables. Integration tests apply it to
// a fresh container; deployments manage the same statements through their
// migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS applications (
	id                 UUID PRIMARY KEY,
	application_number TEXT NOT NULL,
	service_id         UUID NOT NULL,
	applicant_id       UUID NOT NULL,
	status             TEXT NOT NULL,
	documents          JSONB NOT NULL,
	remarks            JSONB NOT NULL,
	payment_status     TEXT NOT NULL DEFAULT 'pending',
	payment_details    JSONB,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS applications_number_unique
	ON applications (application_number);
CREATE INDEX IF NOT EXISTS applications_applicant_idx
	ON applications (applicant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS applications_status_idx
	ON applications (status);
CREATE INDEX IF NOT EXISTS applications_number_pattern_idx
	ON applications (application_number text_pattern_ops);

CREATE TABLE IF NOT EXISTS application_sequences (
	period TEXT PRIMARY KEY,
	value  BIGINT NOT NULL
);
`
