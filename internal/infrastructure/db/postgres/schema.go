package postgres

// Schema is the table layout UserRepo expects. The service does not apply it;
// it is used by tests and printed by the ops tool.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
  id               UUID PRIMARY KEY,
  firstname        TEXT NOT NULL DEFAULT '',
  lastname         TEXT NOT NULL DEFAULT '',
  email            TEXT NOT NULL UNIQUE,
  bio              TEXT NOT NULL DEFAULT '',
  password_hash    TEXT NOT NULL,
  reset_token_hash TEXT NULL,
  reset_expires_at TIMESTAMPTZ NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CONSTRAINT users_reset_pair CHECK ((reset_token_hash IS NULL) = (reset_expires_at IS NULL))
);
`
