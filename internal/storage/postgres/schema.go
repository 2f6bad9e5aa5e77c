// Package postgres provides the pgvector-backed memory store.
package postgres

import "fmt"

// Schema renders the SQL statements to create the base schema for the given
// table. All statements are idempotent so the schema can be applied on every
// start.
func Schema(table string) string {
	return fmt.Sprintf(`
-- Memories table: one row per extracted fact, partitioned by scope.
CREATE TABLE IF NOT EXISTS %[1]s (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,

    -- Owning scope (at least one is set by the facade)
    user_id TEXT,
    agent_id TEXT,
    run_id TEXT,

    -- Arbitrary caller metadata
    metadata JSONB,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Scope lookups
CREATE INDEX IF NOT EXISTS idx_%[1]s_user_id ON %[1]s(user_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_agent_id ON %[1]s(agent_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_run_id ON %[1]s(run_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at);
`, table)
}

// MigrationPgvector renders the migration that adds the embedding column and
// ANN index to the given table. Only applied when the vector extension is
// available. Safe to run multiple times (uses IF NOT EXISTS / conditional
// checks).
func MigrationPgvector(table string) string {
	return fmt.Sprintf(`
-- Add embedding column if it doesn't already exist.
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_name = '%[1]s' AND column_name = 'embedding'
    ) THEN
        ALTER TABLE %[1]s ADD COLUMN embedding vector;
    END IF;
END
$$;

-- Create ivfflat index for approximate nearest-neighbor vector search.
-- Lists = 100 is a good default for up to ~1M vectors; tune upward for larger datasets.
-- IMPORTANT: ivfflat requires at least one row to exist; we guard with a DO block.
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1 FROM pg_indexes WHERE indexname = 'idx_%[1]s_embedding_cosine'
  ) THEN
    IF EXISTS (SELECT 1 FROM %[1]s LIMIT 1) THEN
      EXECUTE 'CREATE INDEX idx_%[1]s_embedding_cosine ON %[1]s USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)';
    END IF;
  END IF;
END$$;
`, table)
}
