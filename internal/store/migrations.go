package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Detections table - one row per detection call
		`CREATE TABLE IF NOT EXISTS detections (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			method TEXT NOT NULL CHECK(method IN ('ocr', 'template', 'window_title', 'fallback', 'error')),
			keyword TEXT NOT NULL DEFAULT '',
			template TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL CHECK(source IN ('image', 'window_title')),
			notified INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_detections_created_at ON detections(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_game ON detections(game)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
