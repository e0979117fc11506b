package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// createCoreTables creates the slides and blocks tables.
func createCoreTables(db *sql.DB) error {
	slidesSQL := `
		CREATE TABLE IF NOT EXISTS slides (
			id INTEGER PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			image TEXT,
			fragment TEXT NOT NULL,
			body TEXT NOT NULL
		)
	`
	if _, err := db.Exec(slidesSQL); err != nil {
		return fmt.Errorf("create slides table: %w", err)
	}

	// One row per display block, in render order.
	blocksSQL := `
		CREATE TABLE IF NOT EXISTS blocks (
			slide_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			label TEXT,
			content TEXT NOT NULL,
			PRIMARY KEY (slide_id, seq),
			FOREIGN KEY (slide_id) REFERENCES slides(id)
		)
	`
	if _, err := db.Exec(blocksSQL); err != nil {
		return fmt.Errorf("create blocks table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_slides_position ON slides(position)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_kind ON blocks(kind)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// CreateFTSIndex creates a full-text index over block content.
func CreateFTSIndex(db *sql.DB) error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS blocks_fts USING fts5(
			slide_id UNINDEXED,
			title,
			content,
			tokenize='unicode61'
		)
	`
	if _, err := db.Exec(ftsSQL); err != nil {
		return fmt.Errorf("create fts table: %w", err)
	}
	populateSQL := `
		INSERT INTO blocks_fts (slide_id, title, content)
		SELECT s.id, s.title, b.content
		FROM blocks b JOIN slides s ON s.id = b.slide_id
		WHERE b.kind IN ('text', 'explanation')
	`
	if _, err := db.Exec(populateSQL); err != nil {
		return fmt.Errorf("populate fts table: %w", err)
	}
	return nil
}
