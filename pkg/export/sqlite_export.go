package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vanderheijden86/slideview/pkg/debug"
	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a resolved deck to a SQLite database.
type SQLiteExporter struct {
	Doc *Document
	// Now stamps the export; defaults to time.Now.
	Now func() time.Time
}

// NewSQLiteExporter creates an exporter for doc.
func NewSQLiteExporter(doc *Document) *SQLiteExporter {
	return &SQLiteExporter{Doc: doc, Now: time.Now}
}

// Export replaces the database at dbPath with the deck contents.
func (e *SQLiteExporter) Export(dbPath string) error {
	if e.Doc == nil || len(e.Doc.Slides) == 0 {
		return fmt.Errorf("no slides to export")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertSlides(db); err != nil {
		return fmt.Errorf("insert slides: %w", err)
	}
	if err := CreateFTSIndex(db); err != nil {
		// Search is optional; the slide tables are complete without it.
		debug.Log("export: FTS5 not available: %v", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

// insertSlides inserts every slide and its blocks in one transaction.
func (e *SQLiteExporter) insertSlides(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	slideStmt, err := tx.Prepare(`
		INSERT INTO slides (id, position, title, image, fragment, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer slideStmt.Close()

	blockStmt, err := tx.Prepare(`
		INSERT INTO blocks (slide_id, seq, kind, label, content)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer blockStmt.Close()

	for _, s := range e.Doc.Slides {
		var image any
		if s.Image != "" {
			image = s.Image
		}
		if _, err := slideStmt.Exec(s.ID, s.Position, s.Title, image, s.Fragment, s.Body); err != nil {
			return fmt.Errorf("slide %d: %w", s.ID, err)
		}
		for seq, b := range s.Blocks {
			var label any
			if l := blockLabel(b); l != "" {
				label = l
			}
			if _, err := blockStmt.Exec(s.ID, seq, b.Kind().String(), label, format.Content(b)); err != nil {
				return fmt.Errorf("slide %d block %d: %w", s.ID, seq, err)
			}
		}
	}
	return tx.Commit()
}

func blockLabel(b format.Block) string {
	switch v := b.(type) {
	case format.TextBlock:
		return v.Label
	case format.ExplanationBlock:
		return v.Label
	}
	return ""
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	meta := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"generator":      version.String(),
		"title":          e.Doc.Title,
		"source":         e.Doc.Source,
		"slide_count":    strconv.Itoa(len(e.Doc.Slides)),
		"exported_at":    now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}
	return nil
}
