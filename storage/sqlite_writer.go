package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"funda-scraper/models"
)

// SQLiteWriter keeps the two-table layout of the scraping pipeline: "raw"
// holds the untouched scraped strings, "clean" holds the projected dataset.
type SQLiteWriter struct {
	db *sqlx.DB
}

// NewSQLiteWriter opens (creating if needed) the SQLite database at dbPath.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create database dir: %w", err)
	}

	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: connect: %w", err)
	}

	return &SQLiteWriter{db: db}, nil
}

// WriteRaw replaces the raw table with the given batch.
func (w *SQLiteWriter) WriteRaw(listings []*models.RawListing) error {
	cols := rawHeader

	if err := w.recreate("raw", cols, textAffinity(cols)); err != nil {
		return err
	}

	stmt := insertStmt("raw", cols)
	for _, l := range listings {
		args := []any{
			l.URL.Text(), l.Price.Text(), l.Address.Text(), l.Description.Text(),
			l.ListedSince.Text(), l.ZipCode.Text(), l.Size.Text(),
			l.YearBuilt.Text(), l.LivingArea.Text(), l.KindOfHouse.Text(),
			l.BuildingType.Text(), l.NumOfRooms.Text(), l.NumOfBathrooms.Text(),
			l.Layout.Text(), l.EnergyLabel.Text(), l.Insulation.Text(),
			l.Heating.Text(), l.Ownership.Text(), l.Exteriors.Text(),
			l.Parking.Text(), l.Neighborhood.Text(), l.Volume.Text(),
			l.GardenSize.Text(), l.BalconySize.Text(), l.DateList.Text(),
			l.DateSold.Text(), l.Term.Text(), l.PriceSold.Text(),
			l.LastAskPrice.Text(), l.City.Text(), l.Photos.Text(),
			l.ScrapedAt.Format(time.RFC3339),
		}
		if _, err := w.db.Exec(stmt, args...); err != nil {
			return fmt.Errorf("sqlite: insert raw row: %w", err)
		}
	}
	return nil
}

// WriteDataset replaces the clean table with the projected dataset. Column
// affinity follows the value types of the first row; an empty dataset falls
// back to TEXT everywhere.
func (w *SQLiteWriter) WriteDataset(ds *models.Dataset) error {
	affinities := textAffinity(ds.Columns)
	if len(ds.Rows) > 0 {
		for i, cell := range ds.Rows[0] {
			affinities[i] = sqliteAffinity(cell)
		}
	}

	if err := w.recreate("clean", ds.Columns, affinities); err != nil {
		return err
	}

	stmt := insertStmt("clean", ds.Columns)
	tx, err := w.db.Beginx()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	for _, row := range ds.Rows {
		args := make([]any, len(row))
		for i, cell := range row {
			args[i] = sqliteValue(cell)
		}
		if _, err := tx.Exec(stmt, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: insert clean row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

func (w *SQLiteWriter) recreate(table string, cols, affinities []string) error {
	if _, err := w.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, table)); err != nil {
		return fmt.Errorf("sqlite: drop %s: %w", table, err)
	}

	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = fmt.Sprintf(`"%s" %s`, col, affinities[i])
	}
	ddl := fmt.Sprintf(`CREATE TABLE "%s" (%s)`, table, strings.Join(defs, ", "))
	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", table, err)
	}
	return nil
}

func insertStmt(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = fmt.Sprintf(`"%s"`, col)
		marks[i] = "?"
	}
	return fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`,
		table, strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func textAffinity(cols []string) []string {
	out := make([]string, len(cols))
	for i := range out {
		out[i] = "TEXT"
	}
	return out
}

func sqliteAffinity(v any) string {
	switch v.(type) {
	case int, bool:
		return "INTEGER"
	case float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqliteValue(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return v
	}
}
