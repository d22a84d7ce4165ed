package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"funda-scraper/models"
)

// PostgresWriter persists cleaned listings to PostgreSQL for downstream
// analysis. It stores the typed core columns rather than the projected table,
// since the table schema is fixed by the migration.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id           SERIAL PRIMARY KEY,
			house_id     BIGINT       NOT NULL,
			house_type   VARCHAR(20)  NOT NULL,
			url          TEXT         UNIQUE NOT NULL,
			address      TEXT         NOT NULL DEFAULT '',
			city         TEXT         NOT NULL DEFAULT '',
			zip          VARCHAR(10)  NOT NULL DEFAULT '',
			price        INTEGER      NOT NULL DEFAULT 0,
			price_m2     NUMERIC(10,1) NOT NULL DEFAULT 0,
			living_area  INTEGER      NOT NULL DEFAULT 0,
			room         INTEGER      NOT NULL DEFAULT 0,
			bedroom      INTEGER      NOT NULL DEFAULT 0,
			bathroom     INTEGER      NOT NULL DEFAULT 0,
			energy_label VARCHAR(10)  NOT NULL DEFAULT '',
			year_built   INTEGER      NOT NULL DEFAULT 0,
			house_age    INTEGER      NOT NULL DEFAULT 0,
			date_list    DATE,
			date_sold    DATE,
			term_days    INTEGER      NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price      ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_zip        ON listings(zip);
		CREATE INDEX IF NOT EXISTS idx_listings_house_type ON listings(house_type);
		CREATE INDEX IF NOT EXISTS idx_listings_date_list  ON listings(date_list);
	`)
	return err
}

// Write batch-inserts the cleaned listings, skipping URLs already stored.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	const nCols = 18
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*nCols)

	for idx, l := range batch {
		base := idx * nCols
		marks := make([]string, nCols)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(marks, ",")+")")
		valueArgs = append(valueArgs,
			l.HouseID, l.HouseType, l.URL, l.Address, l.City, l.Zip,
			l.Price, l.PricePerM2, l.LivingArea,
			l.Rooms, l.Bedrooms, l.Bathrooms, l.EnergyLabel,
			l.YearBuilt, l.HouseAge,
			nullableDate(l.DateList), nullableDate(l.DateSold), l.TermDays)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (
			house_id, house_type, url, address, city, zip,
			price, price_m2, living_area,
			room, bedroom, bathroom, energy_label,
			year_built, house_age,
			date_list, date_sold, term_days
		)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
