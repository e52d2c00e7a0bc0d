// Command migrate copies links from a legacy SQLite database into the MySQL
// store. Rows go through the same conditional-insert path the server uses,
// so an interrupted run can simply be repeated: codes that already landed
// are skipped as conflicts.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"golinks/internal/model"
	"golinks/internal/repository"
	"golinks/internal/store"
	"golinks/pkg/logging"
)

func main() {
	sqlitePath := flag.String("sqlite-path", "database.db", "path to the legacy SQLite database")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env: %v", err)
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	logging.InitLoggerFromConfig()

	rows, err := loadLegacyRows(*sqlitePath)
	if err != nil {
		logging.Logger.Fatal("Failed to read legacy database", zap.Error(err))
	}
	logging.Logger.Info("Loaded legacy rows", zap.Int("count", len(rows)))

	repository.InitDB(logging.Logger, logging.AtomicLevel)
	target := store.NewGormStore(repository.DB)

	copied, skipped := 0, 0
	for _, link := range rows {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := target.TryCreate(ctx, link)
		cancel()

		switch {
		case err == nil:
			copied++
		case errors.Is(err, store.ErrCodeTaken):
			logging.Logger.Warn("Code already present, skipping",
				zap.String("code", link.Code),
			)
			skipped++
		default:
			logging.Logger.Fatal("Insert failed",
				zap.String("code", link.Code),
				zap.Error(err),
			)
		}
	}

	logging.Logger.Info("Migration complete",
		zap.Int("copied", copied),
		zap.Int("skipped", skipped),
	)
}

// loadLegacyRows reads the urls table, tolerating schemas that predate the
// created_at and clicks columns by defaulting them.
func loadLegacyRows(path string) ([]*model.Link, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='urls'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("legacy database has no urls table")
	}
	if err != nil {
		return nil, err
	}

	columns, err := tableColumns(db, "urls")
	if err != nil {
		return nil, err
	}

	query := "SELECT code, long_url"
	if columns["created_at"] {
		query += ", created_at"
	} else {
		query += ", NULL AS created_at"
	}
	if columns["clicks"] {
		query += ", clicks"
	} else {
		query += ", 0 AS clicks"
	}
	query += " FROM urls"

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		var (
			code      string
			longURL   string
			createdAt sql.NullString
			clicks    sql.NullInt64
		)
		if err := rows.Scan(&code, &longURL, &createdAt, &clicks); err != nil {
			return nil, err
		}
		links = append(links, &model.Link{
			Code:      code,
			LongURL:   longURL,
			CreatedAt: parseCreatedAt(createdAt),
			Clicks:    clicks.Int64,
		})
	}
	return links, rows.Err()
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

// parseCreatedAt accepts the timestamp formats the legacy store produced
// over its lifetime and falls back to now for anything unparseable.
func parseCreatedAt(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Now().UTC()
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, raw.String); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
