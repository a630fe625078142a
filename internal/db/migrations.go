package db

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/bitebalance/migrations"
	"gorm.io/gorm"
)

// The ORM owns table shapes; the embedded SQL files carry indexes and
// reference data that must stay identical on SQLite and Postgres.

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)
var addColumnStatementPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)

var errMigrationChanged = errors.New("applied migration was modified")

type sqlMigration struct {
	Version  string
	Order    int
	Name     string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version  string `gorm:"column:version"`
	Checksum string `gorm:"column:checksum"`
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	return applyMigrations(database, embeddedmigrations.Files)
}

func applyMigrations(database *gorm.DB, files fs.FS) error {
	if err := ensureSchemaMigrationsTable(database); err != nil {
		return err
	}

	pending, err := loadMigrations(files)
	if err != nil {
		return err
	}

	applied, err := loadAppliedMigrations(database)
	if err != nil {
		return err
	}

	for _, migration := range pending {
		checksum, alreadyApplied := applied[migration.Version]
		if alreadyApplied {
			if checksum != "" && checksum != migration.Checksum {
				return fmt.Errorf("%w: %s", errMigrationChanged, migration.Name)
			}
			continue
		}
		if err := applyMigration(database, migration); err != nil {
			return err
		}
	}
	return nil
}

func ensureSchemaMigrationsTable(database *gorm.DB) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version VARCHAR(32) PRIMARY KEY,
  name TEXT NOT NULL,
  checksum VARCHAR(64) NOT NULL DEFAULT '',
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if err := database.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func loadMigrations(files fs.FS) ([]sqlMigration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]sqlMigration, 0, len(entries))
	seenVersions := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := strings.TrimSpace(entry.Name())
		matches := migrationFilePattern.FindStringSubmatch(fileName)
		if len(matches) != 2 {
			continue
		}

		version := matches[1]
		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", fileName, err)
		}
		if existing, exists := seenVersions[version]; exists {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, existing, fileName)
		}
		seenVersions[version] = fileName

		rawSQL, err := fs.ReadFile(files, fileName)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", fileName, err)
		}
		sum := sha256.Sum256(rawSQL)

		migrations = append(migrations, sqlMigration{
			Version:  version,
			Order:    order,
			Name:     fileName,
			SQL:      string(rawSQL),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

func loadAppliedMigrations(database *gorm.DB) (map[string]string, error) {
	rows := make([]appliedMigration, 0)
	if err := database.Raw(`SELECT version, checksum FROM schema_migrations`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}

	applied := make(map[string]string, len(rows))
	for _, row := range rows {
		applied[row.Version] = row.Checksum
	}
	return applied, nil
}

func applyMigration(database *gorm.DB, migration sqlMigration) error {
	return database.Transaction(func(tx *gorm.DB) error {
		statements := splitSQLStatements(migration.SQL)
		if len(statements) == 0 {
			return fmt.Errorf("migration %s has no SQL statements", migration.Name)
		}

		for _, statement := range statements {
			skip, err := shouldSkipStatement(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
			}
			if skip {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		return tx.Exec(
			`INSERT INTO schema_migrations(version, name, checksum) VALUES (?, ?, ?)`,
			migration.Version,
			migration.Name,
			migration.Checksum,
		).Error
	})
}

// splitSQLStatements drops "--" comment lines before splitting on ";".
func splitSQLStatements(sqlText string) []string {
	lines := strings.Split(sqlText, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	rawParts := strings.Split(strings.Join(kept, "\n"), ";")
	statements := make([]string, 0, len(rawParts))
	for _, rawPart := range rawParts {
		if statement := strings.TrimSpace(rawPart); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// shouldSkipStatement makes ADD COLUMN idempotent when AutoMigrate already
// created the column.
func shouldSkipStatement(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnStatementPattern.FindStringSubmatch(strings.TrimSpace(statement))
	if len(matches) != 3 {
		return false, nil
	}

	tableName := normalizeSQLIdentifier(matches[1])
	columnName := normalizeSQLIdentifier(matches[2])
	migrator := database.Migrator()
	if !migrator.HasTable(tableName) {
		return false, fmt.Errorf("table %s does not exist", tableName)
	}
	return migrator.HasColumn(tableName, columnName), nil
}

func normalizeSQLIdentifier(identifier string) string {
	normalized := strings.TrimSpace(identifier)
	normalized = strings.Trim(normalized, "\"`[]")
	return strings.TrimSpace(normalized)
}
