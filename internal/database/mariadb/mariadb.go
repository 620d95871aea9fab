// Package mariadb reads student rosters from a legacy school information
// system running on MariaDB. Access is read-only; the importer copies the
// roster into the attendance tracker's own PostgreSQL store.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// RosterStudent is one student row from the school information system.
type RosterStudent struct {
	Name   string
	RollNo string
	Year   string
	Term   string
}

// ListRoster reads the full student roster from the MIS database.
func (p *Pool) ListRoster(ctx context.Context) ([]RosterStudent, error) {
	query := `
		SELECT u.name, s.student_id, COALESCE(s.year, ''), COALESCE(s.semester, '')
		FROM students s
		JOIN users u ON s.user_id = u.id
		ORDER BY s.student_id
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var roster []RosterStudent
	for rows.Next() {
		var st RosterStudent
		if err := rows.Scan(&st.Name, &st.RollNo, &st.Year, &st.Term); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		roster = append(roster, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return roster, nil
}
