package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/repository"

	_ "github.com/lib/pq"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, google_id, email, name, access_token, refresh_token, token_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (google_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.GoogleID, user.Email, user.Name,
		user.AccessToken, user.RefreshToken, user.TokenExpiry,
		user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *PostgresUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.GoogleID, &user.Email, &user.Name,
		&user.AccessToken, &user.RefreshToken, &user.TokenExpiry,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return user, nil
}

const userColumns = `id, google_id, email, name, access_token, refresh_token, token_expiry, created_at, updated_at`

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, googleID))
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET google_id=$1, email=$2, name=$3, access_token=$4,
		refresh_token=$5, token_expiry=$6, updated_at=NOW() WHERE id=$7`
	_, err := r.db.ExecContext(ctx, query,
		user.GoogleID, user.Email, user.Name,
		user.AccessToken, user.RefreshToken, user.TokenExpiry,
		user.ID)
	return err
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Postgres Automation registry implementation
type PostgresAutomationRepository struct {
	db *sql.DB
}

func NewPostgresAutomationRepository(db *sql.DB) *PostgresAutomationRepository {
	return &PostgresAutomationRepository{db: db}
}

func (r *PostgresAutomationRepository) Upsert(ctx context.Context, entry *model.AutomationEntry) error {
	query := `
		INSERT INTO automation_entries (email, access_token, refresh_token, scope, token_type, token_expiry, frequency_minutes, last_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			scope = EXCLUDED.scope,
			token_type = EXCLUDED.token_type,
			token_expiry = EXCLUDED.token_expiry,
			frequency_minutes = EXCLUDED.frequency_minutes,
			last_run = EXCLUDED.last_run`
	_, err := r.db.ExecContext(ctx, query,
		entry.Email, entry.Tokens.AccessToken, entry.Tokens.RefreshToken,
		entry.Tokens.Scope, entry.Tokens.TokenType, entry.Tokens.Expiry,
		entry.FrequencyMinutes, entry.LastRun)
	return err
}

func (r *PostgresAutomationRepository) Remove(ctx context.Context, email string) error {
	query := `DELETE FROM automation_entries WHERE email = $1`
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

const automationColumns = `email, access_token, refresh_token, scope, token_type, token_expiry, frequency_minutes, last_run`

func scanEntry(scan func(dest ...interface{}) error) (*model.AutomationEntry, error) {
	entry := &model.AutomationEntry{Tokens: &model.CredentialBundle{}}
	var lastRun sql.NullTime
	err := scan(
		&entry.Email, &entry.Tokens.AccessToken, &entry.Tokens.RefreshToken,
		&entry.Tokens.Scope, &entry.Tokens.TokenType, &entry.Tokens.Expiry,
		&entry.FrequencyMinutes, &lastRun)
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		t := lastRun.Time
		entry.LastRun = &t
	}
	return entry, nil
}

func (r *PostgresAutomationRepository) Find(ctx context.Context, email string) (*model.AutomationEntry, error) {
	query := `SELECT ` + automationColumns + ` FROM automation_entries WHERE email = $1`
	row := r.db.QueryRowContext(ctx, query, email)
	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *PostgresAutomationRepository) FindAll(ctx context.Context) ([]*model.AutomationEntry, error) {
	query := `SELECT ` + automationColumns + ` FROM automation_entries ORDER BY email`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.AutomationEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *PostgresAutomationRepository) SetLastRun(ctx context.Context, email string, t time.Time) error {
	query := `UPDATE automation_entries SET last_run = $1 WHERE email = $2`
	res, err := r.db.ExecContext(ctx, query, t, email)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrEntryNotFound
	}
	return nil
}

func (r *PostgresAutomationRepository) PruneInactive(ctx context.Context, threshold time.Duration, now time.Time) ([]*model.AutomationEntry, error) {
	cutoff := now.Add(-threshold)
	query := `
		DELETE FROM automation_entries
		WHERE last_run IS NOT NULL AND last_run < $1
		RETURNING ` + automationColumns
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var removed []*model.AutomationEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		removed = append(removed, entry)
	}
	return removed, rows.Err()
}

// InitializeDatabase creates the necessary tables
func InitializeDatabase(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) PRIMARY KEY,
			google_id VARCHAR(255) UNIQUE NOT NULL,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			access_token TEXT,
			refresh_token TEXT,
			token_expiry TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS automation_entries (
			email VARCHAR(255) PRIMARY KEY,
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			scope TEXT,
			token_type VARCHAR(64),
			token_expiry TIMESTAMP,
			frequency_minutes INT NOT NULL,
			last_run TIMESTAMP
		)`,
	}

	for _, table := range tables {
		_, err := db.Exec(table)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
