// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/roadassist-api/internal/core"
)

// Repository is the durable side of the directory. The in-memory store is
// the read path; every confirmed mutation writes through here.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	UpdateContact(ctx context.Context, id, name, email, phone string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	LoadAll(ctx context.Context) ([]Account, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// accountRow is the flat scan target; the variant profile travels as JSONB.
type accountRow struct {
	ID           string       `db:"id"`
	Type         string       `db:"type"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	Phone        string       `db:"phone"`
	Status       string       `db:"status"`
	CreatedAt    sql.NullTime `db:"created_at"`
	LastActive   string       `db:"last_active"`
	Profile      []byte       `db:"profile"`
	PasswordHash string       `db:"password_hash"`
	TokenVersion int          `db:"token_version"`
}

func (r *repository) Create(ctx context.Context, account *Account) error {
	profile, err := marshalProfile(account)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	query := `
		INSERT INTO accounts (
			id, type, name, email, phone, status,
			created_at, last_active, profile, password_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		account.ID,
		account.Type,
		account.Name,
		account.Email,
		account.Phone,
		account.Status,
		account.CreatedAt,
		account.LastActive,
		profile,
		account.PasswordHash,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, account *Account) error {
	profile, err := marshalProfile(account)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	query := `
		UPDATE accounts
		SET name = $2, email = $3, phone = $4, status = $5,
		    last_active = $6, profile = $7, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.Phone,
		account.Status,
		account.LastActive,
		profile,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update account: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdateContact(
	ctx context.Context,
	id, name, email, phone string,
) error {
	query := `
		UPDATE accounts
		SET name = $2, email = $3, phone = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, name, email, phone)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update contact: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE accounts
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}

	return nil
}

// Delete is physical. The dashboard confirms before calling; there is no
// soft-delete column to fall back on. Refresh tokens go in the same
// transaction so a deleted operator cannot keep an active session.
func (r *repository) Delete(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(
			ctx,
			`DELETE FROM refresh_tokens WHERE account_id = $1`,
			id,
		)
		if err != nil {
			return fmt.Errorf("delete account tokens: %w", err)
		}

		result, err := tx.ExecContext(
			ctx,
			`DELETE FROM accounts WHERE id = $1`,
			id,
		)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete account: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Account, error) {
	query := `
		SELECT id, type, name, email, phone, status, created_at,
		       last_active, profile, password_hash, token_version
		FROM accounts
		WHERE id = $1`

	var row accountRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return rowToAccount(row)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	query := `
		SELECT id, type, name, email, phone, status, created_at,
		       last_active, profile, password_hash, token_version
		FROM accounts
		WHERE email = $1`

	var row accountRow
	err := r.db.GetContext(ctx, &row, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return rowToAccount(row)
}

func (r *repository) LoadAll(ctx context.Context) ([]Account, error) {
	query := `
		SELECT id, type, name, email, phone, status, created_at,
		       last_active, profile, password_hash, token_version
		FROM accounts
		ORDER BY created_at`

	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	accounts := make([]Account, 0, len(rows))
	for _, row := range rows {
		account, err := rowToAccount(row)
		if err != nil {
			return nil, fmt.Errorf("load accounts: %w", err)
		}
		accounts = append(accounts, *account)
	}

	return accounts, nil
}

func marshalProfile(a *Account) ([]byte, error) {
	var profile any
	switch a.Type {
	case TypeCustomer:
		profile = a.Customer
	case TypeTechnician:
		profile = a.Technician
	case TypePartner:
		profile = a.Partner
	case TypeAdmin:
		profile = a.Admin
	default:
		return nil, fmt.Errorf("unknown account type %q", a.Type)
	}

	if profile == nil {
		return nil, fmt.Errorf("account %s: missing %s profile", a.ID, a.Type)
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return data, nil
}

func rowToAccount(row accountRow) (*Account, error) {
	account := &Account{
		ID:           row.ID,
		Type:         Type(row.Type),
		Name:         row.Name,
		Email:        row.Email,
		Phone:        row.Phone,
		Status:       Status(row.Status),
		LastActive:   row.LastActive,
		PasswordHash: row.PasswordHash,
		TokenVersion: row.TokenVersion,
	}
	if row.CreatedAt.Valid {
		account.CreatedAt = row.CreatedAt.Time
	}

	switch account.Type {
	case TypeCustomer:
		account.Customer = &CustomerProfile{}
		if err := json.Unmarshal(row.Profile, account.Customer); err != nil {
			return nil, fmt.Errorf("unmarshal customer profile: %w", err)
		}
	case TypeTechnician:
		account.Technician = &TechnicianProfile{}
		if err := json.Unmarshal(row.Profile, account.Technician); err != nil {
			return nil, fmt.Errorf("unmarshal technician profile: %w", err)
		}
	case TypePartner:
		account.Partner = &PartnerProfile{}
		if err := json.Unmarshal(row.Profile, account.Partner); err != nil {
			return nil, fmt.Errorf("unmarshal partner profile: %w", err)
		}
	case TypeAdmin:
		account.Admin = &AdminProfile{}
		if err := json.Unmarshal(row.Profile, account.Admin); err != nil {
			return nil, fmt.Errorf("unmarshal admin profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown account type %q", row.Type)
	}

	return account, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
