package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/pgerr"
)

const selectColumns = `id, owner_id, title, username, secret_ciphertext, secret_nonce, url, description, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) error {
	query := `
		INSERT INTO credentials (id, owner_id, title, username, secret_ciphertext, secret_nonce, url, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Title, c.Username, c.SecretCiphertext, c.SecretNonce,
		c.URL, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return pgerr.Map(err)
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error) {
	query := `SELECT ` + selectColumns + ` FROM credentials
		WHERE owner_id = $1
		ORDER BY created_at DESC, id`

	return r.query(ctx, query, ownerID)
}

func (r *PostgresRepository) ListRecentlyUpdated(ctx context.Context, ownerID string, limit int) ([]*models.Credential, error) {
	query := `SELECT ` + selectColumns + ` FROM credentials
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id
		LIMIT $2`

	return r.query(ctx, query, ownerID, limit)
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT count(*) FROM credentials WHERE owner_id = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, pgerr.Map(err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	query := `SELECT ` + selectColumns + ` FROM credentials WHERE id = $1`

	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Title, &c.Username, &c.SecretCiphertext, &c.SecretNonce,
		&c.URL, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, pgerr.Map(err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Credential) error {
	query := `
		UPDATE credentials SET
			title = $3,
			username = $4,
			secret_ciphertext = $5,
			secret_nonce = $6,
			url = $7,
			description = $8,
			updated_at = $9
		WHERE id = $1 AND owner_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Title, c.Username, c.SecretCiphertext, c.SecretNonce,
		c.URL, c.Description, c.UpdatedAt)
	if err != nil {
		return pgerr.Map(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	query := `DELETE FROM credentials WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, pgerr.Map(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Credential, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Credential, 0)
	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Title, &c.Username, &c.SecretCiphertext, &c.SecretNonce,
			&c.URL, &c.Description, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

var _ Repository = (*PostgresRepository)(nil)
