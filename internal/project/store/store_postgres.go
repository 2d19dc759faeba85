package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mintgate/internal/project/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
	txcontext "mintgate/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists projects in the projects table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const projectColumns = `id, name, artist, price_per_unit, currency_symbol, currency_address,
	active, paused, max_invocations, current_invocations, purchase_to_disabled, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p            models.Project
		id           int64
		artist       string
		currencyAddr string
		maxInv       int64
		currentInv   int64
	)
	err := row.Scan(&id, &p.Name, &artist, &p.PricePerUnit, &p.Currency.Symbol, &currencyAddr,
		&p.Active, &p.Paused, &maxInv, &currentInv, &p.PurchaseToDisabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = domain.ProjectID(id)
	p.Artist = domain.Address(artist)
	p.Currency.Address = domain.Address(currencyAddr)
	p.MaxInvocations = uint64(maxInv)
	p.CurrentInvocations = uint64(currentInv)
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := s.querier(ctx).ExecContext(ctx, query,
		int64(p.ID), p.Name, p.Artist.String(), p.PricePerUnit, p.Currency.Symbol, p.Currency.Address.String(),
		p.Active, p.Paused, int64(p.MaxInvocations), int64(p.CurrentInvocations), p.PurchaseToDisabled,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) NextID(ctx context.Context, start domain.ProjectID) (domain.ProjectID, error) {
	var next int64
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT GREATEST(COALESCE(MAX(id) + 1, $1), $1) FROM projects`, int64(start)).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next project id: %w", err)
	}
	return domain.ProjectID(next), nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, int64(id))
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Execute locks the row with SELECT ... FOR UPDATE, runs validate then mutate and
// writes the mutable columns back in the same transaction.
func (s *PostgresStore) Execute(ctx context.Context, id domain.ProjectID, validate func(*models.Project) error, mutate func(*models.Project)) (*models.Project, error) {
	var result *models.Project
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := s.querier(ctx)
		row := q.QueryRowContext(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, int64(id))
		p, err := scanProject(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock project: %w", err)
		}
		if validate != nil {
			if err := validate(p); err != nil {
				return err
			}
		}
		mutate(p)
		_, err = q.ExecContext(ctx, `UPDATE projects SET
				price_per_unit = $2, currency_symbol = $3, currency_address = $4,
				active = $5, paused = $6, max_invocations = $7, purchase_to_disabled = $8, updated_at = $9
			WHERE id = $1`,
			int64(p.ID), p.PricePerUnit, p.Currency.Symbol, p.Currency.Address.String(),
			p.Active, p.Paused, int64(p.MaxInvocations), p.PurchaseToDisabled, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IncrementInvocations is a single conditional UPDATE, so the cap holds across
// processes sharing the database.
func (s *PostgresStore) IncrementInvocations(ctx context.Context, id domain.ProjectID) (uint64, error) {
	var current int64
	err := s.querier(ctx).QueryRowContext(ctx, `UPDATE projects
		SET current_invocations = current_invocations + 1
		WHERE id = $1 AND current_invocations < max_invocations
		RETURNING current_invocations`, int64(id)).Scan(&current)
	if err == nil {
		return uint64(current - 1), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("increment invocations: %w", err)
	}
	if _, findErr := s.FindByID(ctx, id); findErr != nil {
		return 0, findErr
	}
	return 0, sentinel.ErrInvalidState
}
