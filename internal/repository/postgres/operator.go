package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type operatorRepository struct {
	db *sqlx.DB
}

func NewOperatorRepository(db *sqlx.DB) repository.OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, operator *model.Operator) error {
	query := `
		INSERT INTO operators (
			id, login, password_hash, name, role, cpf, email, active, unit_id,
			current_unit_id, profiles, master, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :login, :password_hash, :name, :role, :cpf, :email, :active, :unit_id,
			:current_unit_id, :profiles, :master, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	operator.CreatedAt = time.Now()
	operator.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, operator)
	if err != nil {
		if isUniqueViolation(err, "operators_login_key") {
			return apperrors.Duplicate("login already in use", err)
		}
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

func (r *operatorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	query := `SELECT * FROM operators WHERE id = $1`
	var operator model.Operator
	err := r.db.GetContext(ctx, &operator, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("operator", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return &operator, nil
}

func (r *operatorRepository) GetByLogin(ctx context.Context, login string) (*model.Operator, error) {
	query := `SELECT * FROM operators WHERE login = $1`
	var operator model.Operator
	err := r.db.GetContext(ctx, &operator, query, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("operator", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator by login: %w", err)
	}
	return &operator, nil
}

func (r *operatorRepository) Update(ctx context.Context, operator *model.Operator) error {
	query := `
		UPDATE operators SET
			name = :name, role = :role, cpf = :cpf, email = :email, active = :active,
			unit_id = :unit_id, current_unit_id = :current_unit_id, profiles = :profiles,
			master = :master, password_hash = :password_hash,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id
	`
	operator.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, operator); err != nil {
		return fmt.Errorf("failed to update operator: %w", err)
	}
	return nil
}

func (r *operatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM operators WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete operator: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("operator", nil)
	}
	return nil
}

func (r *operatorRepository) List(ctx context.Context) ([]*model.Operator, error) {
	query := `SELECT * FROM operators ORDER BY name ASC`
	var operators []*model.Operator
	if err := r.db.SelectContext(ctx, &operators, query); err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	return operators, nil
}

func (r *operatorRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE operators SET last_login_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
