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

type medicationRepository struct {
	db *sqlx.DB
}

func NewMedicationRepository(db *sqlx.DB) repository.MedicationRepository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, name, active_ingredient, form, dosage, stock, stock_unit,
			controlled, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :active_ingredient, :form, :dosage, :stock, :stock_unit,
			:controlled, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	medication.CreatedAt = time.Now()
	medication.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, medication); err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := `SELECT * FROM medications WHERE id = $1`
	var medication model.Medication
	err := r.db.GetContext(ctx, &medication, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("medication", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &medication, nil
}

func (r *medicationRepository) Update(ctx context.Context, medication *model.Medication) error {
	query := `
		UPDATE medications SET
			name = :name, active_ingredient = :active_ingredient, form = :form,
			dosage = :dosage, stock = :stock, stock_unit = :stock_unit,
			controlled = :controlled, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id
	`
	medication.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, medication); err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM medications WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("medication", nil)
	}
	return nil
}

func (r *medicationRepository) SearchByName(ctx context.Context, term string) ([]*model.Medication, error) {
	query := `
		SELECT * FROM medications
		WHERE name ILIKE '%' || $1 || '%' OR active_ingredient ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`
	var medications []*model.Medication
	if err := r.db.SelectContext(ctx, &medications, query, term); err != nil {
		return nil, fmt.Errorf("failed to search medications: %w", err)
	}
	return medications, nil
}

func (r *medicationRepository) List(ctx context.Context) ([]*model.Medication, error) {
	query := `SELECT * FROM medications ORDER BY name ASC`
	var medications []*model.Medication
	if err := r.db.SelectContext(ctx, &medications, query); err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}
