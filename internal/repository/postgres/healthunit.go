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

type healthUnitRepository struct {
	db *sqlx.DB
}

func NewHealthUnitRepository(db *sqlx.DB) repository.HealthUnitRepository {
	return &healthUnitRepository{db: db}
}

func (r *healthUnitRepository) Create(ctx context.Context, unit *model.HealthUnit) error {
	query := `
		INSERT INTO health_units (
			id, name, cnes, unit_type, street, street_number, district, city,
			state, zip_code, phone, active, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :cnes, :unit_type, :street, :street_number, :district, :city,
			:state, :zip_code, :phone, :active, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, unit)
	if err != nil {
		if isUniqueViolation(err, "health_units_cnes_key") {
			return apperrors.Duplicate("CNES code already registered", err)
		}
		return fmt.Errorf("failed to create health unit: %w", err)
	}
	return nil
}

func (r *healthUnitRepository) Get(ctx context.Context, id uuid.UUID) (*model.HealthUnit, error) {
	query := `SELECT * FROM health_units WHERE id = $1`
	var unit model.HealthUnit
	err := r.db.GetContext(ctx, &unit, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("health unit", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health unit: %w", err)
	}
	return &unit, nil
}

func (r *healthUnitRepository) Update(ctx context.Context, unit *model.HealthUnit) error {
	query := `
		UPDATE health_units SET
			name = :name, unit_type = :unit_type, street = :street,
			street_number = :street_number, district = :district, city = :city,
			state = :state, zip_code = :zip_code, phone = :phone, active = :active,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id
	`
	unit.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, unit); err != nil {
		return fmt.Errorf("failed to update health unit: %w", err)
	}
	return nil
}

func (r *healthUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM health_units WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete health unit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("health unit", nil)
	}
	return nil
}

func (r *healthUnitRepository) List(ctx context.Context) ([]*model.HealthUnit, error) {
	query := `SELECT * FROM health_units ORDER BY name ASC`
	var units []*model.HealthUnit
	if err := r.db.SelectContext(ctx, &units, query); err != nil {
		return nil, fmt.Errorf("failed to list health units: %w", err)
	}
	return units, nil
}
