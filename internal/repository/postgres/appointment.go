package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, unit_id, professional, specialty, start_time, end_time,
			status, notes, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :patient_id, :unit_id, :professional, :specialty, :start_time, :end_time,
			:status, :notes, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = $1`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments SET
			professional = :professional, specialty = :specialty,
			start_time = :start_time, end_time = :end_time, status = :status,
			notes = :notes, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id
	`
	appointment.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filters != nil {
		if filters.PatientID != nil {
			args = append(args, *filters.PatientID)
			conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)))
		}
		if filters.UnitID != nil {
			args = append(args, *filters.UnitID)
			conditions = append(conditions, fmt.Sprintf("unit_id = $%d", len(args)))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if !filters.From.IsZero() {
			args = append(args, filters.From)
			conditions = append(conditions, fmt.Sprintf("start_time >= $%d", len(args)))
		}
		if !filters.To.IsZero() {
			args = append(args, filters.To)
			conditions = append(conditions, fmt.Sprintf("start_time <= $%d", len(args)))
		}
	}

	query := fmt.Sprintf(
		`SELECT * FROM appointments WHERE %s ORDER BY start_time ASC`,
		strings.Join(conditions, " AND "),
	)
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
