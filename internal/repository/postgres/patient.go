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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, social_name, mother_name, cpf, cpf_justification, cns,
			sex, birth_date, bedridden, homebound, mental_health, herbal_remedies,
			other_conditions, street, street_number, district, city, state, zip_code,
			phone, cell_phone, email, blood_type, rg, rg_issuer, birth_certificate,
			work_card, voter_id, record_number, family_unit, race, ethnicity,
			education_level, family_situation, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :social_name, :mother_name, NULLIF(:cpf, ''), :cpf_justification, NULLIF(:cns, ''),
			:sex, :birth_date, :bedridden, :homebound, :mental_health, :herbal_remedies,
			:other_conditions, :street, :street_number, :district, :city, :state, :zip_code,
			:phone, :cell_phone, :email, :blood_type, :rg, :rg_issuer, :birth_certificate,
			:work_card, :voter_id, :record_number, :family_unit, :race, :ethnicity,
			:education_level, :family_situation, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, patient)
	if err != nil {
		if reclassified := reclassifyPatientConstraint(err); reclassified != nil {
			return reclassified
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient patientRow
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient.toModel(), nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			name = :name, social_name = :social_name, mother_name = :mother_name,
			cpf = NULLIF(:cpf, ''), cpf_justification = :cpf_justification, cns = NULLIF(:cns, ''),
			sex = :sex, birth_date = :birth_date, bedridden = :bedridden,
			homebound = :homebound, mental_health = :mental_health,
			herbal_remedies = :herbal_remedies, other_conditions = :other_conditions,
			street = :street, street_number = :street_number, district = :district,
			city = :city, state = :state, zip_code = :zip_code, phone = :phone,
			cell_phone = :cell_phone, email = :email, blood_type = :blood_type,
			rg = :rg, rg_issuer = :rg_issuer, birth_certificate = :birth_certificate,
			work_card = :work_card, voter_id = :voter_id, record_number = :record_number,
			family_unit = :family_unit, race = :race, ethnicity = :ethnicity,
			education_level = :education_level, family_situation = :family_situation,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id
	`
	patient.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, patient)
	if err != nil {
		if reclassified := reclassifyPatientConstraint(err); reclassified != nil {
			return reclassified
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM patients WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) FindByCPF(ctx context.Context, cpf string) (*model.Patient, error) {
	return r.findOne(ctx, `SELECT * FROM patients WHERE cpf = $1`, cpf)
}

func (r *patientRepository) FindByCNS(ctx context.Context, cns string) (*model.Patient, error) {
	return r.findOne(ctx, `SELECT * FROM patients WHERE cns = $1`, cns)
}

func (r *patientRepository) findOne(ctx context.Context, query, arg string) (*model.Patient, error) {
	var patient patientRow
	err := r.db.GetContext(ctx, &patient, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return patient.toModel(), nil
}

func (r *patientRepository) Search(ctx context.Context, term string) ([]*model.Patient, error) {
	query := `
		SELECT * FROM patients
		WHERE name ILIKE '%' || $1 || '%'
		   OR social_name ILIKE '%' || $1 || '%'
		   OR mother_name ILIKE '%' || $1 || '%'
		   OR cpf = $1
		   OR cns = $1
		ORDER BY name ASC
	`
	var rows []patientRow
	if err := r.db.SelectContext(ctx, &rows, query, term); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return toPatients(rows), nil
}

func (r *patientRepository) List(ctx context.Context, p model.Pagination) ([]*model.Patient, error) {
	if p.PageSize <= 0 {
		p.PageSize = 50
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	query := `SELECT * FROM patients ORDER BY name ASC LIMIT $1 OFFSET $2`
	var rows []patientRow
	if err := r.db.SelectContext(ctx, &rows, query, p.PageSize, (p.Page-1)*p.PageSize); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return toPatients(rows), nil
}

// reclassifyPatientConstraint turns identifier-constraint violations into the
// duplicate error kind; the unique indexes are the source of truth for
// uniqueness, the service-level pre-checks only produce friendlier messages.
func reclassifyPatientConstraint(err error) error {
	switch {
	case isUniqueViolation(err, "patients_cpf_key"):
		return apperrors.Duplicate("tax ID already registered to another patient", err)
	case isUniqueViolation(err, "patients_cns_key"):
		return apperrors.Duplicate("health card ID already registered to another patient", err)
	case isUniqueViolation(err, ""):
		return apperrors.Duplicate("patient identifier already registered", err)
	}
	return nil
}

// patientRow mirrors model.Patient with nullable identifier columns. CPF and
// CNS are NULL in storage when absent so the unique indexes ignore blanks.
type patientRow struct {
	model.Patient
	NullCPF sql.NullString `db:"cpf"`
	NullCNS sql.NullString `db:"cns"`
}

func (row *patientRow) toModel() *model.Patient {
	p := row.Patient
	p.CPF = row.NullCPF.String
	p.CNS = row.NullCNS.String
	return &p
}

func toPatients(rows []patientRow) []*model.Patient {
	patients := make([]*model.Patient, 0, len(rows))
	for i := range rows {
		patients = append(patients, rows[i].toModel())
	}
	return patients
}
