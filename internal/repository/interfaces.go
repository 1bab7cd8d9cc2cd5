package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		// FindByCPF and FindByCNS return (nil, nil) when no record matches.
		FindByCPF(ctx context.Context, cpf string) (*model.Patient, error)
		FindByCNS(ctx context.Context, cns string) (*model.Patient, error)
		Search(ctx context.Context, term string) ([]*model.Patient, error)
		List(ctx context.Context, p model.Pagination) ([]*model.Patient, error)
	}

	SadtRepository interface {
		// Create persists the document, its line items and the issue event in
		// a single transaction.
		Create(ctx context.Context, doc *model.SadtDocument, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.SadtDocument, error)
		GetByNumber(ctx context.Context, number string) (*model.SadtDocument, error)
		// MaxSuffix returns the highest numeric suffix among document numbers
		// starting with prefix, 0 when none exist.
		MaxSuffix(ctx context.Context, prefix string) (int, error)
		// SetStatus applies the transition and the event atomically, but only
		// when the stored status still equals from; otherwise it reports
		// InvalidTransition with the stored status.
		SetStatus(ctx context.Context, id uuid.UUID, from, to model.SadtStatus, event *model.OutboxEvent) error
		SetPayload(ctx context.Context, id uuid.UUID, payload []byte) error
		MarkProcedureExecuted(ctx context.Context, documentID, procedureID uuid.UUID, executedAt time.Time, notes string) error
		List(ctx context.Context, filters *model.SadtFilters) ([]*model.SadtDocument, error)
	}

	OperatorRepository interface {
		Create(ctx context.Context, operator *model.Operator) error
		Get(ctx context.Context, id uuid.UUID) (*model.Operator, error)
		GetByLogin(ctx context.Context, login string) (*model.Operator, error)
		Update(ctx context.Context, operator *model.Operator) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Operator, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	HealthUnitRepository interface {
		Create(ctx context.Context, unit *model.HealthUnit) error
		Get(ctx context.Context, id uuid.UUID) (*model.HealthUnit, error)
		Update(ctx context.Context, unit *model.HealthUnit) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.HealthUnit, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		Update(ctx context.Context, medication *model.Medication) error
		Delete(ctx context.Context, id uuid.UUID) error
		SearchByName(ctx context.Context, term string) ([]*model.Medication, error)
		List(ctx context.Context) ([]*model.Medication, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
