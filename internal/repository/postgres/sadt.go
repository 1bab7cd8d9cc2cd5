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

type sadtRepository struct {
	db *sqlx.DB
}

func NewSadtRepository(db *sqlx.DB) repository.SadtRepository {
	return &sadtRepository{db: db}
}

func (r *sadtRepository) Create(ctx context.Context, doc *model.SadtDocument, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	docQuery := `
		INSERT INTO sadt_documents (
			id, sadt_number, patient_id, appointment_id, sadt_type, status, urgent,
			issued_at, unit_name, unit_cnes, unit_address, unit_phone, unit_city,
			unit_state, professional_name, professional_occupation,
			professional_council, professional_council_no, notes, payload,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :sadt_number, :patient_id, :appointment_id, :sadt_type, :status, :urgent,
			:issued_at, :unit_name, :unit_cnes, :unit_address, :unit_phone, :unit_city,
			:unit_state, :professional_name, :professional_occupation,
			:professional_council, :professional_council_no, :notes, :payload,
			:created_at, :updated_at, :created_by, :updated_by
		)
	`
	if _, err := tx.NamedExecContext(ctx, docQuery, doc); err != nil {
		if isUniqueViolation(err, "sadt_documents_sadt_number_key") {
			return apperrors.Duplicate("document number already allocated", err)
		}
		return fmt.Errorf("failed to create sadt document: %w", err)
	}

	procQuery := `
		INSERT INTO sadt_procedures (
			id, document_id, code, name, quantity, diagnosis_code, justification,
			preparation, reference_price, authorized, executed, executed_at, execution_notes
		) VALUES (
			:id, :document_id, :code, :name, :quantity, :diagnosis_code, :justification,
			:preparation, :reference_price, :authorized, :executed, :executed_at, :execution_notes
		)
	`
	for _, proc := range doc.Procedures {
		if _, err := tx.NamedExecContext(ctx, procQuery, proc); err != nil {
			return fmt.Errorf("failed to create sadt procedure: %w", err)
		}
	}

	if event != nil {
		if err := insertOutboxTx(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sadt document: %w", err)
	}
	return nil
}

func (r *sadtRepository) Get(ctx context.Context, id uuid.UUID) (*model.SadtDocument, error) {
	return r.getOne(ctx, `SELECT * FROM sadt_documents WHERE id = $1`, id)
}

func (r *sadtRepository) GetByNumber(ctx context.Context, number string) (*model.SadtDocument, error) {
	return r.getOne(ctx, `SELECT * FROM sadt_documents WHERE sadt_number = $1`, number)
}

func (r *sadtRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.SadtDocument, error) {
	var doc model.SadtDocument
	err := r.db.GetContext(ctx, &doc, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("sadt document", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sadt document: %w", err)
	}
	if err := r.loadProcedures(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *sadtRepository) loadProcedures(ctx context.Context, doc *model.SadtDocument) error {
	query := `SELECT * FROM sadt_procedures WHERE document_id = $1 ORDER BY code ASC`
	if err := r.db.SelectContext(ctx, &doc.Procedures, query, doc.ID); err != nil {
		return fmt.Errorf("failed to load sadt procedures: %w", err)
	}
	return nil
}

func (r *sadtRepository) MaxSuffix(ctx context.Context, prefix string) (int, error) {
	// The suffix is everything after the fixed-width prefix. substr only has
	// integer overloads, so the untyped start-position parameter cannot
	// resolve to the regex variant the way SUBSTRING(... FROM $2) would.
	// COALESCE keeps the first allocation for a fresh prefix at 0.
	query := `
		SELECT COALESCE(MAX(CAST(substr(sadt_number, $2) AS INTEGER)), 0)
		FROM sadt_documents
		WHERE sadt_number LIKE $1 || '%'
	`
	var max int
	if err := r.db.GetContext(ctx, &max, query, prefix, len(prefix)+1); err != nil {
		return 0, fmt.Errorf("failed to read max document suffix: %w", err)
	}
	return max, nil
}

func (r *sadtRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to model.SadtStatus, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The status guard makes the update the deciding write: of two
	// concurrent transitions on the same document, only one finds the
	// expected stored status.
	query := `UPDATE sadt_documents SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := tx.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("failed to update sadt status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var current model.SadtStatus
		err := tx.GetContext(ctx, &current, `SELECT status FROM sadt_documents WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("sadt document", err)
		}
		if err != nil {
			return fmt.Errorf("failed to read sadt status: %w", err)
		}
		return apperrors.InvalidTransition(fmt.Sprintf("document is %s, not %s", current, from))
	}

	if event != nil {
		if err := insertOutboxTx(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}
	return nil
}

func (r *sadtRepository) SetPayload(ctx context.Context, id uuid.UUID, payload []byte) error {
	query := `UPDATE sadt_documents SET payload = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, payload, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to store rendered payload: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("sadt document", nil)
	}
	return nil
}

func (r *sadtRepository) MarkProcedureExecuted(ctx context.Context, documentID, procedureID uuid.UUID, executedAt time.Time, notes string) error {
	query := `
		UPDATE sadt_procedures
		SET executed = TRUE, executed_at = $1, execution_notes = $2
		WHERE id = $3 AND document_id = $4
	`
	res, err := r.db.ExecContext(ctx, query, executedAt, notes, procedureID, documentID)
	if err != nil {
		return fmt.Errorf("failed to mark procedure executed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("sadt procedure", nil)
	}
	return nil
}

func (r *sadtRepository) List(ctx context.Context, filters *model.SadtFilters) ([]*model.SadtDocument, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filters != nil {
		if filters.PatientID != nil {
			args = append(args, *filters.PatientID)
			conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)))
		}
		if filters.Type != "" {
			args = append(args, filters.Type)
			conditions = append(conditions, fmt.Sprintf("sadt_type = $%d", len(args)))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if !filters.From.IsZero() {
			args = append(args, filters.From)
			conditions = append(conditions, fmt.Sprintf("issued_at >= $%d", len(args)))
		}
		if !filters.To.IsZero() {
			args = append(args, filters.To)
			conditions = append(conditions, fmt.Sprintf("issued_at <= $%d", len(args)))
		}
	}

	query := fmt.Sprintf(
		`SELECT * FROM sadt_documents WHERE %s ORDER BY issued_at DESC`,
		strings.Join(conditions, " AND "),
	)
	var docs []*model.SadtDocument
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sadt documents: %w", err)
	}
	for _, doc := range docs {
		if err := r.loadProcedures(ctx, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func insertOutboxTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, created_at)
		VALUES (:id, :event_type, :payload, :status, :created_at)
	`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}
