package model

import (
	"time"

	"github.com/google/uuid"
)

type SadtType string

const (
	SadtTypeLaboratory  SadtType = "LABORATORY"
	SadtTypeImaging     SadtType = "IMAGING"
	SadtTypeTherapeutic SadtType = "THERAPEUTIC"
)

func (t SadtType) Valid() bool {
	switch t {
	case SadtTypeLaboratory, SadtTypeImaging, SadtTypeTherapeutic:
		return true
	}
	return false
}

type SadtStatus string

const (
	SadtStatusIssued    SadtStatus = "ISSUED"
	SadtStatusCancelled SadtStatus = "CANCELLED"
	SadtStatusPerformed SadtStatus = "PERFORMED"
)

// Terminal reports whether no transition leaves the status.
func (s SadtStatus) Terminal() bool {
	return s == SadtStatusCancelled || s == SadtStatusPerformed
}

// SadtDocument is a diagnostic/therapeutic referral. The issuing facility and
// requesting professional are stored as snapshots so later registry edits do
// not rewrite issued documents.
type SadtDocument struct {
	Base
	Number                 string           `db:"sadt_number" json:"sadt_number"`
	PatientID              uuid.UUID        `db:"patient_id" json:"patient_id"`
	AppointmentID          *uuid.UUID       `db:"appointment_id" json:"appointment_id,omitempty"`
	Type                   SadtType         `db:"sadt_type" json:"sadt_type"`
	Status                 SadtStatus       `db:"status" json:"status"`
	Urgent                 bool             `db:"urgent" json:"urgent"`
	IssuedAt               time.Time        `db:"issued_at" json:"issued_at"`
	UnitName               string           `db:"unit_name" json:"unit_name"`
	UnitCNES               string           `db:"unit_cnes" json:"unit_cnes"`
	UnitAddress            string           `db:"unit_address" json:"unit_address"`
	UnitPhone              string           `db:"unit_phone" json:"unit_phone"`
	UnitCity               string           `db:"unit_city" json:"unit_city"`
	UnitState              string           `db:"unit_state" json:"unit_state"`
	ProfessionalName       string           `db:"professional_name" json:"professional_name"`
	ProfessionalOccupation string           `db:"professional_occupation" json:"professional_occupation"`
	ProfessionalCouncil    string           `db:"professional_council" json:"professional_council"`
	ProfessionalCouncilNo  string           `db:"professional_council_no" json:"professional_council_no"`
	Notes                  string           `db:"notes" json:"notes,omitempty"`
	Payload                []byte           `db:"payload" json:"payload,omitempty"`
	Procedures             []*SadtProcedure `db:"-" json:"procedures"`
}

// SadtProcedure is a requested line item owned by exactly one document.
type SadtProcedure struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	DocumentID     uuid.UUID  `db:"document_id" json:"document_id"`
	Code           string     `db:"code" json:"code"`
	Name           string     `db:"name" json:"name"`
	Quantity       int        `db:"quantity" json:"quantity"`
	DiagnosisCode  string     `db:"diagnosis_code" json:"diagnosis_code,omitempty"`
	Justification  string     `db:"justification" json:"justification,omitempty"`
	Preparation    string     `db:"preparation" json:"preparation,omitempty"`
	ReferencePrice float64    `db:"reference_price" json:"reference_price"`
	Authorized     bool       `db:"authorized" json:"authorized"`
	Executed       bool       `db:"executed" json:"executed"`
	ExecutedAt     *time.Time `db:"executed_at" json:"executed_at,omitempty"`
	ExecutionNotes string     `db:"execution_notes" json:"execution_notes,omitempty"`
}

type IssueSadtRequest struct {
	PatientID     uuid.UUID              `json:"patient_id" binding:"required"`
	AppointmentID *uuid.UUID             `json:"appointment_id"`
	Type          SadtType               `json:"sadt_type" binding:"required,oneof=LABORATORY IMAGING THERAPEUTIC"`
	Urgent        bool                   `json:"urgent"`
	IssuedAt      *time.Time             `json:"issued_at"`
	UnitID        uuid.UUID              `json:"unit_id" binding:"required"`
	Notes         string                 `json:"notes"`
	Professional  SadtProfessional       `json:"professional" binding:"required"`
	Procedures    []SadtProcedureRequest `json:"procedures" binding:"required"`
}

type SadtProfessional struct {
	Name       string `json:"name" binding:"required"`
	Occupation string `json:"occupation"`
	Council    string `json:"council"`
	CouncilNo  string `json:"council_no"`
}

type SadtProcedureRequest struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	DiagnosisCode  string  `json:"diagnosis_code"`
	Justification  string  `json:"justification"`
	Preparation    string  `json:"preparation"`
	ReferencePrice float64 `json:"reference_price"`
	Authorized     bool    `json:"authorized"`
}

type ExecuteProcedureRequest struct {
	Notes string `json:"notes"`
}

type SadtFilters struct {
	PatientID *uuid.UUID
	Type      SadtType
	Status    SadtStatus
	From      time.Time
	To        time.Time
}
