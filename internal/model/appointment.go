package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	UnitID       uuid.UUID         `db:"unit_id" json:"unit_id"`
	Professional string            `db:"professional" json:"professional"`
	Specialty    string            `db:"specialty" json:"specialty,omitempty"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID    uuid.UUID `json:"patient_id" binding:"required"`
	UnitID       uuid.UUID `json:"unit_id" binding:"required"`
	Professional string    `json:"professional" binding:"required"`
	Specialty    string    `json:"specialty"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	Notes        string    `json:"notes"`
}

type UpdateAppointmentRequest struct {
	Professional *string            `json:"professional"`
	Specialty    *string            `json:"specialty"`
	StartTime    *time.Time         `json:"start_time"`
	EndTime      *time.Time         `json:"end_time"`
	Status       *AppointmentStatus `json:"status" binding:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED NO_SHOW"`
	Notes        *string            `json:"notes"`
}

func (r *UpdateAppointmentRequest) Apply(a *Appointment) {
	if r.Professional != nil {
		a.Professional = *r.Professional
	}
	if r.Specialty != nil {
		a.Specialty = *r.Specialty
	}
	if r.StartTime != nil {
		a.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		a.EndTime = *r.EndTime
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.Notes != nil {
		a.Notes = *r.Notes
	}
}

type AppointmentFilters struct {
	PatientID *uuid.UUID
	UnitID    *uuid.UUID
	Status    AppointmentStatus
	From      time.Time
	To        time.Time
}
