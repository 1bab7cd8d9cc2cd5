package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Operator struct {
	Base
	Login         string         `db:"login" json:"login"`
	PasswordHash  string         `db:"password_hash" json:"-"`
	Name          string         `db:"name" json:"name"`
	Role          string         `db:"role" json:"role,omitempty"`
	CPF           string         `db:"cpf" json:"cpf,omitempty"`
	Email         string         `db:"email" json:"email,omitempty"`
	Active        bool           `db:"active" json:"active"`
	UnitID        uuid.UUID      `db:"unit_id" json:"unit_id"`
	CurrentUnitID *uuid.UUID     `db:"current_unit_id" json:"current_unit_id,omitempty"`
	Profiles      pq.StringArray `db:"profiles" json:"profiles"`
	Master        bool           `db:"master" json:"master"`
	LastLoginAt   *time.Time     `db:"last_login_at" json:"last_login_at,omitempty"`
}

// CanAccess derives the operator's unit scope. A master operator reaches every
// unit; everyone else reaches only their home unit and the unit they are
// currently logged into. The scope is derived, never stored.
func (o *Operator) CanAccess(unitID uuid.UUID) bool {
	if o.Master {
		return true
	}
	if o.UnitID == unitID {
		return true
	}
	return o.CurrentUnitID != nil && *o.CurrentUnitID == unitID
}

type CreateOperatorRequest struct {
	Login    string    `json:"login" binding:"required"`
	Password string    `json:"password" binding:"required,min=8"`
	Name     string    `json:"name" binding:"required"`
	Role     string    `json:"role"`
	CPF      string    `json:"cpf"`
	Email    string    `json:"email" binding:"omitempty,email"`
	UnitID   uuid.UUID `json:"unit_id" binding:"required"`
	Profiles []string  `json:"profiles"`
	Master   bool      `json:"master"`
}

type UpdateOperatorRequest struct {
	Name          *string    `json:"name"`
	Role          *string    `json:"role"`
	CPF           *string    `json:"cpf"`
	Email         *string    `json:"email" binding:"omitempty,email"`
	Active        *bool      `json:"active"`
	UnitID        *uuid.UUID `json:"unit_id"`
	CurrentUnitID *uuid.UUID `json:"current_unit_id"`
	Profiles      *[]string  `json:"profiles"`
	Master        *bool      `json:"master"`
}

func (r *UpdateOperatorRequest) Apply(o *Operator) {
	if r.Name != nil {
		o.Name = *r.Name
	}
	if r.Role != nil {
		o.Role = *r.Role
	}
	if r.CPF != nil {
		o.CPF = *r.CPF
	}
	if r.Email != nil {
		o.Email = *r.Email
	}
	if r.Active != nil {
		o.Active = *r.Active
	}
	if r.UnitID != nil {
		o.UnitID = *r.UnitID
	}
	if r.CurrentUnitID != nil {
		o.CurrentUnitID = r.CurrentUnitID
	}
	if r.Profiles != nil {
		o.Profiles = pq.StringArray(*r.Profiles)
	}
	if r.Master != nil {
		o.Master = *r.Master
	}
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
