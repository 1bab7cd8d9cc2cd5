package model

type HealthUnitType string

const (
	HealthUnitBasic      HealthUnitType = "BASIC"
	HealthUnitSpecialty  HealthUnitType = "SPECIALTY"
	HealthUnitEmergency  HealthUnitType = "EMERGENCY"
	HealthUnitHospital   HealthUnitType = "HOSPITAL"
	HealthUnitDiagnostic HealthUnitType = "DIAGNOSTIC"
)

type HealthUnit struct {
	Base
	Name         string         `db:"name" json:"name"`
	CNES         string         `db:"cnes" json:"cnes"`
	Type         HealthUnitType `db:"unit_type" json:"unit_type"`
	Street       string         `db:"street" json:"street,omitempty"`
	StreetNumber string         `db:"street_number" json:"street_number,omitempty"`
	District     string         `db:"district" json:"district,omitempty"`
	City         string         `db:"city" json:"city"`
	State        string         `db:"state" json:"state"`
	ZipCode      string         `db:"zip_code" json:"zip_code,omitempty"`
	Phone        string         `db:"phone" json:"phone,omitempty"`
	Active       bool           `db:"active" json:"active"`
}

// FormattedAddress is derived for display, never persisted.
func (u *HealthUnit) FormattedAddress() string {
	addr := u.Street
	if u.StreetNumber != "" {
		addr += ", " + u.StreetNumber
	}
	if u.District != "" {
		addr += " - " + u.District
	}
	return addr
}

type CreateHealthUnitRequest struct {
	Name         string         `json:"name" binding:"required"`
	CNES         string         `json:"cnes" binding:"required"`
	Type         HealthUnitType `json:"unit_type" binding:"required,oneof=BASIC SPECIALTY EMERGENCY HOSPITAL DIAGNOSTIC"`
	Street       string         `json:"street"`
	StreetNumber string         `json:"street_number"`
	District     string         `json:"district"`
	City         string         `json:"city" binding:"required"`
	State        string         `json:"state" binding:"required"`
	ZipCode      string         `json:"zip_code"`
	Phone        string         `json:"phone"`
}

type UpdateHealthUnitRequest struct {
	Name         *string         `json:"name"`
	Type         *HealthUnitType `json:"unit_type" binding:"omitempty,oneof=BASIC SPECIALTY EMERGENCY HOSPITAL DIAGNOSTIC"`
	Street       *string         `json:"street"`
	StreetNumber *string         `json:"street_number"`
	District     *string         `json:"district"`
	City         *string         `json:"city"`
	State        *string         `json:"state"`
	ZipCode      *string         `json:"zip_code"`
	Phone        *string         `json:"phone"`
	Active       *bool           `json:"active"`
}

func (r *UpdateHealthUnitRequest) Apply(u *HealthUnit) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Type != nil {
		u.Type = *r.Type
	}
	if r.Street != nil {
		u.Street = *r.Street
	}
	if r.StreetNumber != nil {
		u.StreetNumber = *r.StreetNumber
	}
	if r.District != nil {
		u.District = *r.District
	}
	if r.City != nil {
		u.City = *r.City
	}
	if r.State != nil {
		u.State = *r.State
	}
	if r.ZipCode != nil {
		u.ZipCode = *r.ZipCode
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.Active != nil {
		u.Active = *r.Active
	}
}
