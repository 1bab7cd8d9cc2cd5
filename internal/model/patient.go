package model

import (
	"time"
)

type Sex string

const (
	SexFemale Sex = "FEMALE"
	SexMale   Sex = "MALE"
	SexOther  Sex = "OTHER"
)

type Patient struct {
	Base
	Name             string     `db:"name" json:"name"`
	SocialName       string     `db:"social_name" json:"social_name,omitempty"`
	MotherName       string     `db:"mother_name" json:"mother_name"`
	CPF              string     `db:"cpf" json:"cpf,omitempty"`
	CPFJustification string     `db:"cpf_justification" json:"cpf_justification,omitempty"`
	CNS              string     `db:"cns" json:"cns,omitempty"`
	Sex              Sex        `db:"sex" json:"sex"`
	BirthDate        time.Time  `db:"birth_date" json:"birth_date"`
	Bedridden        bool       `db:"bedridden" json:"bedridden"`
	Homebound        bool       `db:"homebound" json:"homebound"`
	MentalHealth     bool       `db:"mental_health" json:"mental_health"`
	HerbalRemedies   bool       `db:"herbal_remedies" json:"herbal_remedies"`
	OtherConditions  string     `db:"other_conditions" json:"other_conditions,omitempty"`
	Street           string     `db:"street" json:"street,omitempty"`
	StreetNumber     string     `db:"street_number" json:"street_number,omitempty"`
	District         string     `db:"district" json:"district,omitempty"`
	City             string     `db:"city" json:"city,omitempty"`
	State            string     `db:"state" json:"state,omitempty"`
	ZipCode          string     `db:"zip_code" json:"zip_code,omitempty"`
	Phone            string     `db:"phone" json:"phone,omitempty"`
	CellPhone        string     `db:"cell_phone" json:"cell_phone,omitempty"`
	Email            string     `db:"email" json:"email,omitempty"`
	BloodType        string     `db:"blood_type" json:"blood_type,omitempty"`
	RG               string     `db:"rg" json:"rg,omitempty"`
	RGIssuer         string     `db:"rg_issuer" json:"rg_issuer,omitempty"`
	BirthCertificate string     `db:"birth_certificate" json:"birth_certificate,omitempty"`
	WorkCard         string     `db:"work_card" json:"work_card,omitempty"`
	VoterID          string     `db:"voter_id" json:"voter_id,omitempty"`
	RecordNumber     string     `db:"record_number" json:"record_number,omitempty"`
	FamilyUnit       string     `db:"family_unit" json:"family_unit,omitempty"`
	Race             string     `db:"race" json:"race,omitempty"`
	Ethnicity        string     `db:"ethnicity" json:"ethnicity,omitempty"`
	EducationLevel   string     `db:"education_level" json:"education_level,omitempty"`
	FamilySituation  string     `db:"family_situation" json:"family_situation,omitempty"`
	DeceasedAt       *time.Time `db:"deceased_at" json:"deceased_at,omitempty"`
}

// FormattedAddress is derived for display, never persisted.
func (p *Patient) FormattedAddress() string {
	parts := make([]string, 0, 4)
	if p.Street != "" {
		s := p.Street
		if p.StreetNumber != "" {
			s += ", " + p.StreetNumber
		}
		parts = append(parts, s)
	}
	if p.District != "" {
		parts = append(parts, p.District)
	}
	if p.City != "" {
		c := p.City
		if p.State != "" {
			c += "/" + p.State
		}
		parts = append(parts, c)
	}
	if p.ZipCode != "" {
		parts = append(parts, p.ZipCode)
	}
	out := ""
	for i, part := range parts {
		if i > 0 {
			out += " - "
		}
		out += part
	}
	return out
}

type CreatePatientRequest struct {
	Name             string    `json:"name" binding:"required"`
	SocialName       string    `json:"social_name"`
	MotherName       string    `json:"mother_name" binding:"required"`
	CPF              string    `json:"cpf"`
	CPFJustification string    `json:"cpf_justification"`
	CNS              string    `json:"cns"`
	Sex              Sex       `json:"sex" binding:"required,oneof=FEMALE MALE OTHER"`
	BirthDate        time.Time `json:"birth_date" binding:"required"`
	Bedridden        bool      `json:"bedridden"`
	Homebound        bool      `json:"homebound"`
	MentalHealth     bool      `json:"mental_health"`
	HerbalRemedies   bool      `json:"herbal_remedies"`
	OtherConditions  string    `json:"other_conditions"`
	Street           string    `json:"street"`
	StreetNumber     string    `json:"street_number"`
	District         string    `json:"district"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	ZipCode          string    `json:"zip_code"`
	Phone            string    `json:"phone"`
	CellPhone        string    `json:"cell_phone"`
	Email            string    `json:"email" binding:"omitempty,email"`
	BloodType        string    `json:"blood_type"`
	RG               string    `json:"rg"`
	RGIssuer         string    `json:"rg_issuer"`
	BirthCertificate string    `json:"birth_certificate"`
	WorkCard         string    `json:"work_card"`
	VoterID          string    `json:"voter_id"`
	RecordNumber     string    `json:"record_number"`
	FamilyUnit       string    `json:"family_unit"`
	Race             string    `json:"race"`
	Ethnicity        string    `json:"ethnicity"`
	EducationLevel   string    `json:"education_level"`
	FamilySituation  string    `json:"family_situation"`
}

// UpdatePatientRequest carries a partial draft: only non-nil fields overwrite
// the stored record.
type UpdatePatientRequest struct {
	Name             *string    `json:"name"`
	SocialName       *string    `json:"social_name"`
	MotherName       *string    `json:"mother_name"`
	CPF              *string    `json:"cpf"`
	CPFJustification *string    `json:"cpf_justification"`
	CNS              *string    `json:"cns"`
	Sex              *Sex       `json:"sex" binding:"omitempty,oneof=FEMALE MALE OTHER"`
	BirthDate        *time.Time `json:"birth_date"`
	Bedridden        *bool      `json:"bedridden"`
	Homebound        *bool      `json:"homebound"`
	MentalHealth     *bool      `json:"mental_health"`
	HerbalRemedies   *bool      `json:"herbal_remedies"`
	OtherConditions  *string    `json:"other_conditions"`
	Street           *string    `json:"street"`
	StreetNumber     *string    `json:"street_number"`
	District         *string    `json:"district"`
	City             *string    `json:"city"`
	State            *string    `json:"state"`
	ZipCode          *string    `json:"zip_code"`
	Phone            *string    `json:"phone"`
	CellPhone        *string    `json:"cell_phone"`
	Email            *string    `json:"email" binding:"omitempty,email"`
	BloodType        *string    `json:"blood_type"`
	RG               *string    `json:"rg"`
	RGIssuer         *string    `json:"rg_issuer"`
	BirthCertificate *string    `json:"birth_certificate"`
	WorkCard         *string    `json:"work_card"`
	VoterID          *string    `json:"voter_id"`
	RecordNumber     *string    `json:"record_number"`
	FamilyUnit       *string    `json:"family_unit"`
	Race             *string    `json:"race"`
	Ethnicity        *string    `json:"ethnicity"`
	EducationLevel   *string    `json:"education_level"`
	FamilySituation  *string    `json:"family_situation"`
}

// Apply merges the partial draft into p. Unset fields are never clobbered.
func (r *UpdatePatientRequest) Apply(p *Patient) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&p.Name, r.Name)
	setStr(&p.SocialName, r.SocialName)
	setStr(&p.MotherName, r.MotherName)
	setStr(&p.CPF, r.CPF)
	setStr(&p.CPFJustification, r.CPFJustification)
	setStr(&p.CNS, r.CNS)
	if r.Sex != nil {
		p.Sex = *r.Sex
	}
	if r.BirthDate != nil {
		p.BirthDate = *r.BirthDate
	}
	setBool(&p.Bedridden, r.Bedridden)
	setBool(&p.Homebound, r.Homebound)
	setBool(&p.MentalHealth, r.MentalHealth)
	setBool(&p.HerbalRemedies, r.HerbalRemedies)
	setStr(&p.OtherConditions, r.OtherConditions)
	setStr(&p.Street, r.Street)
	setStr(&p.StreetNumber, r.StreetNumber)
	setStr(&p.District, r.District)
	setStr(&p.City, r.City)
	setStr(&p.State, r.State)
	setStr(&p.ZipCode, r.ZipCode)
	setStr(&p.Phone, r.Phone)
	setStr(&p.CellPhone, r.CellPhone)
	setStr(&p.Email, r.Email)
	setStr(&p.BloodType, r.BloodType)
	setStr(&p.RG, r.RG)
	setStr(&p.RGIssuer, r.RGIssuer)
	setStr(&p.BirthCertificate, r.BirthCertificate)
	setStr(&p.WorkCard, r.WorkCard)
	setStr(&p.VoterID, r.VoterID)
	setStr(&p.RecordNumber, r.RecordNumber)
	setStr(&p.FamilyUnit, r.FamilyUnit)
	setStr(&p.Race, r.Race)
	setStr(&p.Ethnicity, r.Ethnicity)
	setStr(&p.EducationLevel, r.EducationLevel)
	setStr(&p.FamilySituation, r.FamilySituation)
}
