package model

type Medication struct {
	Base
	Name             string `db:"name" json:"name"`
	ActiveIngredient string `db:"active_ingredient" json:"active_ingredient,omitempty"`
	Form             string `db:"form" json:"form,omitempty"`
	Dosage           string `db:"dosage" json:"dosage,omitempty"`
	Stock            int    `db:"stock" json:"stock"`
	StockUnit        string `db:"stock_unit" json:"stock_unit,omitempty"`
	Controlled       bool   `db:"controlled" json:"controlled"`
}

type CreateMedicationRequest struct {
	Name             string `json:"name" binding:"required"`
	ActiveIngredient string `json:"active_ingredient"`
	Form             string `json:"form"`
	Dosage           string `json:"dosage"`
	Stock            int    `json:"stock" binding:"gte=0"`
	StockUnit        string `json:"stock_unit"`
	Controlled       bool   `json:"controlled"`
}

type UpdateMedicationRequest struct {
	Name             *string `json:"name"`
	ActiveIngredient *string `json:"active_ingredient"`
	Form             *string `json:"form"`
	Dosage           *string `json:"dosage"`
	Stock            *int    `json:"stock" binding:"omitempty,gte=0"`
	StockUnit        *string `json:"stock_unit"`
	Controlled       *bool   `json:"controlled"`
}

func (r *UpdateMedicationRequest) Apply(m *Medication) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.ActiveIngredient != nil {
		m.ActiveIngredient = *r.ActiveIngredient
	}
	if r.Form != nil {
		m.Form = *r.Form
	}
	if r.Dosage != nil {
		m.Dosage = *r.Dosage
	}
	if r.Stock != nil {
		m.Stock = *r.Stock
	}
	if r.StockUnit != nil {
		m.StockUnit = *r.StockUnit
	}
	if r.Controlled != nil {
		m.Controlled = *r.Controlled
	}
}
