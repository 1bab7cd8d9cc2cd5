package patient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "11144477735", NormalizeCPF("111.444.777-35"))
	assert.Equal(t, "11144477735", NormalizeCPF("11144477735"))
	assert.Equal(t, "", NormalizeCPF(""))
	assert.Equal(t, "", NormalizeCPF("abc-def"))
}

func TestValidCPF(t *testing.T) {
	tests := []struct {
		cpf   string
		valid bool
	}{
		{"11144477735", true},
		{"52998224725", true},
		{"11144477734", false},
		{"52998224726", false},
		{"11111111111", false},
		{"00000000000", false},
		{"1114447773", false},
		{"111444777350", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidCPF(tt.cpf), "cpf %q", tt.cpf)
	}
}

func TestAgeInMonths(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		birth  time.Time
		months int
	}{
		{"newborn", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), 0},
		{"eleven months", time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC), 11},
		{"exactly twelve months", time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC), 12},
		{"day not yet reached", time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC), 11},
		{"three years", time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), 36},
		{"future birth date", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.months, AgeInMonths(tt.birth, now))
		})
	}
}

func TestVulnerable(t *testing.T) {
	assert.False(t, Vulnerable(&model.Patient{}))
	assert.True(t, Vulnerable(&model.Patient{Bedridden: true}))
	assert.True(t, Vulnerable(&model.Patient{Homebound: true}))
	assert.True(t, Vulnerable(&model.Patient{MentalHealth: true}))
	assert.True(t, Vulnerable(&model.Patient{Bedridden: true, Homebound: true, MentalHealth: true}))

	// Herbal remedy use alone does not mark a patient vulnerable.
	assert.False(t, Vulnerable(&model.Patient{HerbalRemedies: true}))
}

func TestValidateEligibility(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	adultBirth := time.Date(1990, 3, 10, 0, 0, 0, 0, time.UTC)
	infantBirth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("adult with valid cpf", func(t *testing.T) {
		p := &model.Patient{Name: "Maria", CPF: "11144477735", Sex: model.SexFemale, BirthDate: adultBirth}
		assert.NoError(t, ValidateEligibility(p, now, DefaultTaxIDAgeMonths))
	})

	t.Run("malformed cpf rejected even for infants", func(t *testing.T) {
		p := &model.Patient{Name: "Bebe", CPF: "11144477734", BirthDate: infantBirth}
		err := ValidateEligibility(p, now, DefaultTaxIDAgeMonths)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInput))
	})

	t.Run("adult without cpf", func(t *testing.T) {
		p := &model.Patient{Name: "Jose", BirthDate: adultBirth}
		err := ValidateEligibility(p, now, DefaultTaxIDAgeMonths)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBusinessRule))
		assert.Equal(t, apperrors.ReasonTaxIDRequiredByAge, apperrors.ReasonOf(err))
	})

	t.Run("infant without cpf and without justification", func(t *testing.T) {
		p := &model.Patient{Name: "Bebe", BirthDate: infantBirth}
		err := ValidateEligibility(p, now, DefaultTaxIDAgeMonths)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBusinessRule))
		assert.Equal(t, apperrors.ReasonJustificationRequired, apperrors.ReasonOf(err))
	})

	t.Run("infant without cpf but justified", func(t *testing.T) {
		p := &model.Patient{Name: "Bebe", BirthDate: infantBirth, CPFJustification: "awaiting first issuance"}
		assert.NoError(t, ValidateEligibility(p, now, DefaultTaxIDAgeMonths))
	})

	t.Run("exactly at threshold requires cpf", func(t *testing.T) {
		p := &model.Patient{Name: "Um Ano", BirthDate: time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)}
		err := ValidateEligibility(p, now, DefaultTaxIDAgeMonths)
		assert.Equal(t, apperrors.ReasonTaxIDRequiredByAge, apperrors.ReasonOf(err))
	})

	t.Run("custom threshold", func(t *testing.T) {
		p := &model.Patient{Name: "Crianca", BirthDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), CPFJustification: "pending"}
		assert.NoError(t, ValidateEligibility(p, now, 24))
	})

	t.Run("sex other without social name", func(t *testing.T) {
		p := &model.Patient{Name: "Alex", CPF: "11144477735", Sex: model.SexOther, BirthDate: adultBirth}
		err := ValidateEligibility(p, now, DefaultTaxIDAgeMonths)
		assert.Equal(t, apperrors.ReasonSocialNameRequired, apperrors.ReasonOf(err))
	})

	t.Run("sex other with social name", func(t *testing.T) {
		p := &model.Patient{Name: "Alex", SocialName: "Alex", CPF: "11144477735", Sex: model.SexOther, BirthDate: adultBirth}
		assert.NoError(t, ValidateEligibility(p, now, DefaultTaxIDAgeMonths))
	})
}
