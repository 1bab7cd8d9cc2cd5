package patient

import (
	"strings"
	"time"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

// DefaultTaxIDAgeMonths is the age, in whole months, from which the tax ID is
// mandatory when no value is configured.
const DefaultTaxIDAgeMonths = 12

// NormalizeCPF strips everything but digits.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks length and the standard mod-11 check digits of a normalized
// CPF. Sequences of a single repeated digit pass the checksum but are not
// valid registrations.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	allEqual := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	digit := func(upto int) byte {
		sum := 0
		for i := 0; i < upto; i++ {
			sum += int(cpf[i]-'0') * (upto + 1 - i)
		}
		rest := (sum * 10) % 11
		if rest == 10 {
			rest = 0
		}
		return byte('0' + rest)
	}

	return cpf[9] == digit(9) && cpf[10] == digit(10)
}

// AgeInMonths computes whole months elapsed between birth and now.
func AgeInMonths(birth, now time.Time) int {
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Vulnerable classifies a patient for care-priority alerts: any of the
// bedridden, homebound or mental-health flags marks the patient vulnerable.
func Vulnerable(p *model.Patient) bool {
	return p.Bedridden || p.Homebound || p.MentalHealth
}

// ValidateEligibility applies the identity rules that do not need storage:
// CPF format, the age-based mandatory-CPF rule, the missing-CPF justification
// rule and the social-name rule. Uniqueness is checked separately.
func ValidateEligibility(p *model.Patient, now time.Time, taxIDAgeMonths int) error {
	if p.CPF != "" && !ValidCPF(p.CPF) {
		return apperrors.InvalidInput("tax ID must be a valid 11-digit CPF")
	}

	if p.CPF == "" {
		if AgeInMonths(p.BirthDate, now) >= taxIDAgeMonths {
			return apperrors.BusinessRule(
				apperrors.ReasonTaxIDRequiredByAge,
				"tax ID is mandatory for patients at or above the age threshold",
			)
		}
		if strings.TrimSpace(p.CPFJustification) == "" {
			return apperrors.BusinessRule(
				apperrors.ReasonJustificationRequired,
				"a justification is required when registering an infant without tax ID",
			)
		}
	}

	if p.Sex == model.SexOther && strings.TrimSpace(p.SocialName) == "" {
		return apperrors.BusinessRule(
			apperrors.ReasonSocialNameRequired,
			"social name is mandatory when sex is classified as OTHER",
		)
	}

	return nil
}
