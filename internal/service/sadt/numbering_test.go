package sadt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

func TestNumberPrefix(t *testing.T) {
	date := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "LAB26", NumberPrefix(model.SadtTypeLaboratory, date))
	assert.Equal(t, "IMG26", NumberPrefix(model.SadtTypeImaging, date))
	assert.Equal(t, "TER26", NumberPrefix(model.SadtTypeTherapeutic, date))

	// The period rolls over with the issue year, restarting the sequence scope.
	nextYear := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "LAB27", NumberPrefix(model.SadtTypeLaboratory, nextYear))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "LAB26000001", FormatNumber("LAB26", 1))
	assert.Equal(t, "LAB26000042", FormatNumber("LAB26", 42))
	assert.Equal(t, "IMG26123456", FormatNumber("IMG26", 123456))

	// Beyond the padding width the number keeps growing rather than wrapping.
	assert.Equal(t, "IMG261234567", FormatNumber("IMG26", 1234567))
}
