package sadt

import (
	"fmt"
	"time"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

// Document numbers are <type code><2-digit year><zero-padded sequence>,
// e.g. LAB26000042. The sequence restarts at 1 for each prefix. Padding width
// and period granularity live here so a change against legacy data touches
// exactly this file.
const (
	suffixWidth          = 6
	maxAllocationRetries = 3
)

var typePrefixes = map[model.SadtType]string{
	model.SadtTypeLaboratory:  "LAB",
	model.SadtTypeImaging:     "IMG",
	model.SadtTypeTherapeutic: "TER",
}

// NumberPrefix builds the period-scoped prefix for a document type.
func NumberPrefix(t model.SadtType, issueDate time.Time) string {
	return fmt.Sprintf("%s%02d", typePrefixes[t], issueDate.Year()%100)
}

// FormatNumber concatenates prefix and zero-padded sequence.
func FormatNumber(prefix string, sequence int) string {
	return fmt.Sprintf("%s%0*d", prefix, suffixWidth, sequence)
}
