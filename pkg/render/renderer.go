package render

import (
	"context"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

// Renderer produces the printable payload for an issued referral. It may fail
// independently of persistence; callers treat rendering as retryable.
type Renderer interface {
	Render(ctx context.Context, doc *model.SadtDocument, patient *model.Patient) ([]byte, error)
}
