package email

import (
	"context"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

type Service interface {
	SendSadtIssued(ctx context.Context, to string, doc *model.SadtDocument) error
}
