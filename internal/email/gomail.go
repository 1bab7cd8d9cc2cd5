package email

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/Kadu1982/sistema2-sub001/internal/config"
	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

type gomailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailService(cfg config.SMTPConfig) Service {
	return &gomailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *gomailService) SendSadtIssued(ctx context.Context, to string, doc *model.SadtDocument) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Solicitação de SADT %s emitida", doc.Number))
	m.SetBody("text/plain", fmt.Sprintf(
		"Sua solicitação de SADT nº %s foi emitida em %s. Apresente o documento anexo na unidade executante.",
		doc.Number, doc.IssuedAt.Format("02/01/2006"),
	))
	if len(doc.Payload) > 0 {
		m.Attach(
			fmt.Sprintf("sadt-%s.pdf", doc.Number),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(doc.Payload)
				return err
			}),
		)
	}
	return s.dialer.DialAndSend(m)
}
