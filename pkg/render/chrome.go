package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

// ChromeRenderer prints the referral layout to PDF through headless Chrome.
type ChromeRenderer struct {
	tmpl    *template.Template
	timeout time.Duration
}

func NewChromeRenderer() (*ChromeRenderer, error) {
	tmpl, err := template.New("sadt").Parse(sadtTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sadt template: %w", err)
	}
	return &ChromeRenderer{
		tmpl:    tmpl,
		timeout: 30 * time.Second,
	}, nil
}

type templateData struct {
	Doc     *model.SadtDocument
	Patient *model.Patient
}

func (r *ChromeRenderer) Render(ctx context.Context, doc *model.SadtDocument, patient *model.Patient) ([]byte, error) {
	var html bytes.Buffer
	if err := r.tmpl.Execute(&html, templateData{Doc: doc, Patient: patient}); err != nil {
		return nil, fmt.Errorf("failed to render sadt html: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	chromeCtx, cancelChrome := chromedp.NewContext(allocCtx)
	defer cancelChrome()

	var pdf []byte
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html.String()).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print sadt to pdf: %w", err)
	}
	return pdf, nil
}
