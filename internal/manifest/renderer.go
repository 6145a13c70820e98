// Package manifest renders the warehouse pickup slip as a PDF by driving a
// headless browser over an HTML template.
package manifest

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/fx"

	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/entity"
)

//go:embed templates/pickup_manifest.html
var templateFS embed.FS

var manifestTemplate = template.Must(template.ParseFS(templateFS, "templates/pickup_manifest.html"))

// Renderer produces pickup manifest PDFs.
type Renderer interface {
	Render(ctx context.Context, order *entity.Order) ([]byte, error)
}

// Module provides the chromedp-backed renderer to Fx.
var Module = fx.Provide(New)

// New constructs the headless-browser renderer.
func New(cfg config.Config) Renderer {
	return &chromeRenderer{shopName: cfg.Shop.Name, timeout: 30 * time.Second}
}

type chromeRenderer struct {
	shopName string
	timeout  time.Duration
}

type manifestData struct {
	ShopName    string
	GeneratedAt string
	Order       *entity.Order
	Items       []*entity.OrderItem
	TotalWeight float64
}

func (r *chromeRenderer) Render(ctx context.Context, order *entity.Order) ([]byte, error) {
	var html bytes.Buffer
	data := manifestData{
		ShopName:    r.shopName,
		GeneratedAt: time.Now().UTC().Format(time.RFC1123),
		Order:       order,
		Items:       order.Items,
		TotalWeight: order.TotalWeight(),
	}
	if err := manifestTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("manifest template: %w", err)
	}

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(renderCtx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html.Bytes())

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(dataURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("manifest render: %w", err)
	}
	return pdf, nil
}
