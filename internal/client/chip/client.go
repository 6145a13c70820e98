package chip

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/velure-commerce/velure/internal/config"
)

// Client talks to the Chip purchases API.
type Client struct {
	http *resty.Client
	cfg  config.Payment
}

// New constructs a Client from payment configuration.
func New(cfg config.Payment) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, cfg: cfg}
}

// PurchaseProduct is one line of a purchase request.
type PurchaseProduct struct {
	Name     string  `json:"name"`
	Price    int64   `json:"price"`
	Quantity float64 `json:"quantity"`
}

// CreatePurchaseRequest creates a hosted checkout purchase.
type CreatePurchaseRequest struct {
	Reference string
	Email     string
	FullName  string
	Phone     string
	Products  []PurchaseProduct
	Currency  string
}

// Purchase is the subset of Chip's purchase object we consume.
type Purchase struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference"`
}

type createPurchaseBody struct {
	BrandID string `json:"brand_id"`
	Client  struct {
		Email    string `json:"email"`
		FullName string `json:"full_name,omitempty"`
		Phone    string `json:"phone,omitempty"`
	} `json:"client"`
	Purchase struct {
		Currency string            `json:"currency"`
		Products []PurchaseProduct `json:"products"`
	} `json:"purchase"`
	Reference       string `json:"reference"`
	SuccessRedirect string `json:"success_redirect,omitempty"`
	FailureRedirect string `json:"failure_redirect,omitempty"`
	SuccessCallback string `json:"success_callback,omitempty"`
}

// CreatePurchase registers a purchase with Chip and returns the hosted
// checkout descriptor the storefront redirects the customer to.
func (c *Client) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*Purchase, error) {
	body := createPurchaseBody{
		BrandID:         c.cfg.BrandID,
		Reference:       req.Reference,
		SuccessRedirect: c.cfg.SuccessURL,
		FailureRedirect: c.cfg.FailureURL,
		SuccessCallback: c.cfg.CallbackURL,
	}
	body.Client.Email = req.Email
	body.Client.FullName = req.FullName
	body.Client.Phone = req.Phone
	body.Purchase.Currency = req.Currency
	body.Purchase.Products = req.Products

	var purchase Purchase
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&purchase).
		Post("/purchases/")
	if err != nil {
		return nil, fmt.Errorf("chip create purchase: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return nil, fmt.Errorf("chip create purchase: status %d: %s", resp.StatusCode(), resp.String())
	}
	if purchase.ID == "" {
		return nil, fmt.Errorf("chip create purchase: response missing purchase id")
	}
	return &purchase, nil
}
