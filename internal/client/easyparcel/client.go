package easyparcel

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/velure-commerce/velure/internal/config"
)

// Client talks to the EasyParcel bulk API. Every endpoint takes the API key
// plus a bulk array of per-order parameters and answers with a Response
// envelope.
type Client struct {
	http      *resty.Client
	apiKey    string
	serviceID string
	sender    config.Sender
}

// New constructs a Client from courier configuration.
func New(cfg config.Courier) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:      httpClient,
		apiKey:    cfg.APIKey,
		serviceID: cfg.ServiceID,
		sender:    cfg.Sender,
	}
}

type requestBody struct {
	API  string `json:"api"`
	Bulk []any  `json:"bulk"`
}

func (c *Client) post(ctx context.Context, action string, bulk []any) (*Response, error) {
	var parsed Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ac", action).
		SetBody(requestBody{API: c.apiKey, Bulk: bulk}).
		SetResult(&parsed).
		// The API answers JSON without always labelling it as such; parse
		// the envelope regardless of the Content-Type header.
		ForceContentType("application/json").
		Post("/")
	if err != nil {
		return nil, fmt.Errorf("easyparcel %s: %w", action, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("easyparcel %s: status %d: %s", action, resp.StatusCode(), resp.String())
	}
	return &parsed, nil
}

// Rate asks for a shipping quote and returns the cheapest offered price.
func (c *Client) Rate(ctx context.Context, req RateRequest) (float64, error) {
	bulk := []any{map[string]any{
		"weight":        req.Weight,
		"length":        req.Length,
		"width":         req.Width,
		"height":        req.Height,
		"pick_postcode": req.PickPostcode,
		"pick_state":    req.PickState,
		"pick_country":  req.PickCountry,
		"send_postcode": req.SendPostcode,
		"send_state":    req.SendState,
		"send_country":  req.SendCountry,
	}}

	parsed, err := c.post(ctx, "EPRateCheckingBulk", bulk)
	if err != nil {
		return 0, err
	}
	if !parsed.Success() {
		return 0, fmt.Errorf("easyparcel rate check failed: %s", parsed.ErrorRemark)
	}
	if len(parsed.Result) == 0 {
		return 0, fmt.Errorf("easyparcel rate check returned no offers")
	}
	return parsed.Result[0].Price, nil
}

// SubmitOrder books a single-parcel shipment and returns the carrier result,
// which carries the EasyParcel order number used by every later step.
func (c *Client) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*OrderResult, error) {
	bulk := []any{map[string]any{
		"weight":        req.Weight,
		"length":        req.Length,
		"width":         req.Width,
		"height":        req.Height,
		"content":       req.Content,
		"value":         req.Value,
		"service_id":    c.serviceID,
		"reference":     req.Reference,
		"pick_name":     c.sender.Name,
		"pick_company":  c.sender.Company,
		"pick_contact":  c.sender.Phone,
		"pick_mobile":   c.sender.Phone,
		"pick_email":    c.sender.Email,
		"pick_addr1":    c.sender.Address1,
		"pick_addr2":    c.sender.Address2,
		"pick_city":     c.sender.City,
		"pick_state":    c.sender.State,
		"pick_code":     c.sender.Postcode,
		"pick_country":  c.sender.Country,
		"send_name":     req.Receiver.Name,
		"send_contact":  req.Receiver.Phone,
		"send_mobile":   req.Receiver.Phone,
		"send_email":    req.Receiver.Email,
		"send_addr1":    req.Receiver.Address1,
		"send_addr2":    req.Receiver.Address2,
		"send_city":     req.Receiver.City,
		"send_state":    req.Receiver.State,
		"send_code":     req.Receiver.Postcode,
		"send_country":  req.Receiver.Country,
		"sms":           false,
		"collect_date":  "",
	}}

	parsed, err := c.post(ctx, "EPSubmitOrderBulk", bulk)
	if err != nil {
		return nil, err
	}
	if !parsed.Success() {
		return nil, fmt.Errorf("easyparcel booking failed: %s", parsed.ErrorRemark)
	}
	if len(parsed.Result) == 0 {
		return nil, fmt.Errorf("easyparcel booking returned no result")
	}
	result := parsed.Result[0]
	if !result.Success() {
		return nil, fmt.Errorf("easyparcel booking rejected: %s", result.Remarks)
	}
	return &result, nil
}

// PayOrder settles a previously created booking, triggering AWB issuance.
// The returned result's parcel list is empty while the AWB is still pending.
func (c *Client) PayOrder(ctx context.Context, orderNo string) (*OrderResult, error) {
	bulk := []any{map[string]any{"order_no": orderNo}}

	parsed, err := c.post(ctx, "EPPayOrderBulk", bulk)
	if err != nil {
		return nil, err
	}
	if !parsed.Success() {
		return nil, fmt.Errorf("easyparcel payment failed: %s", parsed.ErrorRemark)
	}
	if len(parsed.Result) == 0 {
		return nil, fmt.Errorf("easyparcel payment returned no result")
	}
	return &parsed.Result[0], nil
}

// OrderStatus polls the carrier-side status of one booking. The caller is
// responsible for checking the per-order status field.
func (c *Client) OrderStatus(ctx context.Context, orderNo string) (*OrderResult, error) {
	bulk := []any{map[string]any{"order_no": orderNo}}

	parsed, err := c.post(ctx, "EPOrderStatusBulk", bulk)
	if err != nil {
		return nil, err
	}
	if !parsed.Success() {
		return nil, fmt.Errorf("easyparcel status check failed: %s", parsed.ErrorRemark)
	}
	if len(parsed.Result) == 0 {
		return nil, fmt.Errorf("easyparcel status check returned no result")
	}
	return &parsed.Result[0], nil
}

// TrackOrders issues one bulk tracking request covering all supplied carrier
// order numbers. A transport failure or non-success top-level status fails the
// whole call; there is no per-order fallback here.
func (c *Client) TrackOrders(ctx context.Context, orderNos []string) ([]OrderResult, error) {
	bulk := make([]any, 0, len(orderNos))
	for _, orderNo := range orderNos {
		bulk = append(bulk, map[string]any{"order_no": orderNo})
	}

	parsed, err := c.post(ctx, "EPParcelStatusBulk", bulk)
	if err != nil {
		return nil, err
	}
	if !parsed.Success() {
		return nil, fmt.Errorf("easyparcel tracking failed: %s", parsed.ErrorRemark)
	}
	return parsed.Result, nil
}

// FetchAWB downloads the AWB PDF document by its link.
func (c *Client) FetchAWB(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(false).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch awb: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch awb: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
