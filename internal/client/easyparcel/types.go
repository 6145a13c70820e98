package easyparcel

import "strings"

// StatusSuccess is the value EasyParcel uses for both the top-level api_status
// and the per-order result status.
const StatusSuccess = "Success"

// Response is the envelope every EasyParcel bulk endpoint returns.
type Response struct {
	APIStatus   string        `json:"api_status"`
	ErrorCode   string        `json:"error_code"`
	ErrorRemark string        `json:"error_remark"`
	Result      []OrderResult `json:"result"`
}

// Success reports whether the top-level api_status indicates success.
func (r *Response) Success() bool {
	return strings.EqualFold(r.APIStatus, StatusSuccess)
}

// OrderResult is one entry of the result array, covering a single carrier
// order. The parcel list is empty until the AWB has been issued, and holds
// more than one entry for multi-parcel orders.
type OrderResult struct {
	Status      string   `json:"status"`
	Remarks     string   `json:"remarks"`
	OrderNumber string   `json:"order_number"`
	Courier     string   `json:"courier,omitempty"`
	TrackingNo  string   `json:"tracking_no,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Parcels     []Parcel `json:"parcel"`
}

// Success reports whether this order's own status indicates success.
func (o *OrderResult) Success() bool {
	return strings.EqualFold(o.Status, StatusSuccess)
}

// Parcel carries the waybill data for one physical parcel.
type Parcel struct {
	ParcelNumber string `json:"parcel_number"`
	AWB          string `json:"awb"`
	AWBPDFLink   string `json:"awb_id_link"`
	TrackingURL  string `json:"tracking_url"`
	ShipStatus   string `json:"ship_status"`
}

// HasAWB reports whether the parcel carries either an AWB code or a parcel
// number. A parcel with neither is treated as not yet issued.
func (p *Parcel) HasAWB() bool {
	return p.AWB != "" || p.ParcelNumber != ""
}

// RateRequest asks for a shipping quote for a single parcel.
type RateRequest struct {
	Weight       float64
	Length       float64
	Width        float64
	Height       float64
	PickPostcode string
	PickState    string
	PickCountry  string
	SendPostcode string
	SendState    string
	SendCountry  string
}

// Receiver holds the delivery-side address fields of a booking.
type Receiver struct {
	Name     string
	Phone    string
	Email    string
	Address1 string
	Address2 string
	City     string
	State    string
	Postcode string
	Country  string
}

// SubmitOrderRequest books a single-parcel shipment. Sender fields come from
// the fixed warehouse profile configured on the client.
type SubmitOrderRequest struct {
	Weight    float64
	Length    float64
	Width     float64
	Height    float64
	Content   string
	Value     float64
	Reference string
	Receiver  Receiver
}
