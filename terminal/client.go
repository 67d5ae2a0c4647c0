// Package terminal is the till-side controller for the sale entry screen:
// barcode scanning, cart editing, payment completion with M-Pesa confirmation
// polling, delivery assignment and printer status. All pricing and totals are
// computed server-side; the terminal only renders what the backend returns.
package terminal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// genericFailure substitutes for transport and parse errors; server-reported
// errors are shown verbatim instead.
const genericFailure = "Something went wrong. Please try again."

const requestTimeout = 30 * time.Second

// RequestError carries the message shown to the cashier.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// ID tolerates both numeric and string identifiers on the wire.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	*id = ID(strings.Trim(string(b), `"`))
	return nil
}

// Amount tolerates both raw numbers and pre-formatted strings like "50.00".
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// Display renders the amount to two decimals, matching receipts.
func (a Amount) Display() string {
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}

// Totals is the server-computed summary carried on every cart mutation.
type Totals struct {
	Subtotal Amount `json:"subtotal"`
	Total    Amount `json:"total"`
}

type ScannedProduct struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Price    Amount `json:"price"`
	Quantity int    `json:"quantity"`
	Total    Amount `json:"total"`
}

type ScanResult struct {
	ItemID  ID             `json:"item_id"`
	Product ScannedProduct `json:"product"`
	Totals  Totals         `json:"totals"`
}

type QuantityResult struct {
	ItemTotal Amount `json:"item_total"`
	Totals    Totals `json:"totals"`
}

type RemoveResult struct {
	Totals Totals `json:"totals"`
}

type CompletionResult struct {
	PaymentInitiated     bool   `json:"payment_initiated"`
	TransactionReference string `json:"transaction_reference"`
	SaleNumber           string `json:"sale_number"`
	DeliveryNumber       string `json:"delivery_number"`
	PrintSuccess         bool   `json:"print_success"`
	PrintMessage         string `json:"print_message"`
	Message              string `json:"message"`
}

// BusyFlag reads truthy wire forms: the backend sends the active delivery
// number when an agent is busy and omits the field when free.
type BusyFlag bool

func (b *BusyFlag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*b = !(s == "" || s == "null" || s == "false" || s == "0")
	return nil
}

type DeliveryGuy struct {
	ID             ID       `json:"id"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	ActiveDelivery BusyFlag `json:"active_delivery"`
}

type envelope struct {
	Success bool   `json:"success"`
	Err     string `json:"error"`
}

// Client speaks the sale endpoint contract: form-encoded POSTs carrying a
// csrf token and an action discriminator, plus GETs for status lookups.
type Client struct {
	BaseURL string
	SaleID  string
	Token   string
	CSRF    string
	HTTP    *http.Client
}

func NewClient(baseURL, saleID, token, csrf string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		SaleID:  saleID,
		Token:   token,
		CSRF:    csrf,
		HTTP:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) Scan(ctx context.Context, barcode string) (*ScanResult, error) {
	var out ScanResult
	fields := url.Values{"barcode": {barcode}}
	if err := c.postAction(ctx, "scan_barcode", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, itemID ID, quantity int) (*QuantityResult, error) {
	var out QuantityResult
	fields := url.Values{
		"item_id":  {string(itemID)},
		"quantity": {strconv.Itoa(quantity)},
	}
	if err := c.postAction(ctx, "update_quantity", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID ID) (*RemoveResult, error) {
	var out RemoveResult
	fields := url.Values{"item_id": {string(itemID)}}
	if err := c.postAction(ctx, "remove_item", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Hold(ctx context.Context) (string, error) {
	return c.messageAction(ctx, "hold_sale")
}

func (c *Client) Recall(ctx context.Context) (string, error) {
	return c.messageAction(ctx, "recall_sale")
}

func (c *Client) messageAction(ctx context.Context, action string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.postAction(ctx, action, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Complete(ctx context.Context, fields url.Values) (*CompletionResult, error) {
	var out CompletionResult
	if err := c.postAction(ctx, "complete_sale", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AssignDelivery(ctx context.Context, guyID ID, address, notes string) (*CompletionResult, error) {
	var out CompletionResult
	fields := url.Values{
		"delivery_guy_id":  {string(guyID)},
		"delivery_address": {address},
		"notes":            {notes},
	}
	if err := c.postAction(ctx, "assign_delivery", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PaymentStatus(ctx context.Context, reference string) (string, string, error) {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	query := url.Values{"transaction_reference": {reference}}
	if err := c.get(ctx, "/api/v1/payments/status", query, &out); err != nil {
		return "", "", err
	}
	return out.Status, out.Message, nil
}

func (c *Client) PrinterStatus(ctx context.Context) (bool, string, error) {
	var out struct {
		PrinterReady   bool   `json:"printer_ready"`
		PrinterMessage string `json:"printer_message"`
	}
	if err := c.get(ctx, "/api/v1/printer/status", nil, &out); err != nil {
		return false, "", err
	}
	return out.PrinterReady, out.PrinterMessage, nil
}

func (c *Client) DeliveryGuys(ctx context.Context, search string) ([]DeliveryGuy, error) {
	var out struct {
		DeliveryGuys []DeliveryGuy `json:"delivery_guys"`
	}
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if err := c.get(ctx, "/api/v1/delivery/guys", query, &out); err != nil {
		return nil, err
	}
	return out.DeliveryGuys, nil
}

func (c *Client) postAction(ctx context.Context, action string, fields url.Values, out any) error {
	if fields == nil {
		fields = url.Values{}
	}
	fields.Set("action", action)
	fields.Set("csrf_token", c.CSRF)

	endpoint := c.BaseURL + "/api/v1/sales/" + c.SaleID + "/process"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(fields.Encode()))
	if err != nil {
		return &RequestError{genericFailure}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &RequestError{genericFailure}
	}
	return c.do(req, out)
}

// do treats transport and parse failures exactly like a success:false reply
// with a generic message; the cashier never sees raw Go errors.
func (c *Client) do(req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &RequestError{genericFailure}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{genericFailure}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &RequestError{genericFailure}
	}
	if !env.Success {
		msg := env.Err
		if msg == "" {
			msg = genericFailure
		}
		return &RequestError{msg}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &RequestError{genericFailure}
		}
	}
	return nil
}
