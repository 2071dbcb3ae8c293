package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
)

// chatResponse is the normalized §4.6 CHAT body.
type chatResponse struct {
	Answers     []string `json:"answers"`
	Images      []string `json:"images,omitempty"`
	SubAnswers  []string `json:"sub_answers"`
}

type chatRequestBody struct {
	ConversationID string       `json:"conversation_id"`
	Response       chatResponse `json:"response"`
}

// rawChatData is the loosely-typed shape the AI's "data" field carries for
// CHAT/CREATE_ORDER actions before normalization.
type rawChatData struct {
	Answers    any `json:"answers"`
	SubAnswers any `json:"sub_answers"`
	Images     any `json:"images"`
}

// toStringSlice normalizes a JSON value that may be a single string, a
// string array, or absent into a string array (§4.6: "normalized to
// string arrays").
func toStringSlice(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func (d *Dispatcher) doChat(ctx context.Context, req Request) *Result {
	var raw rawChatData
	_ = json.Unmarshal(req.Data, &raw)

	body := chatRequestBody{
		ConversationID: req.ConversationID,
		Response: chatResponse{
			Answers:    toStringSlice(raw.Answers),
			SubAnswers: toStringSlice(raw.SubAnswers),
			Images:     toStringSlice(raw.Images),
		},
	}

	respBody, status, err := d.doRequest(ctx, req.Platform, "/send-message", body)
	if err != nil {
		return &Result{Success: false, Status: StatusDispatch, Error: err.Error()}
	}
	if status < 200 || status > 299 {
		return &Result{Success: false, Status: StatusDispatch, Error: fmt.Sprintf("platform returned %d: %s", status, truncate(respBody, 100))}
	}
	return &Result{Success: true, Status: StatusCompleted}
}

// orderBody is the structured §4.6 CREATE_ORDER body; fields missing from
// the AI's data default to empty string / zero.
type orderBody struct {
	ConversationID string         `json:"conversation_id"`
	Customer       map[string]any `json:"customer"`
	Products       []any          `json:"products"`
	ShippingFee    float64        `json:"shipping_fee"`
	TrafficSource  string         `json:"traffic_source"`
	Note           string         `json:"note"`
}

type rawOrderData struct {
	Customer      map[string]any `json:"customer"`
	Products      []any          `json:"products"`
	ShippingFee   float64        `json:"shipping_fee"`
	TrafficSource string         `json:"traffic_source"`
	Note          string         `json:"note"`
}

// doCreateOrder performs a CHAT with the same data unconditionally, then a
// create-order call, regardless of the CHAT outcome (spec §4.6, §9 open
// question: intent unclear, behavior preserved as-is).
func (d *Dispatcher) doCreateOrder(ctx context.Context, req Request) *Result {
	_ = d.doChat(ctx, req)

	var raw rawOrderData
	_ = json.Unmarshal(req.Data, &raw)

	body := orderBody{
		ConversationID: req.ConversationID,
		Customer:       raw.Customer,
		Products:       raw.Products,
		ShippingFee:    raw.ShippingFee,
		TrafficSource:  raw.TrafficSource,
		Note:           raw.Note,
	}
	if body.Customer == nil {
		body.Customer = map[string]any{}
	}
	if body.Products == nil {
		body.Products = []any{}
	}

	respBody, status, err := d.doRequest(ctx, req.Platform, "/create-order", body)
	if err != nil {
		return &Result{Success: false, Status: StatusDispatch, Error: err.Error()}
	}
	if status < 200 || status > 299 {
		return &Result{Success: false, Status: StatusDispatch, Error: fmt.Sprintf("platform returned %d: %s", status, truncate(respBody, 100))}
	}
	return &Result{Success: true, Status: StatusCompleted}
}

type notifyBody struct {
	ConversationID string `json:"conversation_id"`
	Phone          string `json:"phone"`
	Intent         string `json:"intent"`
}

type rawNotifyData struct {
	Phone  string `json:"phone"`
	Intent string `json:"intent"`
}

func (d *Dispatcher) doNotify(ctx context.Context, req Request) *Result {
	var raw rawNotifyData
	_ = json.Unmarshal(req.Data, &raw)

	body := notifyBody{ConversationID: req.ConversationID, Phone: raw.Phone, Intent: raw.Intent}

	respBody, status, err := d.doRequest(ctx, req.Platform, "/notify", body)
	if err != nil {
		return &Result{Success: false, Status: StatusDispatch, Error: err.Error()}
	}
	if status < 200 || status > 299 {
		return &Result{Success: false, Status: StatusDispatch, Error: fmt.Sprintf("platform returned %d: %s", status, truncate(respBody, 100))}
	}
	return &Result{Success: true, Status: StatusCompleted}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
