package models

import "encoding/json"

// Invoice is the document the backend issues for an order. Only a few fields
// are read; the rest is kept as sent.
type Invoice struct {
	ID       string          `json:"_id"`
	OrderID  string          `json:"orderId"`
	Number   string          `json:"number"`
	URL      string          `json:"url"`
	Document json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw document next to the known fields.
func (i *Invoice) UnmarshalJSON(data []byte) error {
	type plain Invoice
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = Invoice(p)
	i.Document = append(json.RawMessage(nil), data...)
	return nil
}
