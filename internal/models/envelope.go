package models

import "encoding/json"

// Envelope is the {ok, data, message, code} wrapper used by the backend.
type Envelope struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
}

// FieldError is a per-field validation message from the backend.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// AuthPayload is the data of a successful login or registration.
type AuthPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Customer     User   `json:"customer"`
}

// DeliveryInfo is the delivery charge quoted for a cart amount.
type DeliveryInfo struct {
	DeliveryCharge        float64 `json:"deliveryCharge"`
	IsFree                bool    `json:"isFree"`
	FreeDeliveryThreshold float64 `json:"freeDeliveryThreshold"`
}

// FreeDelivery is used whenever the delivery quote cannot be fetched.
var FreeDelivery = DeliveryInfo{DeliveryCharge: 0, IsFree: true, FreeDeliveryThreshold: 0}
