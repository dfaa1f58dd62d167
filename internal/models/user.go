package models

import (
	"strings"
	"time"
)

// User represents an authenticated customer as returned by the backend.
type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is the customer profile document served by /customers/profile.
type Profile struct {
	ID      string         `json:"_id,omitempty"`
	Name    string         `json:"name"`
	Email   string         `json:"email,omitempty"`
	Phone   string         `json:"phone"`
	Address ProfileAddress `json:"address"`
}

// ProfileAddress is the structured delivery address on a profile.
type ProfileAddress struct {
	HouseOrVillage   string `json:"houseOrVillage"`
	RoadOrPostOffice string `json:"roadOrPostOffice"`
	BlockOrThana     string `json:"blockOrThana"`
	District         string `json:"district"`
}

// CustomerInfo is the shipping snapshot captured at checkout. Guests keep
// it in session storage; orders embed it as "customer".
type CustomerInfo struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	HouseOrVillage   string `json:"houseOrVillage"`
	RoadOrPostOffice string `json:"roadOrPostOffice"`
	BlockOrThana     string `json:"blockOrThana"`
	District         string `json:"district"`
	Address          string `json:"address,omitempty"`
}

// FullAddress joins the address parts, preferring a free-form address.
func (c CustomerInfo) FullAddress() string {
	if c.Address != "" {
		return c.Address
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{c.HouseOrVillage, c.RoadOrPostOffice, c.BlockOrThana, c.District} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// CustomerFromUser pre-fills checkout details for a logged-in user whose
// address is stored as a comma separated string.
func CustomerFromUser(u User) CustomerInfo {
	return CustomerInfo{
		Name:             u.Name,
		Phone:            u.Phone,
		Email:            u.Email,
		HouseOrVillage:   addressPart(u.Address, 0),
		RoadOrPostOffice: addressPart(u.Address, 1),
		BlockOrThana:     addressPart(u.Address, 2),
		District:         addressPart(u.Address, 3),
	}
}

func addressPart(address string, index int) string {
	if address == "" {
		return ""
	}
	parts := strings.Split(address, ",")
	if index >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[index])
}
