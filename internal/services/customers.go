package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/example/amarshop/internal/models"
)

// Credentials are the fields posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the fields posted to the register endpoint.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Login exchanges credentials for an access token and the customer record.
func (c *Client) Login(ctx context.Context, creds Credentials) (*models.AuthPayload, error) {
	return c.authenticate(ctx, "customers/auth/login", creds)
}

// Register creates a customer account and signs it in.
func (c *Client) Register(ctx context.Context, reg Registration) (*models.AuthPayload, error) {
	return c.authenticate(ctx, "customers/auth/register", reg)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*models.AuthPayload, error) {
	var payload models.AuthPayload
	if err := c.data(ctx, RequestOpts{Method: http.MethodPost, Path: path, Body: body}, &payload); err != nil {
		return nil, err
	}
	if payload.AccessToken == "" || payload.Customer.ID == "" {
		return nil, errors.Join(ErrMalformed, errors.New("auth response without token or customer"))
	}
	return &payload, nil
}

// ForgotPassword asks the backend to mail a reset link and returns its
// confirmation message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "customers/auth/forgot-password",
		Body:   map[string]string{"email": email},
	})
}

// ResetPassword sets a new password using the token from the reset link.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	return c.message(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "customers/auth/reset-password",
		Body:   map[string]string{"token": token, "password": password},
	})
}

// message performs a call whose only useful output is the envelope message.
func (c *Client) message(ctx context.Context, opts RequestOpts) (string, error) {
	body, err := c.call(ctx, opts)
	if err != nil {
		return "", err
	}
	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env.Message, nil
}

// GetProfile returns the signed-in customer's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := c.data(ctx, RequestOpts{Method: http.MethodGet, Path: "customers/profile", Token: token}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileUpdate is the PATCH body of the profile endpoint.
type ProfileUpdate struct {
	Name    string                `json:"name"`
	Phone   string                `json:"phone"`
	Address models.ProfileAddress `json:"address"`
}

// UpdateProfile saves the customer's name, phone and address.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) error {
	_, err := c.call(ctx, RequestOpts{Method: http.MethodPatch, Path: "customers/profile", Body: update, Token: token})
	return err
}
