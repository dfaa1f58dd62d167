package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/amarshop/internal/models"
)

// guestProfileVersion is the current schema of KeyCheckoutCustomer.
// Version 0 records are the unversioned snapshots written before.
const guestProfileVersion = 1

type guestProfileRecord struct {
	Version int `json:"version"`
	models.CustomerInfo
}

func encodeGuestProfile(info models.CustomerInfo) (string, error) {
	b, err := json.Marshal(guestProfileRecord{Version: guestProfileVersion, CustomerInfo: info})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// migrateGuestProfile folds the unversioned and legacy guest profile slots
// into one versioned record. Callers hold s.mu.
func (s *Store) migrateGuestProfile(ctx context.Context) error {
	raw, ok, err := s.storage.Get(ctx, KeyCheckoutCustomer)
	if err != nil {
		return err
	}

	var (
		found *models.CustomerInfo
		stale []string
	)
	if ok {
		var rec guestProfileRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			stale = append(stale, KeyCheckoutCustomer)
		} else if rec.Version >= guestProfileVersion {
			found = &rec.CustomerInfo
		} else {
			info := rec.CustomerInfo
			found = &info
			stale = append(stale, KeyCheckoutCustomer)
		}
	}

	for _, key := range legacyProfileKeys {
		raw, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		stale = append(stale, key)
		if found != nil {
			continue
		}
		var info models.CustomerInfo
		if err := json.Unmarshal([]byte(raw), &info); err == nil {
			found = &info
		}
	}

	if len(stale) == 0 {
		return nil
	}

	set := map[string]string{}
	del := make([]string, 0, len(stale))
	for _, k := range stale {
		if k != KeyCheckoutCustomer {
			del = append(del, k)
		}
	}
	if found != nil {
		encoded, err := encodeGuestProfile(*found)
		if err != nil {
			return err
		}
		set[KeyCheckoutCustomer] = encoded
	} else {
		del = append(del, KeyCheckoutCustomer)
	}
	return s.storage.Apply(ctx, set, del)
}

// GuestProfile returns the saved checkout details of a guest. The stored
// phone fills in when the profile has none.
func (s *Store) GuestProfile(ctx context.Context) (models.CustomerInfo, bool, error) {
	var info models.CustomerInfo

	phone, hasPhone, err := s.storage.Get(ctx, KeyCustomerPhone)
	if err != nil {
		return info, false, fmt.Errorf("read guest phone: %w", err)
	}
	raw, ok, err := s.storage.Get(ctx, KeyCheckoutCustomer)
	if err != nil {
		return info, false, fmt.Errorf("read guest profile: %w", err)
	}

	if ok {
		var rec guestProfileRecord
		if err := json.Unmarshal([]byte(raw), &rec); err == nil {
			info = rec.CustomerInfo
		} else {
			ok = false
		}
	}
	if info.Phone == "" && hasPhone {
		info.Phone = phone
	}
	return info, ok || hasPhone, nil
}

// SaveGuestProfile stores the checkout details and the phone used to look up
// guest orders.
func (s *Store) SaveGuestProfile(ctx context.Context, info models.CustomerInfo) error {
	encoded, err := encodeGuestProfile(info)
	if err != nil {
		return fmt.Errorf("encode guest profile: %w", err)
	}
	set := map[string]string{KeyCheckoutCustomer: encoded}
	if info.Phone != "" {
		set[KeyCustomerPhone] = info.Phone
	}
	if err := s.storage.Apply(ctx, set, nil); err != nil {
		return fmt.Errorf("persist guest profile: %w", err)
	}
	return nil
}

// Phone returns the phone number orders are looked up by.
func (s *Store) Phone(ctx context.Context) (string, error) {
	phone, _, err := s.storage.Get(ctx, KeyCustomerPhone)
	if err != nil {
		return "", fmt.Errorf("read phone: %w", err)
	}
	return phone, nil
}

// SetPhone records the phone number orders are looked up by.
func (s *Store) SetPhone(ctx context.Context, phone string) error {
	if err := s.storage.Apply(ctx, map[string]string{KeyCustomerPhone: phone}, nil); err != nil {
		return fmt.Errorf("persist phone: %w", err)
	}
	return nil
}
