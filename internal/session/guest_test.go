package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/amarshop/internal/models"
)

func TestGuestProfileRoundTrip(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GuestProfile(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	info := models.CustomerInfo{Name: "Guest", Phone: "01712345678", District: "Dhaka"}
	require.NoError(t, store.SaveGuestProfile(ctx, info))

	got, ok, err := store.GuestProfile(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, info, got)

	persisted := backend.Snapshot("sid-1")
	assert.Equal(t, "01712345678", persisted[KeyCustomerPhone])
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(persisted[KeyCheckoutCustomer]), &rec))
	assert.EqualValues(t, 1, rec["version"])
}

func TestGuestProfileFallsBackToPhone(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetPhone(ctx, "01800000000"))

	got, ok, err := store.GuestProfile(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "01800000000", got.Phone)

	phone, err := store.Phone(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01800000000", phone)
}

func TestHydrateMigratesLegacyProfiles(t *testing.T) {
	tests := []struct {
		name     string
		seed     map[string]string
		wantName string
		wantNone bool
	}{
		{
			name:     "unversioned checkout_customer",
			seed:     map[string]string{KeyCheckoutCustomer: `{"name":"Old","phone":"017"}`},
			wantName: "Old",
		},
		{
			name: "order_customer before shipping_info",
			seed: map[string]string{
				KeyShippingInfo:  `{"name":"Ship"}`,
				KeyOrderCustomer: `{"name":"Order"}`,
			},
			wantName: "Order",
		},
		{
			name: "malformed legacy skipped",
			seed: map[string]string{
				KeyOrderCustomer: `{broken`,
				KeyCustomer:      `{"name":"Cust"}`,
			},
			wantName: "Cust",
		},
		{
			name: "current record wins over legacy",
			seed: map[string]string{
				KeyCheckoutCustomer: `{"version":1,"name":"Current"}`,
				KeyCustomer:         `{"name":"Legacy"}`,
			},
			wantName: "Current",
		},
		{
			name:     "only garbage",
			seed:     map[string]string{KeyCheckoutCustomer: `nope`},
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			ctx := context.Background()
			require.NoError(t, backend.Open("sid").Apply(ctx, tt.seed, nil))

			store := NewStore(backend.Open("sid"), nil)
			require.NoError(t, store.Hydrate(ctx))

			persisted := backend.Snapshot("sid")
			for _, k := range legacyProfileKeys {
				assert.NotContains(t, persisted, k)
			}

			if tt.wantNone {
				assert.NotContains(t, persisted, KeyCheckoutCustomer)
				return
			}

			var rec guestProfileRecord
			require.NoError(t, json.Unmarshal([]byte(persisted[KeyCheckoutCustomer]), &rec))
			assert.Equal(t, guestProfileVersion, rec.Version)
			assert.Equal(t, tt.wantName, rec.Name)
		})
	}
}
