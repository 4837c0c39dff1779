package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// newUUIDv7AtTime builds a deterministic UUIDv7 whose 48-bit timestamp is t.
func newUUIDv7AtTime(t time.Time) uuid.UUID {
	var id uuid.UUID
	ms := uint64(t.UnixMilli())
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	id[6] = 0x70
	id[8] = 0x80
	id[15] = 0x01
	return id
}

func TestValidateUUIDv7(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "minted at now", id: newUUIDv7AtTime(testNow).String()},
		{name: "logged offline a day ago", id: newUUIDv7AtTime(testNow.Add(-24 * time.Hour)).String()},
		{name: "within clock skew", id: newUUIDv7AtTime(testNow.Add(59 * time.Second)).String()},
		{name: "exactly at clock skew", id: newUUIDv7AtTime(testNow.Add(MaxIDClockSkew)).String()},
		{name: "beyond clock skew", id: newUUIDv7AtTime(testNow.Add(2 * time.Minute)).String(), wantErr: ErrFutureTimestamp},
		{name: "version 4", id: uuid.New().String(), wantErr: ErrNotUUIDv7},
		{name: "empty", id: "", wantErr: ErrInvalidUUID},
		{name: "garbage", id: "not-a-uuid", wantErr: ErrInvalidUUID},
		{name: "truncated", id: "12345678-1234-1234-1234", wantErr: ErrInvalidUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUUIDv7(tt.id, testNow)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateUUIDv7(%q) = %v, want nil", tt.id, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUUIDv7(%q) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

// The future bound follows the supplied clock, not the wall clock: an id
// minted just after a fixed past instant is rejected against that instant.
func TestValidateUUIDv7_UsesSuppliedClock(t *testing.T) {
	id := newUUIDv7AtTime(testNow.Add(10 * time.Minute)).String()

	if err := ValidateUUIDv7(id, testNow); !errors.Is(err, ErrFutureTimestamp) {
		t.Errorf("ValidateUUIDv7 at testNow = %v, want %v", err, ErrFutureTimestamp)
	}
	if err := ValidateUUIDv7(id, testNow.Add(10*time.Minute)); err != nil {
		t.Errorf("ValidateUUIDv7 ten minutes later = %v, want nil", err)
	}
}

func TestUUIDv7Time(t *testing.T) {
	want := time.Date(2024, 3, 10, 6, 30, 15, 123_000_000, time.UTC)
	if got := uuidV7Time(newUUIDv7AtTime(want)); !got.Equal(want) {
		t.Errorf("uuidV7Time() = %v, want %v", got, want)
	}
}

func TestResolveActivityID(t *testing.T) {
	generated, err := resolveActivityID(nil, testNow)
	if err != nil {
		t.Fatalf("resolveActivityID(nil) error = %v", err)
	}
	if parsed, err := uuid.Parse(generated); err != nil || parsed.Version() != 7 {
		t.Errorf("resolveActivityID(nil) = %q, want a UUIDv7", generated)
	}

	empty := ""
	if id, err := resolveActivityID(&empty, testNow); err != nil || id == "" {
		t.Errorf("resolveActivityID(\"\") = %q, %v, want a generated id", id, err)
	}

	client := newUUIDv7AtTime(testNow.Add(-time.Hour)).String()
	if id, err := resolveActivityID(&client, testNow); err != nil || id != client {
		t.Errorf("resolveActivityID(client) = %q, %v, want %q", id, err, client)
	}

	future := newUUIDv7AtTime(testNow.Add(5 * time.Minute)).String()
	if _, err := resolveActivityID(&future, testNow); !errors.Is(err, ErrFutureTimestamp) {
		t.Errorf("resolveActivityID(future) error = %v, want %v", err, ErrFutureTimestamp)
	}

	v4 := uuid.New().String()
	if _, err := resolveActivityID(&v4, testNow); !errors.Is(err, ErrNotUUIDv7) {
		t.Errorf("resolveActivityID(v4) error = %v, want %v", err, ErrNotUUIDv7)
	}
}
