package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUUID indicates the string is not a valid UUID format
	ErrInvalidUUID = errors.New("invalid UUID format")
	// ErrNotUUIDv7 indicates the UUID is not version 7
	ErrNotUUIDv7 = errors.New("UUID must be version 7")
	// ErrFutureTimestamp indicates the UUIDv7 timestamp is too far in the future
	ErrFutureTimestamp = errors.New("UUID timestamp is too far in the future")
)

// MaxIDClockSkew is how far ahead of the server clock a client-generated id may be.
const MaxIDClockSkew = time.Minute

// ValidateUUIDv7 checks that id is a UUIDv7 minted no later than
// now + MaxIDClockSkew. Returns ErrInvalidUUID, ErrNotUUIDv7 or
// ErrFutureTimestamp.
func ValidateUUIDv7(id string, now time.Time) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}

	if parsed.Version() != 7 {
		return fmt.Errorf("%w: got version %d", ErrNotUUIDv7, parsed.Version())
	}

	minted := uuidV7Time(parsed)
	if minted.After(now.Add(MaxIDClockSkew)) {
		return fmt.Errorf("%w: %s is more than %s ahead of %s",
			ErrFutureTimestamp, minted.Format(time.RFC3339), MaxIDClockSkew, now.Format(time.RFC3339))
	}

	return nil
}

// uuidV7Time returns the Unix millisecond timestamp embedded in a UUIDv7.
func uuidV7Time(id uuid.UUID) time.Time {
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec).UTC()
}

// resolveActivityID keeps a client-generated id (offline clients log first
// and sync later) after validating it against now, or mints a fresh UUIDv7.
func resolveActivityID(id *string, now time.Time) (string, error) {
	if id != nil && *id != "" {
		if err := ValidateUUIDv7(*id, now); err != nil {
			return "", err
		}
		return *id, nil
	}

	generated, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate activity id: %w", err)
	}
	return generated.String(), nil
}
