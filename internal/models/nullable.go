package models

import (
	"bytes"
	"encoding/json"
	"time"
)

var jsonNull = []byte("null")

// NullableString tells apart an absent field (Set=false), an explicit
// null (Set=true, Valid=false) and a value (Set=true, Valid=true).
// A *string cannot, because encoding/json leaves it nil in both of the
// first two cases. PATCH bodies need the difference to clear a field.
type NullableString struct {
	Value string
	Valid bool
	Set   bool
}

// UnmarshalJSON only runs when the key is present, which is what sets Set
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	ns.Set = true
	ns.Value, ns.Valid = "", false
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	if err := json.Unmarshal(data, &ns.Value); err != nil {
		return err
	}
	ns.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return jsonNull, nil
	}
	return json.Marshal(ns.Value)
}

// ToPtr returns nil unless a value was supplied
func (ns NullableString) ToPtr() *string {
	if !ns.Valid {
		return nil
	}
	v := ns.Value
	return &v
}

// NullableTime is the time.Time counterpart of NullableString
type NullableTime struct {
	Value time.Time
	Valid bool
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullableTime) UnmarshalJSON(data []byte) error {
	nt.Set = true
	nt.Value, nt.Valid = time.Time{}, false
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	if err := json.Unmarshal(data, &nt.Value); err != nil {
		return err
	}
	nt.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler
func (nt NullableTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return jsonNull, nil
	}
	return json.Marshal(nt.Value)
}

// ToPtr returns nil unless a value was supplied
func (nt NullableTime) ToPtr() *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Value
	return &v
}
