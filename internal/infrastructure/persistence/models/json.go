package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// marshalJSON encodes v for a JSON column; nil pointers become SQL NULL
func marshalJSON[T any](v *T) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// unmarshalJSON decodes a JSON column; NULL decodes to nil
func unmarshalJSON[T any](raw datatypes.JSON) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode json column: %w", err)
	}
	return v, nil
}

func weekdayToColumn(d *time.Weekday) *int {
	if d == nil {
		return nil
	}
	v := int(*d)
	return &v
}

func weekdayFromColumn(v *int) *time.Weekday {
	if v == nil {
		return nil
	}
	d := time.Weekday(*v)
	return &d
}
