package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes carries admin-defined product metadata (material, dimensions,
// print areas). Free-form by design; serialized as JSON.
type Attributes map[string]any

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src any) error {
	if src == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("attributes: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*a = nil
		return nil
	}
	return json.Unmarshal(raw, a)
}
