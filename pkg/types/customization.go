package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Customization holds the buyer-supplied options for a line item (size,
// finish, artwork placement, uploaded file path, ...). The shape is
// client-defined, so it is modeled as a tagged map rather than raw text.
type Customization map[string]any

// FileKey is the reserved key under which an uploaded artwork path is merged
// into a line item's customization at checkout.
const FileKey = "file"

// Canonical returns the canonical JSON encoding. encoding/json emits map keys
// in sorted order, so two customizations with equal content always produce
// identical bytes. Cart-line merging relies on this.
func (c Customization) Canonical() ([]byte, error) {
	if len(c) == 0 {
		return nil, nil
	}
	return json.Marshal(c)
}

// Equal reports whether both customizations serialize to identical bytes.
func (c Customization) Equal(other Customization) bool {
	a, err := c.Canonical()
	if err != nil {
		return false
	}
	b, err := other.Canonical()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// WithFile returns a copy of the customization with the uploaded file path
// merged under FileKey. The receiver is not mutated.
func (c Customization) WithFile(path string) Customization {
	merged := make(Customization, len(c)+1)
	for k, v := range c {
		merged[k] = v
	}
	merged[FileKey] = path
	return merged
}

// Value implements driver.Valuer, persisting the customization as JSON text.
func (c Customization) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (c *Customization) Scan(src any) error {
	if src == nil {
		*c = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("customization: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*c = nil
		return nil
	}
	return json.Unmarshal(raw, c)
}
