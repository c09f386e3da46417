package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON maps a jsonb column onto a plain map, for free-form detail payloads
// like repair scan findings.
type JSON map[string]interface{}

// Value implements driver.Valuer
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner. Postgres drivers hand jsonb back as either
// []byte or string depending on the protocol in use.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	*j = result
	return nil
}
