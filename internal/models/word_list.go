package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WordList is an ordered collection of spelling words owned by one user
type WordList struct {
	ID          int64      `db:"id" json:"id"`
	OwnerUserID string     `db:"owner_user_id" json:"owner_user_id"`
	Name        string     `db:"name" json:"name"`
	Words       StringList `db:"words" json:"words"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// StringList stores a []string as a JSON array column
type StringList []string

// Value implements driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported scan type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*s = StringList{}
		return nil
	}

	var words []string
	if err := json.Unmarshal(raw, &words); err != nil {
		return fmt.Errorf("StringList: invalid JSON: %w", err)
	}
	*s = words
	return nil
}
