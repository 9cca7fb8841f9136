// Package models defines server-side data models persisted in the database.
package models

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Roles        Roles
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Roles is stored as a comma separated text column.
type Roles []string

func (r Roles) Value() (driver.Value, error) {
	return strings.Join(r, ","), nil
}

func (r *Roles) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("roles: unsupported type %T", src)
	}
	*r = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" && !slices.Contains(*r, part) {
			*r = append(*r, part)
		}
	}
	return nil
}
