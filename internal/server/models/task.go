package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type TaskStatus struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
}

type Label struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Task references its status by id; StatusSlug is filled on reads.
type Task struct {
	ID         int64
	Index      *int64
	Title      string
	Content    string
	StatusID   int64
	StatusSlug string
	AssigneeID *int64
	LabelIDs   IDList
	CreatedAt  time.Time
}

// TaskFilter narrows task listings. Zero fields do not filter.
type TaskFilter struct {
	TitleCont  string
	AssigneeID *int64
	Status     string
	LabelID    *int64
}

// IDList scans the comma separated output of string_agg.
type IDList []int64

func (l *IDList) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("id list: unsupported type %T", src)
	}
	*l = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("id list: %w", err)
		}
		*l = append(*l, id)
	}
	return nil
}
