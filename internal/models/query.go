package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sortable and filterable user fields, keyed by their API name.
const (
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldRole      = "role"
	FieldName      = "name"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

var filterableFields = map[string]bool{
	FieldUsername: true,
	FieldEmail:    true,
	FieldRole:     true,
	FieldName:     true,
}

var sortableFields = map[string]bool{
	FieldUsername:  true,
	FieldEmail:     true,
	FieldRole:      true,
	FieldName:      true,
	FieldCreatedAt: true,
	FieldUpdatedAt: true,
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortField is one ordering key.
type SortField struct {
	Field      string
	Descending bool
}

// ListQuery selects a page of users. Filters are exact matches.
type ListQuery struct {
	Filters map[string]string
	Sort    []SortField
	Page    int
	Limit   int
}

// Offset returns the number of rows to skip.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseListQuery builds a ListQuery from the raw "filters" and "sort" JSON
// objects accepted by the list endpoint. Unknown fields are rejected.
func ParseListQuery(filtersJSON, sortJSON string, page, limit int) (ListQuery, error) {
	q := ListQuery{Filters: map[string]string{}, Page: page, Limit: limit}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	if strings.TrimSpace(filtersJSON) != "" {
		var raw map[string]any
		if err := json.Unmarshal([]byte(filtersJSON), &raw); err != nil {
			return ListQuery{}, fmt.Errorf("filters must be a JSON object: %w", err)
		}
		for field, v := range raw {
			if !filterableFields[field] {
				return ListQuery{}, fmt.Errorf("cannot filter on %q", field)
			}
			s, ok := v.(string)
			if !ok {
				return ListQuery{}, fmt.Errorf("filter %q must be a string", field)
			}
			if field == FieldRole {
				role, err := ParseRole(s)
				if err != nil {
					return ListQuery{}, err
				}
				s = string(role)
			}
			q.Filters[field] = s
		}
	}

	if strings.TrimSpace(sortJSON) == "" {
		q.Sort = []SortField{{Field: FieldCreatedAt, Descending: true}}
		return q, nil
	}

	// Decode with json.Decoder tokens so key order is preserved.
	dec := json.NewDecoder(strings.NewReader(sortJSON))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return ListQuery{}, fmt.Errorf("sort must be a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return ListQuery{}, fmt.Errorf("invalid sort: %w", err)
		}
		field, _ := keyTok.(string)
		if !sortableFields[field] {
			return ListQuery{}, fmt.Errorf("cannot sort on %q", field)
		}
		var dir any
		if err := dec.Decode(&dir); err != nil {
			return ListQuery{}, fmt.Errorf("invalid sort direction for %q: %w", field, err)
		}
		desc, err := parseDirection(dir)
		if err != nil {
			return ListQuery{}, fmt.Errorf("invalid sort direction for %q: %w", field, err)
		}
		q.Sort = append(q.Sort, SortField{Field: field, Descending: desc})
	}
	if len(q.Sort) == 0 {
		q.Sort = []SortField{{Field: FieldCreatedAt, Descending: true}}
	}
	return q, nil
}

func parseDirection(v any) (bool, error) {
	switch d := v.(type) {
	case string:
		switch strings.ToLower(d) {
		case "asc", "ascending", "1":
			return false, nil
		case "desc", "descending", "-1":
			return true, nil
		}
	case float64:
		switch d {
		case 1:
			return false, nil
		case -1:
			return true, nil
		}
	}
	return false, fmt.Errorf("expected asc, desc, 1 or -1")
}
