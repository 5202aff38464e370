package leap

import (
	"bytes"
	"encoding/json"
)

// WorkType is a sub-classification of a trade.
type WorkType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Trade is a company trade with its work types.
type Trade struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	WorkTypes nestedList[WorkType] `json:"work_types"`
}

// Division is a company division.
type Division struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// SalesRep is an active company user that can own jobs.
type SalesRep struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// nestedList accepts both a bare array and an included resource wrapped as
// {"data": [...]}.
type nestedList[T any] []T

func (l *nestedList[T]) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var wrapped envelope[[]T]
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Data
	return nil
}

func (l nestedList[T]) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(l))
}
