package models

import (
	"strings"

	"rewind-backend/internal/apperr"
)

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MintForm is the editable coin form. Metadata and Properties are ordered
// key/value lists; rows with a blank key are dropped before submission.
type MintForm struct {
	Name        string     `json:"name"`
	Symbol      string     `json:"symbol"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Properties  []KeyValue `json:"properties"`
	Metadata    []KeyValue `json:"metadata"`
}

// Validate checks presence of the required fields only.
func (f MintForm) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return apperr.Validation("name is required")
	case strings.TrimSpace(f.Symbol) == "":
		return apperr.Validation("symbol is required")
	case strings.TrimSpace(f.Description) == "":
		return apperr.Validation("description is required")
	case strings.TrimSpace(f.Image) == "":
		return apperr.Validation("image is required")
	}
	return nil
}

// Normalized returns a copy with blank-key rows removed. The receiver is not
// modified.
func (f MintForm) Normalized() MintForm {
	out := f
	out.Properties = dropBlankKeys(f.Properties)
	out.Metadata = dropBlankKeys(f.Metadata)
	return out
}

// Clone returns a deep copy.
func (f MintForm) Clone() MintForm {
	out := f
	out.Properties = append([]KeyValue(nil), f.Properties...)
	out.Metadata = append([]KeyValue(nil), f.Metadata...)
	return out
}

// Pairs converts an ordered list into a map. Later duplicates win.
func Pairs(kvs []KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		if strings.TrimSpace(kv.Key) == "" {
			continue
		}
		m[kv.Key] = kv.Value
	}
	return m
}

func dropBlankKeys(kvs []KeyValue) []KeyValue {
	out := make([]KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		if strings.TrimSpace(kv.Key) == "" {
			continue
		}
		out = append(out, kv)
	}
	return out
}
