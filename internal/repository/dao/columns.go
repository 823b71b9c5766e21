package dao

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON-backed column types. Postgres stores these as jsonb; gorm only needs
// Valuer/Scanner on both ends.

type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue(s)
}

func (s *StringSlice) Scan(src any) error {
	return jsonScan(src, s)
}

type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return jsonValue(m)
}

func (m *JSONMap) Scan(src any) error {
	return jsonScan(src, m)
}

type FormField struct {
	FieldName   string   `json:"fieldName"`
	FieldType   string   `json:"fieldType"`
	IsRequired  bool     `json:"isRequired"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Order       int      `json:"order"`
}

type FormFields []FormField

func (f FormFields) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	return jsonValue(f)
}

func (f *FormFields) Scan(src any) error {
	return jsonScan(src, f)
}

type ItemOptions struct {
	Sizes    []string `json:"sizes,omitempty"`
	Colors   []string `json:"colors,omitempty"`
	Variants []string `json:"variants,omitempty"`
}

func (o ItemOptions) Value() (driver.Value, error) {
	return jsonValue(o)
}

func (o *ItemOptions) Scan(src any) error {
	return jsonScan(src, o)
}

type MerchDetails struct {
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

func (d MerchDetails) Value() (driver.Value, error) {
	return jsonValue(d)
}

func (d *MerchDetails) Scan(src any) error {
	return jsonScan(src, d)
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal -> %w", err)
	}
	return string(b), nil
}

func jsonScan(src, dst any) error {
	if src == nil {
		return nil
	}

	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return errors.New("unsupported column source type")
	}
}
