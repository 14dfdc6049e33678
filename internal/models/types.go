package models

import (
	"bytes"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DealsQuery holds the list parameters of GET /customers/deals.
// A zero field means "not supplied" when merged over defaults.
type DealsQuery struct {
	Page      int           `json:"page,omitempty"`
	PageSize  int           `json:"pageSize,omitempty"`
	SortField string        `json:"sortField,omitempty"`
	SortDir   SortDirection `json:"sortDir,omitempty"`
}

// Number is a JSON value that is only usable when it was a finite number.
// Strings, booleans and null decode into an invalid Number instead of failing.
type Number struct {
	Value float64
	Valid bool
}

func NewNumber(v float64) Number {
	return Number{Value: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	*n = NewNumber(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// Deal is a sales-pipeline record. Associations come either as embedded
// records (Companies, People) or as id lists (CompanyIDs, PersonIDs); a nil
// slice means the field was absent.
type Deal struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Status        string            `json:"status,omitempty"`
	PipelineStage string            `json:"pipeline_stage,omitempty"`
	ValueAmount   Number            `json:"value_amount"`
	ValueCurrency string            `json:"value_currency,omitempty"`
	CreatedAt     string            `json:"created_at,omitempty"`
	UpdatedAt     string            `json:"updated_at,omitempty"`
	Companies     []json.RawMessage `json:"companies"`
	People        []json.RawMessage `json:"people"`
	CompanyIDs    []json.RawMessage `json:"companyIds"`
	PersonIDs     []json.RawMessage `json:"personIds"`
}

type DealsResponse struct {
	Items      []Deal `json:"items"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

// ErrorBody is the structured error payload returned by the upstream API.
type ErrorBody struct {
	Error string `json:"error,omitempty"`
}
