package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// FilterKind
// =============================================================================

// FilterKind selects which predicted label a drill-down filters by.
type FilterKind int

// Filter kinds understood by the drill-down endpoint.
const (
	FilterPerformance FilterKind = iota + 1
	FilterRisk
	FilterDropout
)

// String returns the short name of the filter kind.
func (k FilterKind) String() string {
	switch k {
	case FilterPerformance:
		return "performance"
	case FilterRisk:
		return "risk"
	case FilterDropout:
		return "dropout"
	default:
		return "unknown"
	}
}

// Wire returns the field name the server expects, e.g. "risk_label".
func (k FilterKind) Wire() string {
	return k.String() + "_label"
}

// ParseFilterKind accepts both the short form ("risk") and the wire form
// ("risk_label"), case-insensitively.
func ParseFilterKind(s string) (FilterKind, bool) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_label") {
	case "performance":
		return FilterPerformance, true
	case "risk":
		return FilterRisk, true
	case "dropout":
		return FilterDropout, true
	default:
		return 0, false
	}
}

// FilterKinds lists every valid filter kind in display order.
func FilterKinds() []FilterKind {
	return []FilterKind{FilterPerformance, FilterRisk, FilterDropout}
}

// =============================================================================
// Scope
// =============================================================================

// Scope is the aggregation level a drill-down applies to.
type Scope int

// Drill-down scopes.
const (
	ScopeStudent Scope = iota + 1
	ScopeDepartment
	ScopeYear
	ScopeCollege
	ScopeBatch
)

// String returns the display name of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeStudent:
		return "student"
	case ScopeDepartment:
		return "department"
	case ScopeYear:
		return "year"
	case ScopeCollege:
		return "college"
	case ScopeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Wire returns the scope value sent to the server. Department scope is
// abbreviated to "dept" on the wire.
func (s Scope) Wire() string {
	if s == ScopeDepartment {
		return "dept"
	}
	return s.String()
}

// ParseScope accepts display names and the "dept" wire alias.
func ParseScope(s string) (Scope, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return ScopeStudent, true
	case "department", "dept":
		return ScopeDepartment, true
	case "year":
		return ScopeYear, true
	case "college":
		return ScopeCollege, true
	case "batch":
		return ScopeBatch, true
	default:
		return 0, false
	}
}

// Scopes lists every valid scope.
func Scopes() []Scope {
	return []Scope{ScopeStudent, ScopeDepartment, ScopeYear, ScopeCollege, ScopeBatch}
}

// =============================================================================
// FilterRequest
// =============================================================================

// FilterRequest identifies one drill-down query. It is immutable once built.
type FilterRequest struct {
	kind       FilterKind
	value      string
	scope      Scope
	scopeValue string
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewFilterRequest parses and validates drill-down arguments.
func NewFilterRequest(kind, value, scope, scopeValue string) (FilterRequest, error) {
	k, ok := ParseFilterKind(kind)
	if !ok {
		return FilterRequest{}, &ValidationError{Field: "filter_kind", Message: fmt.Sprintf("%q is not one of performance, risk, dropout", kind)}
	}
	sc, ok := ParseScope(scope)
	if !ok {
		return FilterRequest{}, &ValidationError{Field: "scope", Message: fmt.Sprintf("%q is not one of student, department, year, college, batch", scope)}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return FilterRequest{}, &ValidationError{Field: "filter_value", Message: "must not be empty"}
	}
	scopeValue = strings.TrimSpace(scopeValue)
	if scopeValue == "" {
		return FilterRequest{}, &ValidationError{Field: "scope_value", Message: "must not be empty"}
	}
	return FilterRequest{kind: k, value: value, scope: sc, scopeValue: scopeValue}, nil
}

// Kind returns the filter kind.
func (r FilterRequest) Kind() FilterKind { return r.kind }

// Value returns the label value being filtered for, e.g. "high".
func (r FilterRequest) Value() string { return r.value }

// Scope returns the aggregation scope.
func (r FilterRequest) Scope() Scope { return r.scope }

// ScopeValue returns the scope selector, e.g. "CSE" or "2024".
func (r FilterRequest) ScopeValue() string { return r.scopeValue }

// IsZero reports whether the request was never built.
func (r FilterRequest) IsZero() bool { return r.kind == 0 }

func (r FilterRequest) String() string {
	return fmt.Sprintf("%s=%s @ %s:%s", r.kind.Wire(), r.value, r.scope.Wire(), r.scopeValue)
}

type filterRequestWire struct {
	FilterType  string `json:"filter_type"`
	FilterValue string `json:"filter_value"`
	Scope       string `json:"scope"`
	ScopeValue  string `json:"scope_value"`
}

// MarshalJSON encodes the request body of POST /api/analytics/drilldown.
func (r FilterRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(filterRequestWire{
		FilterType:  r.kind.Wire(),
		FilterValue: r.value,
		Scope:       r.scope.Wire(),
		ScopeValue:  r.scopeValue,
	})
}
