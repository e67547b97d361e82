package handlers

import (
	"encoding/json"
	"testing"
)

func TestOptionalDateAbsent(t *testing.T) {
	var req struct {
		DecisionDate optionalDate `json:"decision_date"`
	}
	if err := json.Unmarshal([]byte(`{}`), &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if req.DecisionDate.set {
		t.Fatal("expected absent field to stay unset")
	}
}

func TestOptionalDateNull(t *testing.T) {
	var req struct {
		DecisionDate optionalDate `json:"decision_date"`
	}
	if err := json.Unmarshal([]byte(`{"decision_date": null}`), &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !req.DecisionDate.set {
		t.Fatal("expected explicit null to mark the field set")
	}
	if req.DecisionDate.value != nil {
		t.Fatalf("expected nil value, got %v", req.DecisionDate.value)
	}
}

func TestOptionalDateValue(t *testing.T) {
	var req struct {
		DecisionDate optionalDate `json:"decision_date"`
	}
	if err := json.Unmarshal([]byte(`{"decision_date": "2024-03-15"}`), &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !req.DecisionDate.set || req.DecisionDate.value == nil {
		t.Fatal("expected set value")
	}
	if got := req.DecisionDate.value.Format(dateLayout); got != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %s", got)
	}
}

func TestOptionalDateInvalid(t *testing.T) {
	var req struct {
		DecisionDate optionalDate `json:"decision_date"`
	}
	if err := json.Unmarshal([]byte(`{"decision_date": "03/15/2024"}`), &req); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestOptionalUint(t *testing.T) {
	var req struct {
		ProjectID optionalUint `json:"project_id"`
	}

	if err := json.Unmarshal([]byte(`{"project_id": 7}`), &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !req.ProjectID.set || req.ProjectID.value == nil || *req.ProjectID.value != 7 {
		t.Fatalf("expected set value 7, got %+v", req.ProjectID)
	}

	req.ProjectID = optionalUint{}
	if err := json.Unmarshal([]byte(`{"project_id": null}`), &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !req.ProjectID.set || req.ProjectID.value != nil {
		t.Fatalf("expected set nil for explicit null, got %+v", req.ProjectID)
	}
}

func TestParseBoolFlag(t *testing.T) {
	if v := parseBoolFlag("true"); v == nil || !*v {
		t.Fatal("expected true")
	}
	if v := parseBoolFlag("false"); v == nil || *v {
		t.Fatal("expected false")
	}
	if parseBoolFlag("") != nil {
		t.Fatal("expected nil for empty value")
	}
	if parseBoolFlag("yes") != nil {
		t.Fatal("expected nil for unrecognized value")
	}
}

func TestParseDateQuery(t *testing.T) {
	parsed, err := parseDateQuery("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed == nil || parsed.Format(dateLayout) != "2024-03-15" {
		t.Fatalf("unexpected result: %v", parsed)
	}

	parsed, err = parseDateQuery("")
	if err != nil || parsed != nil {
		t.Fatalf("expected nil, nil for empty value, got %v, %v", parsed, err)
	}

	if _, err := parseDateQuery("15-03-2024"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestParseUintQuery(t *testing.T) {
	id, err := parseUintQuery("42")
	if err != nil || id == nil || *id != 42 {
		t.Fatalf("unexpected result: %v, %v", id, err)
	}

	id, err = parseUintQuery("")
	if err != nil || id != nil {
		t.Fatalf("expected nil, nil for empty value, got %v, %v", id, err)
	}

	if _, err := parseUintQuery("-3"); err == nil {
		t.Fatal("expected error for negative id")
	}
}
