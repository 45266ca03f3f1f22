package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("update shift: %w", Forbidden("Cannot update another employee's shift"))
	appErr, ok := As(err)
	if !ok {
		t.Fatalf("expected application error")
	}
	if appErr.Status != http.StatusForbidden || appErr.Message != "Cannot update another employee's shift" {
		t.Fatalf("unexpected error %+v", appErr)
	}
	if !Is(err, KindForbidden) || Is(err, KindNotFound) {
		t.Fatalf("kind checks mismatched")
	}
}

func TestConflictKeepsRequestedStatus(t *testing.T) {
	if got := Conflict(http.StatusConflict, "already deactivated").Status; got != http.StatusConflict {
		t.Fatalf("expected 409, got %d", got)
	}
	if got := Conflict(http.StatusBadRequest, "Email already registered").Status; got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestValidationCarriesFieldDetail(t *testing.T) {
	err := Validation("end", "must not be before start")
	if err.Details["end"] != "must not be before start" {
		t.Fatalf("unexpected details %v", err.Details)
	}
}
