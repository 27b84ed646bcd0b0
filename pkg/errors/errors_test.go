package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad", nil), http.StatusBadRequest},
		{"not found", NewNotFound("order", 1), http.StatusNotFound},
		{"conflict", NewConflict("stock"), http.StatusConflict},
		{"unauthorized", NewUnauthorized("token"), http.StatusUnauthorized},
		{"forbidden", NewForbidden("admin"), http.StatusForbidden},
		{"internal", NewInternal("db", stderrors.New("boom")), http.StatusInternalServerError},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestToJSON_HidesInternalCause(t *testing.T) {
	err := NewInternal("failed to create order", stderrors.New("pq: connection refused"))

	status, body := ToJSON(err, "trace-1", false)

	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Details != nil {
		t.Errorf("expected no details, got %v", resp.Error.Details)
	}
	if resp.Error.Message != "An internal error occurred" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
	if resp.TraceID != "trace-1" {
		t.Errorf("expected trace id, got %q", resp.TraceID)
	}
}

func TestToJSON_ExposesInternalCauseInDebug(t *testing.T) {
	err := NewInternal("failed to create order", stderrors.New("pq: connection refused"))

	_, body := ToJSON(err, "", true)

	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Details != "pq: connection refused" {
		t.Errorf("expected cause in details, got %v", resp.Error.Details)
	}
}

func TestToJSON_KeepsReason(t *testing.T) {
	err := NewConflict("insufficient stock").WithReason("INSUFFICIENT_STOCK")

	status, body := ToJSON(err, "", false)

	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Reason != "INSUFFICIENT_STOCK" {
		t.Errorf("expected reason INSUFFICIENT_STOCK, got %q", resp.Error.Reason)
	}
}

func TestWithReason_DoesNotMutateOriginal(t *testing.T) {
	base := NewConflict("order conflict")

	derived := base.WithReason("ORDER_ALREADY_CANCELLED")

	if base.Reason != "" {
		t.Errorf("base reason mutated to %q", base.Reason)
	}
	if !HasReason(derived, "ORDER_ALREADY_CANCELLED") {
		t.Errorf("expected derived reason")
	}
	if !Is(derived, CodeConflict) {
		t.Errorf("expected conflict code")
	}
}

func TestGRPCStatus(t *testing.T) {
	err := GRPCStatus(NewConflict("shipped").WithReason("CANNOT_CANCEL_SHIPPED_ORDER"))

	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %s", st.Code())
	}
	if st.Message() != "CANNOT_CANCEL_SHIPPED_ORDER: shipped" {
		t.Errorf("unexpected message %q", st.Message())
	}

	internal, _ := status.FromError(GRPCStatus(NewInternal("db", stderrors.New("secret"))))
	if internal.Message() != "internal error" {
		t.Errorf("internal cause leaked: %q", internal.Message())
	}
}
