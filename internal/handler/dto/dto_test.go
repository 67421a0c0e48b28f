package dto

import (
	"encoding/json"
	"testing"
)

func TestNewTodoListResponse_EmptyIsArray(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewTodoListResponse(nil))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(data), `{"todos":[]}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestUpdateTodoRequest_AbsentFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		wantText      *string
		wantCompleted *bool
	}{
		{"empty", `{}`, nil, nil},
		{"completed only", `{"completed":true}`, nil, boolPtr(true)},
		{"text only", `{"text":"x"}`, strPtr("x"), nil},
		{"unknown fields ignored", `{"completedAt":5,"_creator":"me","completed":false}`, nil, boolPtr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req UpdateTodoRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			patch := req.ToPatch()

			if (patch.Text == nil) != (tt.wantText == nil) || (patch.Text != nil && *patch.Text != *tt.wantText) {
				t.Errorf("Text = %v, want %v", patch.Text, tt.wantText)
			}
			if (patch.Completed == nil) != (tt.wantCompleted == nil) || (patch.Completed != nil && *patch.Completed != *tt.wantCompleted) {
				t.Errorf("Completed = %v, want %v", patch.Completed, tt.wantCompleted)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }
