package orchestration

import (
	"errors"
	"strings"
	"testing"

	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
)

func TestSelectFacilities(t *testing.T) {
	t.Parallel()
	catalog := billing.NewCatalog("", facilities("a", "b", "c"))
	tests := []struct {
		name    string
		ids     []string
		want    []string
		wantErr string
	}{
		{"all when empty", nil, []string{"a", "b", "c"}, ""},
		{"requested order", []string{"c", "a"}, []string{"c", "a"}, ""},
		{"duplicates dropped", []string{"b", "b"}, []string{"b"}, ""},
		{"unknown ids", []string{"a", "x", "y"}, nil, "x, y"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SelectFacilities(catalog, tt.ids)
			if tt.wantErr != "" {
				var ve apperrors.ValidationError
				if !errors.As(err, &ve) || !strings.Contains(ve.Message, tt.wantErr) {
					t.Fatalf("err = %v, want validation error naming %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d facilities, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
