package batch_test

import (
	"testing"

	"github.com/arbelos/writeset/batch"
)

func TestRegistry(t *testing.T) {
	r := batch.NewRegistry()
	r.Register("commerce", "users", "orders")
	r.Register("audit", "events")

	t.Run("group lookup", func(t *testing.T) {
		g, ok := r.GroupOf("orders")
		if !ok || g != "commerce" {
			t.Errorf("GroupOf(orders) = %q, %v", g, ok)
		}
		if _, ok := r.GroupOf("unknown"); ok {
			t.Error("expected miss for an unregistered table")
		}
	})

	t.Run("tables", func(t *testing.T) {
		got := r.Tables("commerce")
		if len(got) != 2 {
			t.Errorf("expected 2 tables, got %v", got)
		}
	})

	t.Run("compatible", func(t *testing.T) {
		cases := []struct {
			name   string
			tables []string
			want   bool
		}{
			{"same group", []string{"users", "orders"}, true},
			{"different groups", []string{"users", "events"}, false},
			{"unregistered member", []string{"users", "ghosts"}, false},
			{"single table", []string{"ghosts"}, true},
			{"empty", nil, true},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if got := r.Compatible(tc.tables); got != tc.want {
					t.Errorf("Compatible(%v) = %v, want %v", tc.tables, got, tc.want)
				}
			})
		}
	})
}

func TestRegisterAppends(t *testing.T) {
	r := batch.NewRegistry()
	r.Register("commerce", "users")
	r.Register("commerce", "orders")

	if !r.Compatible([]string{"users", "orders"}) {
		t.Error("incremental registration must extend the group")
	}
}
