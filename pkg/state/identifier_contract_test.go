package state_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-reconcile/pkg/state"
)

type identifierFixture struct {
	Description string           `json:"description"`
	Cases       []identifierCase `json:"cases"`
}

type identifierCase struct {
	Name string `json:"name"`
	Ref  struct {
		Domain   string `json:"domain"`
		Document string `json:"document"`
		Scope    string `json:"scope"`
		ID       string `json:"id"`
	} `json:"ref"`
	Expect struct {
		Value string `json:"value"`
		Err   string `json:"err"`
	} `json:"expect"`
}

func TestRefIdentifierContracts(t *testing.T) {
	fx := loadFixture[identifierFixture](t, "state_identifier.json")
	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			ref := state.Ref{
				Domain:   tc.Ref.Domain,
				Document: tc.Ref.Document,
				Scope:    state.Scope{Level: state.ParseScopeLevel(tc.Ref.Scope), ID: tc.Ref.ID},
			}
			got, err := ref.Identifier()

			if tc.Expect.Err != "" {
				if err == nil {
					t.Fatalf("expected error %q but got nil", tc.Expect.Err)
				}
				if err.Error() != tc.Expect.Err {
					t.Fatalf("expected error %q, got %q", tc.Expect.Err, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.Expect.Value {
				t.Fatalf("expected %q, got %q", tc.Expect.Value, got)
			}
		})
	}
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}
