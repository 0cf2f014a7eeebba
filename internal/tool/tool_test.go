package tool

import (
	"errors"
	"strings"
	"testing"
)

func TestTableComplete(t *testing.T) {
	seen := make(map[string]ID)
	for id := Custom + 1; id < numIDs; id++ {
		info, ok := Lookup(id)
		if !ok {
			t.Fatalf("Lookup(%d) failed", id)
		}
		if info.ID != id {
			t.Errorf("table[%d].ID = %d", id, info.ID)
		}
		if info.Slug == "" || info.Name == "" || info.Description == "" {
			t.Errorf("tool %d has incomplete metadata: %+v", id, info)
		}
		if prev, dup := seen[info.Slug]; dup {
			t.Errorf("slug %q used by %d and %d", info.Slug, prev, id)
		}
		seen[info.Slug] = id
	}
}

func TestLookupInvalid(t *testing.T) {
	for _, id := range []ID{Custom, numIDs, ID(-1)} {
		if _, ok := Lookup(id); ok {
			t.Errorf("Lookup(%d) succeeded", id)
		}
		if id.String() != "custom" {
			t.Errorf("ID(%d).String() = %q", id, id.String())
		}
	}
}

func TestBySlug(t *testing.T) {
	info, ok := BySlug("upper-case")
	if !ok || info.ID != UpperCase {
		t.Errorf("BySlug(upper-case) = %+v, %v", info, ok)
	}
	if UpperCase.String() != "upper-case" {
		t.Errorf("UpperCase.String() = %q", UpperCase.String())
	}
	if _, ok := BySlug("nope"); ok {
		t.Error("BySlug(nope) succeeded")
	}
}

func TestByCategory(t *testing.T) {
	gens := ByCategory(CategoryGenerator)
	if len(gens) != 2 {
		t.Fatalf("len(generators) = %d, want 2", len(gens))
	}
	for _, g := range gens {
		if g.Category != CategoryGenerator {
			t.Errorf("%s has category %s", g.Slug, g.Category)
		}
	}
	if len(ByCategory(CategoryScript)) != 0 {
		t.Error("no built-in tool should be a script")
	}
	if len(All()) != int(numIDs)-1 {
		t.Errorf("len(All()) = %d", len(All()))
	}
}

func TestWithTag(t *testing.T) {
	got := WithTag("CASE")
	if len(got) != 4 {
		t.Errorf("len(WithTag(CASE)) = %d, want 4", len(got))
	}
	if len(WithTag("missing")) != 0 {
		t.Error("unexpected match for missing tag")
	}
}

func TestCategoryString(t *testing.T) {
	tests := map[Category]string{
		CategoryText:      "text",
		CategoryGenerator: "generator",
		CategoryScript:    "script",
		Category(9):       "unknown",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("Category(%d).String() = %q, want %q", c, got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(map[ID]Transform{
		UpperCase: func(s string) (string, error) { return strings.ToUpper(s), nil },
	})

	if r.Len() != int(numIDs)-1 {
		t.Errorf("Len() = %d", r.Len())
	}

	upper, err := r.Get("upper-case")
	if err != nil {
		t.Fatalf("Get(upper-case) failed: %v", err)
	}
	if got, err := upper.Apply("abc"); err != nil || got != "ABC" {
		t.Errorf("Apply() = %q, %v", got, err)
	}

	lower, err := r.Get("lower-case")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lower.Apply("ABC"); !errors.Is(err, ErrNoTransform) {
		t.Errorf("unbound Apply() error = %v, want ErrNoTransform", err)
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry(nil)
	rot := func(s string) (string, error) { return s + "!", nil }

	err := r.Register(Info{Slug: "shout", ID: UpperCase, Category: CategoryText}, rot)
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	got, err := r.Get("shout")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != Custom || got.Category != CategoryScript || got.Name != "shout" {
		t.Errorf("registered info = %+v", got.Info)
	}

	all := r.All()
	if all[len(all)-1].Slug != "shout" {
		t.Error("runtime tools should be listed after built-ins")
	}
	if len(r.ByCategory(CategoryScript)) != 1 {
		t.Error("expected one script tool")
	}
	if len(r.WithTag("encoding")) != 4 {
		t.Errorf("len(WithTag(encoding)) = %d, want 4", len(r.WithTag("encoding")))
	}

	if err := r.Register(Info{Slug: "shout"}, rot); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Register() error = %v, want ErrDuplicate", err)
	}
	if err := r.Register(Info{Slug: "upper-case"}, rot); !errors.Is(err, ErrDuplicate) {
		t.Errorf("built-in collision error = %v, want ErrDuplicate", err)
	}
	if err := r.Register(Info{Slug: "nil"}, nil); !errors.Is(err, ErrNoTransform) {
		t.Errorf("nil transform error = %v, want ErrNoTransform", err)
	}
	if err := r.Register(Info{}, rot); err == nil {
		t.Error("empty slug should fail")
	}
}
