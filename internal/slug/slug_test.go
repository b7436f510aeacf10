package slug

import "testing"

func TestFromValid(t *testing.T) {
	tests := []string{"api", "api-gateway", "api_gateway", "a1", "x-1foo"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			got, err := From(s)
			if err != nil {
				t.Fatalf("From(%q) returned error: %v", s, err)
			}
			if string(got) != s {
				t.Errorf("From(%q) = %q, want %q", s, got, s)
			}
		})
	}
}

func TestFromRoundTrip(t *testing.T) {
	// Property: for every string accepted by From, From(s.String()) == Ok(s).
	accepted := []string{"web", "db-primary", "cache_1", "z9"}
	for _, s := range accepted {
		got, err := From(s)
		if err != nil {
			t.Fatalf("From(%q) failed: %v", s, err)
		}
		again, err := From(got.String())
		if err != nil || again != got {
			t.Errorf("round-trip failed for %q: got %q, err %v", s, again, err)
		}
	}
}

func TestFromInvalid(t *testing.T) {
	_, err := From("1foo")
	if err == nil {
		t.Fatal("expected error for leading digit")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"digit prefix", "1foo", "x-1foo"},
		{"spaces and case", "Hello World", "hello-world"},
		{"only punctuation", "!!!", ""},
		{"trims separators", "--hello--", "hello"},
		{"collapses runs", "a!!!b", "a-b"},
		{"underscore preserved", "my_project", "my_project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if tt.want == "" {
				if got != nil {
					t.Errorf("Sanitize(%q) = %q, want nil", tt.in, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Sanitize(%q) = nil, want %q", tt.in, tt.want)
			}
			if string(*got) != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, *got, tt.want)
			}
		})
	}
}

func TestSanitizeAlwaysValid(t *testing.T) {
	// Property: sanitize(s) is either None or a Slug accepted by From.
	inputs := []string{"Hello World", "1foo", "!!!", "___", "a.b.c", "CamelCase-Name"}
	for _, in := range inputs {
		s := Sanitize(in)
		if s == nil {
			continue
		}
		if _, err := From(s.String()); err != nil {
			t.Errorf("Sanitize(%q) produced %q which From rejects: %v", in, *s, err)
		}
	}
}

func TestSortSlugs(t *testing.T) {
	in := []Slug{"web", "api", "db", "cache"}
	got := SortSlugs(in)
	want := []Slug{"api", "cache", "db", "web"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortSlugs() = %v, want %v", got, want)
		}
	}
	// original slice untouched
	if in[0] != "web" {
		t.Errorf("SortSlugs mutated input: %v", in)
	}
}
