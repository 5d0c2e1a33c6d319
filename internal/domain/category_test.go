package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple name",
			input: "Yogurt",
			want:  "yogurt",
		},
		{
			name:  "spaces become hyphens",
			input: "Butter & Margarine",
			want:  "butter-margarine",
		},
		{
			name:  "accents are folded",
			input: "Sémola con Leche",
			want:  "semola-con-leche",
		},
		{
			name:  "spanish enye",
			input: "Año Nuevo",
			want:  "ano-nuevo",
		},
		{
			name:  "punctuation collapses to single hyphen",
			input: "Ice  Cream -- Premium!",
			want:  "ice-cream-premium",
		},
		{
			name:  "leading and trailing separators dropped",
			input: "  --Dairy--  ",
			want:  "dairy",
		},
		{
			name:  "digits survive",
			input: "Leche 1L",
			want:  "leche-1l",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.input)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProperty_SlugifyIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("slugifying a slug changes nothing", prop.ForAll(
		func(name string) bool {
			slug := Slugify(name)
			return Slugify(slug) == slug
		},
		gen.RegexMatch(`[A-Za-zÁÉÍÓÚáéíóúñÑ0-9 &.,!-]{1,60}`),
	))

	properties.Property("slugs contain only lowercase alphanumerics and hyphens", prop.ForAll(
		func(name string) bool {
			for _, r := range Slugify(name) {
				if !(r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
					return false
				}
			}
			return true
		},
		gen.RegexMatch(`[A-Za-zÁÉÍÓÚáéíóúñÑ0-9 &.,!-]{1,60}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
