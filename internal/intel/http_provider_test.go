package intel

import (
	"testing"
	"time"
)

func TestParseRDAP(t *testing.T) {
	created := time.Now().AddDate(0, 0, -45).UTC().Format(time.RFC3339)
	body := []byte(`{
		"events": [
			{"eventAction": "expiration", "eventDate": "2027-01-01T00:00:00Z"},
			{"eventAction": "registration", "eventDate": "` + created + `"}
		],
		"entities": [
			{"roles": ["registrant"], "vcardArray": ["vcard", [["fn", {}, "text", "Jane Doe"]]]},
			{"roles": ["registrar"], "vcardArray": ["vcard", [["fn", {}, "text", "MarkMonitor Inc."]]]}
		]
	}`)

	rec, err := parseRDAP(body)
	if err != nil {
		t.Fatalf("parseRDAP: %v", err)
	}
	if rec.Registrar != "MarkMonitor Inc." {
		t.Errorf("registrar = %q, want MarkMonitor Inc.", rec.Registrar)
	}
	if rec.AgeDays < 44 || rec.AgeDays > 46 {
		t.Errorf("age = %d days, want ~45", rec.AgeDays)
	}
}

func TestParseRDAPMissingData(t *testing.T) {
	rec, err := parseRDAP([]byte(`{}`))
	if err != nil {
		t.Fatalf("parseRDAP: %v", err)
	}
	if rec.AgeDays != -1 {
		t.Errorf("age = %d, want -1 for unknown", rec.AgeDays)
	}
	if rec.Registrar != "" {
		t.Errorf("registrar = %q, want empty", rec.Registrar)
	}
}

func TestVCardFullName(t *testing.T) {
	tests := []struct {
		name  string
		vcard []any
		want  string
	}{
		{
			name: "well formed",
			vcard: []any{"vcard", []any{
				[]any{"version", map[string]any{}, "text", "4.0"},
				[]any{"fn", map[string]any{}, "text", "Gandi SAS"},
			}},
			want: "Gandi SAS",
		},
		{name: "empty", vcard: nil, want: ""},
		{name: "no fn", vcard: []any{"vcard", []any{[]any{"version", map[string]any{}, "text", "4.0"}}}, want: ""},
		{name: "truncated property", vcard: []any{"vcard", []any{[]any{"fn"}}}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vcardFullName(tt.vcard); got != tt.want {
				t.Errorf("vcardFullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnconfiguredProvidersReturnNil(t *testing.T) {
	p := NewHTTPProvider(Keys{}, nil)

	rep, err := p.IPReputation(t.Context(), "198.51.100.1")
	if rep != nil || err != nil {
		t.Errorf("IPReputation without key = (%v, %v), want (nil, nil)", rep, err)
	}
	det, err := p.DomainReport(t.Context(), "example.com")
	if det != nil || err != nil {
		t.Errorf("DomainReport without key = (%v, %v), want (nil, nil)", det, err)
	}
	geo, err := p.GeoLocate(t.Context(), "198.51.100.1")
	if geo != nil || err != nil {
		t.Errorf("GeoLocate without key = (%v, %v), want (nil, nil)", geo, err)
	}
}
