package parser

import "testing"

func TestParseFullAddress(t *testing.T) {
	p := New()
	pa := p.Parse("Damstraat 10", "1011AB Amsterdam")

	if pa.Street.Value != "Damstraat" || !pa.Street.Present || pa.Street.Inferred {
		t.Errorf("street = %+v", pa.Street)
	}
	if pa.HouseNumber.Value != 10 || !pa.HouseNumber.Present {
		t.Errorf("house number = %+v", pa.HouseNumber)
	}
	if pa.PostalCode.Value != "1011AB" || !pa.PostalCode.Present {
		t.Errorf("postal code = %+v", pa.PostalCode)
	}
	if pa.City.Value != "Amsterdam" || !pa.City.Present {
		t.Errorf("city = %+v", pa.City)
	}
}

func TestParseStreetLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		street   string
		inferred bool
		number   int
		hasNum   bool
		addition string
	}{
		{"plain", "Damstraat 10", "Damstraat", false, 10, true, ""},
		{"letter addition", "Damstraat 10A", "Damstraat", false, 10, true, "A"},
		{"spaced addition", "Damstraat 10 A", "Damstraat", false, 10, true, "A"},
		{"roman addition", "Keizersgracht 100 II", "Keizersgracht", false, 100, true, "II"},
		{"multiword street", "Nieuwe Prinsengracht 7", "Nieuwe Prinsengracht", false, 7, true, ""},
		{"numbered street", "1e Helmersstraat 21", "1e Helmersstraat", false, 21, true, ""},
		{"no number", "Damstraat", "Damstraat", true, 0, false, ""},
		{"whitespace", "  Damstraat 10  ", "Damstraat", false, 10, true, ""},
	}
	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pa := p.Parse(tt.line, "")
			if pa.Street.Value != tt.street {
				t.Errorf("street = %q, want %q", pa.Street.Value, tt.street)
			}
			if pa.Street.Inferred != tt.inferred {
				t.Errorf("inferred = %v, want %v", pa.Street.Inferred, tt.inferred)
			}
			if pa.HouseNumber.Present != tt.hasNum || pa.HouseNumber.Value != tt.number {
				t.Errorf("house number = %+v, want %d present=%v", pa.HouseNumber, tt.number, tt.hasNum)
			}
			if pa.Addition.Value != tt.addition {
				t.Errorf("addition = %q, want %q", pa.Addition.Value, tt.addition)
			}
		})
	}
}

func TestParseCityLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		postcode string
		hasPC    bool
		city     string
		hasCity  bool
		inferred bool
	}{
		{"postcode and city", "1011AB Amsterdam", "1011AB", true, "Amsterdam", true, false},
		{"spaced postcode", "1011 AB Amsterdam", "1011AB", true, "Amsterdam", true, false},
		{"lowercase postcode", "1011ab Amsterdam", "1011AB", true, "Amsterdam", true, false},
		{"city first", "Amsterdam 1011AB", "1011AB", true, "Amsterdam", true, false},
		{"postcode only", "1011AB", "1011AB", true, "", false, false},
		{"city only", "Amsterdam", "", false, "Amsterdam", true, true},
		{"empty", "", "", false, "", false, false},
	}
	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pa := p.Parse("", tt.line)
			if pa.PostalCode.Present != tt.hasPC || pa.PostalCode.Value != tt.postcode {
				t.Errorf("postal code = %+v, want %q present=%v", pa.PostalCode, tt.postcode, tt.hasPC)
			}
			if pa.City.Present != tt.hasCity || pa.City.Value != tt.city {
				t.Errorf("city = %+v, want %q present=%v", pa.City, tt.city, tt.hasCity)
			}
			if pa.City.Inferred != tt.inferred {
				t.Errorf("city inferred = %v, want %v", pa.City.Inferred, tt.inferred)
			}
		})
	}
}

func TestParseNeverFails(t *testing.T) {
	p := New()
	inputs := [][2]string{
		{"", ""},
		{"!!!", "???"},
		{"12345", "67890"},
		{"Damstraat 10", ""},
		{"", "1011AB Amsterdam"},
	}
	for _, in := range inputs {
		if pa := p.Parse(in[0], in[1]); pa == nil {
			t.Errorf("Parse(%q, %q) returned nil", in[0], in[1])
		}
	}
}

func TestHasSearchableText(t *testing.T) {
	p := New()
	if !p.Parse("Damstraat 10", "").HasSearchableText() {
		t.Error("street-only input should be searchable")
	}
	if !p.Parse("", "Amsterdam").HasSearchableText() {
		t.Error("city-only input should be searchable")
	}
	if p.Parse("", "1011AB").HasSearchableText() {
		t.Error("postcode-only input should not be searchable")
	}
	if p.Parse("", "").HasSearchableText() {
		t.Error("empty input should not be searchable")
	}
}
