package requests

// AddressLines is the two-line postal form: "<street> <number>" and
// "<postalCode> <city>". Both lines are optional at the transport level;
// the resolver decides whether the combination is searchable.
type AddressLines struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// ResolveAddressRequest resolves a single address.
type ResolveAddressRequest struct {
	AddressLines
	Options ResolveOptions `json:"options,omitempty"`
}

// ResolveOptions tunes a single resolution.
type ResolveOptions struct {
	UseCache   bool    `json:"use_cache,omitempty"`
	MaxResults int     `json:"max_results,omitempty"`
	MinScore   float64 `json:"min_score,omitempty"`
}

// CorrectNameRequest asks for spelling suggestions for a street or city.
type CorrectNameRequest struct {
	Text       string `json:"text" binding:"required"`
	Field      string `json:"field,omitempty" binding:"omitempty,oneof=street city"`
	PostalCode string `json:"postal_code,omitempty"`
	CityHint   string `json:"city,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// ValidateAddressRequest checks an address without fuzzy recovery.
type ValidateAddressRequest struct {
	AddressLines
}

// BatchResolveRequest resolves a list of addresses as a background job.
type BatchResolveRequest struct {
	Addresses []AddressLines `json:"addresses" binding:"required,min=1,max=20000"`
	Options   ResolveOptions `json:"options,omitempty"`
}
