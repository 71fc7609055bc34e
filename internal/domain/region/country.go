package region

import "github.com/okian/cinerank/internal/domain/model"

// NameLookup resolves a region code to a country name.
type NameLookup interface {
	Lookup(code string) (string, bool)
}

// CountryName maps a region code to its country name. Empty, null, sentinel
// and unknown codes map to model.International.
func CountryName(names NameLookup, code string) string {
	if code == "" || code == model.NullMarker || code == model.International || names == nil {
		return model.International
	}
	if name, ok := names.Lookup(code); ok && name != "" {
		return name
	}
	return model.International
}
