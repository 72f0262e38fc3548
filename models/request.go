package models

// IdentifierKind is the kind of record key a request carries.
type IdentifierKind string

const (
	IdentifierParcel    IdentifierKind = "parcel"
	IdentifierFolio     IdentifierKind = "folio"
	IdentifierAddress   IdentifierKind = "address"
	IdentifierOwnerName IdentifierKind = "ownerName"
)

// Valid reports whether k is one of the supported identifier kinds.
func (k IdentifierKind) Valid() bool {
	switch k {
	case IdentifierParcel, IdentifierFolio, IdentifierAddress, IdentifierOwnerName:
		return true
	}
	return false
}

// ScrapeRequest is the payload for POST /api/v1/scrape. Constructed once per
// attempt and never mutated.
type ScrapeRequest struct {
	// JurisdictionID selects the county-level data source. Required.
	JurisdictionID string `json:"jurisdiction_id" binding:"required"`

	// IdentifierKind is one of "parcel", "folio", "address", "ownerName".
	IdentifierKind IdentifierKind `json:"identifier_kind" binding:"required,oneof=parcel folio address ownerName"`

	// IdentifierValue is the raw record key as supplied by the caller;
	// per-jurisdiction transforms are applied by the engine.
	IdentifierValue string `json:"identifier_value" binding:"required"`
}
