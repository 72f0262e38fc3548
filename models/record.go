package models

import "time"

// MailingAddress is an optional structured breakdown of the mailing address.
// Most sites only expose a raw block of lines; strategies that can split the
// components populate this alongside the raw string.
type MailingAddress struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// PropertyRecord is the result of a fully successful extraction. It is never
// partially populated: the engine only emits a record with at least one owner
// name and a non-empty mailing address.
type PropertyRecord struct {
	// OwnerNames preserves document order.
	OwnerNames []string `json:"owner_names"`

	// MailingAddress is the merged raw address block, line-separated.
	MailingAddress string `json:"mailing_address"`

	// Address is the structured breakdown when the site exposes one.
	Address *MailingAddress `json:"address,omitempty"`

	JurisdictionID  string         `json:"jurisdiction_id"`
	IdentifierValue string         `json:"identifier_value"`
	IdentifierKind  IdentifierKind `json:"identifier_kind"`
	ScrapedAt       time.Time      `json:"scraped_at"`
}
