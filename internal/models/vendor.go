package models

import "fmt"

// Vendor represents an operator row in the Vendors table. The surrogate ID is
// auto-assigned by the database; the display name is the stable identity.
type Vendor struct {
	ID   int64  `json:"vendor_id" db:"vendor_id"`
	Name string `json:"vendor_name" db:"vendor_name"`
}

// VendorName builds the display name used for the raw numeric vendor id.
// Vendor upserts are idempotent on this name.
func VendorName(rawID int64) string {
	return fmt.Sprintf("Vendor %d", rawID)
}
