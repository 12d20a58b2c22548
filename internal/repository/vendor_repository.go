package repository

import (
	"database/sql"
	"fmt"

	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

// VendorRepository handles database operations for vendors
type VendorRepository struct {
	db *sql.DB
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Ensure inserts a vendor by display name if it does not exist and returns
// its surrogate key. Re-running against the same store never duplicates a
// vendor row.
func (r *VendorRepository) Ensure(name string) (int64, error) {
	if _, err := r.db.Exec("INSERT OR IGNORE INTO Vendors (vendor_name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("failed to insert vendor %q: %w", name, err)
	}

	var id int64
	err := r.db.QueryRow("SELECT vendor_id FROM Vendors WHERE vendor_name = ?", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve vendor %q: %w", name, err)
	}
	return id, nil
}

// GetAll retrieves all vendors ordered by surrogate key.
func (r *VendorRepository) GetAll() ([]models.Vendor, error) {
	rows, err := r.db.Query("SELECT vendor_id, vendor_name FROM Vendors ORDER BY vendor_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}
