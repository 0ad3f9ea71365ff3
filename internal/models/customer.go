package models

import "database/sql"

// Customer represents a row of the customers table.
type Customer struct {
	CustomerID  string         `db:"customer_id"`
	Name        string         `db:"name"`
	Email       string         `db:"email"`
	PhoneNumber string         `db:"phone_number"`
	Address     sql.NullString `db:"address"`
	IsDeleted   bool           `db:"is_deleted"`
	AuditFields
}
