package domain

// Customer owns accounts. Only its existence matters to the transaction core.
type Customer struct {
	CustomerID  string `json:"customerId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	IsDeleted   bool   `json:"deleted"`
	AuditFields
}
