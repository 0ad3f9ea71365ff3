package dto

import (
	"time"

	"github.com/sagabat/transaction-manage/internal/core/domain"
)

// CustomerRequest is used for both creating and updating a customer.
type CustomerRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required,len=11,numeric"`
	Address     string `json:"address"`
}

// CustomerResponse defines the data returned for a customer.
type CustomerResponse struct {
	CustomerID    string    `json:"customerId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phoneNumber"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToCustomerResponse converts a domain.Customer to its DTO.
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:    c.CustomerID,
		Name:          c.Name,
		Email:         c.Email,
		PhoneNumber:   c.PhoneNumber,
		Address:       c.Address,
		CreatedAt:     c.CreatedAt,
		LastUpdatedAt: c.LastUpdatedAt,
	}
}
