package domain

import "time"

type EnquiryType string

const (
	EnquiryCorporate EnquiryType = "corporate"
	EnquiryContact   EnquiryType = "contact"
)

// Enquiry is a corporate-order request or a general contact message.
type Enquiry struct {
	ID           string      `json:"id"`
	Type         EnquiryType `json:"type"`
	Name         string      `json:"name"`
	Company      string      `json:"company,omitempty"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	Subject      string      `json:"subject,omitempty"`
	ProductType  string      `json:"product_type,omitempty"`
	Quantity     int         `json:"quantity,omitempty"`
	Budget       string      `json:"budget,omitempty"`
	DeliveryDate string      `json:"delivery_date,omitempty"`
	Message      string      `json:"message"`
	CreatedAt    time.Time   `json:"created_at"`
}
