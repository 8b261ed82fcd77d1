package model

import "time"

// ContactInfo is the singleton record holding the site's contact details.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// DefaultContact is shown until a contact record has been saved.
var DefaultContact = ContactInfo{
	Phone:   "(11) 99999-9999",
	Email:   "comercial@agrosoja.com.br",
	Address: "Rodovia BR 163, Km 500 - Sorriso, MT",
}

// WithDefaults fills empty fields from DefaultContact.
func (c ContactInfo) WithDefaults() ContactInfo {
	if c.Phone == "" {
		c.Phone = DefaultContact.Phone
	}
	if c.Email == "" {
		c.Email = DefaultContact.Email
	}
	if c.Address == "" {
		c.Address = DefaultContact.Address
	}
	return c
}

// Message is a visitor message sent through the landing page contact form.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
