package models

import (
	"errors"
	"fmt"
)

type Customer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Zip     *int    `json:"zip,omitempty"`
	City    *string `json:"city,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
}

func (c Customer) ToRecord() Record {
	return Record{
		"id":      c.ID,
		"name":    c.Name,
		"address": optStringValue(c.Address),
		"zip":     optIntValue(c.Zip),
		"city":    optStringValue(c.City),
		"phone":   optStringValue(c.Phone),
		"email":   optStringValue(c.Email),
	}
}

func CustomerFromRecord(r Record) (Customer, error) {
	c := Customer{
		ID:      r.String("id"),
		Name:    r.String("name"),
		Address: r.OptString("address"),
		City:    r.OptString("city"),
		Phone:   r.OptString("phone"),
		Email:   r.OptString("email"),
	}
	if c.Name == "" {
		return Customer{}, errors.New("customer: name is required")
	}
	var err error
	if c.Zip, err = r.OptInt("zip"); err != nil {
		return Customer{}, fmt.Errorf("customer: %w", err)
	}
	return c, nil
}
