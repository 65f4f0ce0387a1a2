package models

import "time"

// PaymentCategory tags templates and payments, e.g. "Housing".
type PaymentCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewPaymentCategory(name, color string, description *string) PaymentCategory {
	ts := now()
	return PaymentCategory{
		ID:          newID(),
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func (c PaymentCategory) EntityID() string { return c.ID }

func (c PaymentCategory) RequiredFields() []string {
	return []string{"id", "name", "color", "createdAt", "updatedAt"}
}

func (c PaymentCategory) Validate() error {
	return firstError(
		requireID("payment category", "id", c.ID),
		requireTime("payment category", "createdAt", c.CreatedAt),
		requireTime("payment category", "updatedAt", c.UpdatedAt),
	)
}
