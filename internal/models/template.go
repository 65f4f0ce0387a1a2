package models

// PaymentTemplate is the blueprint of a recurring bill. The website fields
// keep the login of the biller's portal; WebsitePassword is sealed at rest
// when a credentials passphrase is configured.
type PaymentTemplate struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	DueDateDay      *int    `json:"dueDateDay,omitempty"`
	Value           float64 `json:"value"`
	Website         *string `json:"website,omitempty"`
	WebsiteUsername *string `json:"websiteUsername,omitempty"`
	WebsitePassword *string `json:"websitePassword,omitempty"`
	OwnerID         string  `json:"ownerId"`
	CategoryID      string  `json:"categoryId"`
}

type CreatePaymentTemplateInput struct {
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	DueDateDay      *int    `json:"dueDateDay,omitempty"`
	Value           float64 `json:"value"`
	Website         *string `json:"website,omitempty"`
	WebsiteUsername *string `json:"websiteUsername,omitempty"`
	WebsitePassword *string `json:"websitePassword,omitempty"`
	OwnerID         string  `json:"ownerId"`
	CategoryID      string  `json:"categoryId"`
}

func NewPaymentTemplate(in CreatePaymentTemplateInput) PaymentTemplate {
	return PaymentTemplate{
		ID:              newID(),
		Name:            in.Name,
		Description:     in.Description,
		DueDateDay:      in.DueDateDay,
		Value:           in.Value,
		Website:         in.Website,
		WebsiteUsername: in.WebsiteUsername,
		WebsitePassword: in.WebsitePassword,
		OwnerID:         in.OwnerID,
		CategoryID:      in.CategoryID,
	}
}

func (t PaymentTemplate) EntityID() string { return t.ID }

func (t PaymentTemplate) RequiredFields() []string {
	return []string{"id", "name", "value", "ownerId", "categoryId"}
}

func (t PaymentTemplate) Validate() error {
	return firstError(
		requireID("payment template", "id", t.ID),
		requireID("payment template", "ownerId", t.OwnerID),
		requireID("payment template", "categoryId", t.CategoryID),
		checkDueDay("payment template", t.DueDateDay),
	)
}
