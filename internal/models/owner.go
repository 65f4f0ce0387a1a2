package models

// Owner is a person or household member that holds accounts and is billed
// by templates and payments.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewOwner(name string) Owner {
	return Owner{ID: newID(), Name: name}
}

func (o Owner) EntityID() string { return o.ID }

func (o Owner) RequiredFields() []string { return []string{"id", "name"} }

func (o Owner) Validate() error {
	return requireID("owner", "id", o.ID)
}
