package category

import "encoding/json"

type Category struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Subcategories []*Subcategory `json:"subcategories,omitempty"`
}

type Subcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

func (c *Category) UnmarshalJSON(b []byte) error {
	type alias Category
	var aux struct {
		alias
		OID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Category(aux.alias)
	if c.ID == "" {
		c.ID = aux.OID
	}
	return nil
}

func (s *Subcategory) UnmarshalJSON(b []byte) error {
	type alias Subcategory
	var aux struct {
		alias
		OID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = Subcategory(aux.alias)
	if s.ID == "" {
		s.ID = aux.OID
	}
	return nil
}
