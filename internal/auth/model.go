package auth

import "encoding/json"

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// TokenPair is the login/register response. Customer is present when the
// backend includes it.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Customer     *Customer `json:"customer,omitempty"`
}

type Customer struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

// decodeCustomer accepts a bare customer or one nested under "customer"
// or "data".
func decodeCustomer(raw []byte) (Customer, error) {
	var wrapped struct {
		Customer *Customer `json:"customer"`
		Data     *Customer `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Customer{}, err
	}
	switch {
	case wrapped.Customer != nil:
		return *wrapped.Customer, nil
	case wrapped.Data != nil:
		return *wrapped.Data, nil
	}
	var c Customer
	err := json.Unmarshal(raw, &c)
	return c, err
}

// customerIDFromRaw accepts the id as a JSON string or number.
func customerIDFromRaw(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (c *Customer) UnmarshalJSON(b []byte) error {
	type alias Customer
	var aux struct {
		alias
		ID  json.RawMessage `json:"id"`
		OID json.RawMessage `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Customer(aux.alias)
	if len(aux.ID) > 0 {
		c.ID = customerIDFromRaw(aux.ID)
	} else if len(aux.OID) > 0 {
		c.ID = customerIDFromRaw(aux.OID)
	}
	return nil
}
