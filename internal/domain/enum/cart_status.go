package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CartStatus represents the lifecycle state of a cart
type CartStatus int

const (
	// CartStatusActive is the one cart per user that can still be amended
	CartStatusActive CartStatus = 0
	// CartStatusPaid means a paid invoice references this cart; its items
	// are permanently committed against ceilings and discounts
	CartStatusPaid CartStatus = 1
	// CartStatusReleased means the cart was refunded; its items are back
	// in the availability pool
	CartStatusReleased CartStatus = 2
)

func (s CartStatus) String() string {
	names := [...]string{"Active", "Paid", "Released"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Active"
	}
	return names[s]
}

func (s CartStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CartStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CartStatus(i)
		return nil
	}
	switch str {
	case "Active":
		*s = CartStatusActive
	case "Paid":
		*s = CartStatusPaid
	case "Released":
		*s = CartStatusReleased
	}
	return nil
}

func (s CartStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CartStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CartStatusActive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CartStatus(v)
	case int:
		*s = CartStatus(v)
	}
	return nil
}
