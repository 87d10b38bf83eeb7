package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// DiscountKind discriminates the discount variants
type DiscountKind int

const (
	// DiscountKindTimeOrStock is generally available within a date range
	// and usage limit, e.g. early bird pricing
	DiscountKindTimeOrStock DiscountKind = 0
	// DiscountKindVoucher is enabled when a voucher code is in the cart
	DiscountKindVoucher DiscountKind = 1
	// DiscountKindRole is enabled for users with a given role, e.g.
	// volunteer ticket pricing
	DiscountKindRole DiscountKind = 2
	// DiscountKindIncludedProduct is enabled by the purchase of another
	// product, e.g. a ticket that includes a free t-shirt
	DiscountKindIncludedProduct DiscountKind = 3
)

func (k DiscountKind) String() string {
	names := [...]string{"TimeOrStock", "Voucher", "Role", "IncludedProduct"}
	if int(k) < 0 || int(k) >= len(names) {
		return "TimeOrStock"
	}
	return names[k]
}

func (k DiscountKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *DiscountKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = DiscountKind(i)
		return nil
	}
	switch str {
	case "TimeOrStock":
		*k = DiscountKindTimeOrStock
	case "Voucher":
		*k = DiscountKindVoucher
	case "Role":
		*k = DiscountKindRole
	case "IncludedProduct":
		*k = DiscountKindIncludedProduct
	}
	return nil
}

func (k DiscountKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *DiscountKind) Scan(value interface{}) error {
	if value == nil {
		*k = DiscountKindTimeOrStock
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = DiscountKind(v)
	case int:
		*k = DiscountKind(v)
	}
	return nil
}
