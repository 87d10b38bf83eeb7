package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ConditionKind discriminates the enabling condition variants
type ConditionKind int

const (
	// ConditionKindProduct is met when the user holds one of the enabling
	// products in a paid or reserved cart
	ConditionKindProduct ConditionKind = 0
	// ConditionKindCategory is met when the user holds any product from
	// the enabling category
	ConditionKindCategory ConditionKind = 1
	// ConditionKindVoucher is met when the enabling voucher is in one of
	// the user's carts
	ConditionKindVoucher ConditionKind = 2
	// ConditionKindRole is met when the user carries the enabling role
	ConditionKindRole ConditionKind = 3
	// ConditionKindTimeOrStock is met within a date range and while a
	// stock limit has not been consumed
	ConditionKindTimeOrStock ConditionKind = 4
)

func (k ConditionKind) String() string {
	names := [...]string{"Product", "Category", "Voucher", "Role", "TimeOrStock"}
	if int(k) < 0 || int(k) >= len(names) {
		return "Product"
	}
	return names[k]
}

func (k ConditionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ConditionKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = ConditionKind(i)
		return nil
	}
	switch str {
	case "Product":
		*k = ConditionKindProduct
	case "Category":
		*k = ConditionKindCategory
	case "Voucher":
		*k = ConditionKindVoucher
	case "Role":
		*k = ConditionKindRole
	case "TimeOrStock":
		*k = ConditionKindTimeOrStock
	}
	return nil
}

func (k ConditionKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *ConditionKind) Scan(value interface{}) error {
	if value == nil {
		*k = ConditionKindProduct
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = ConditionKind(v)
	case int:
		*k = ConditionKind(v)
	}
	return nil
}
