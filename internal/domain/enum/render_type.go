package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RenderType hints how a category's products should be presented on the
// registration form
type RenderType int

const (
	// RenderTypeRadio presents products as radio buttons; at most one can
	// be chosen, which suits categories with a per-user limit of 1
	RenderTypeRadio RenderType = 0
	// RenderTypeQuantity presents each product with a quantity box
	RenderTypeQuantity RenderType = 1
)

func (t RenderType) String() string {
	names := [...]string{"Radio", "Quantity"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Radio"
	}
	return names[t]
}

func (t RenderType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *RenderType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = RenderType(i)
		return nil
	}
	switch str {
	case "Radio":
		*t = RenderTypeRadio
	case "Quantity":
		*t = RenderTypeQuantity
	}
	return nil
}

func (t RenderType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *RenderType) Scan(value interface{}) error {
	if value == nil {
		*t = RenderTypeRadio
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = RenderType(v)
	case int:
		*t = RenderType(v)
	}
	return nil
}
