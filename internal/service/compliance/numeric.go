package compliance

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// toDecimal coerces a loosely-typed context value into a decimal for
// monetary comparison. Context data usually arrives via encoding/json, so
// float64 is the common case.
func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("non-numeric value %q", v)
		}
		return dec, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("non-numeric value of type %T", value)
	}
}

// toFloat coerces a loosely-typed value into a float64 for threshold
// comparison in documentation conditions
func toFloat(value any) (float64, error) {
	dec, err := toDecimal(value)
	if err != nil {
		return 0, err
	}
	f, _ := dec.Float64()
	return f, nil
}
