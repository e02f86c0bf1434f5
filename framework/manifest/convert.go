package manifest

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toNative converts a cty value to plain Go: string, int (for whole numbers
// that fit), float64, bool, []any or map[string]any. Null becomes nil.
func toNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact && int64(int(i)) == i {
				return int(i), nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, errors.Wrap(err, "could not convert number")
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := toNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := toNative(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "in attribute '%s'", key.AsString())
			}
			out[key.AsString()] = native
		}
		return out, nil
	}
	return nil, errors.Errorf("unsupported type %s", ty.FriendlyName())
}

// toArgs converts a factory's args attribute, which must be an object or
// map when present.
func toArgs(v cty.Value) (map[string]any, error) {
	native, err := toNative(v)
	if err != nil || native == nil {
		return map[string]any{}, err
	}
	args, ok := native.(map[string]any)
	if !ok {
		return nil, errors.Errorf("args must be an object, got %s", v.Type().FriendlyName())
	}
	return args, nil
}
