package gistemp

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/spf13/cast"
)

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

func widen[T number](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// toFloat64s converts a one-dimensional variable as returned by the NetCDF
// reader into float64 values.
func toFloat64s(v interface{}) ([]float64, error) {
	switch v := v.(type) {
	case []float64:
		return v, nil
	case []float32:
		return widen(v), nil
	case []int8:
		return widen(v), nil
	case []uint8:
		return widen(v), nil
	case []int16:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []int32:
		return widen(v), nil
	case []uint32:
		return widen(v), nil
	case []int64:
		return widen(v), nil
	case []uint64:
		return widen(v), nil
	}
	return nil, fmt.Errorf("unsupported coordinate type %T", v)
}

// attrFloat returns a numeric attribute. Attributes holding a single element
// array are unwrapped.
func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	val, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	if rv := reflect.ValueOf(val); rv.Kind() == reflect.Slice {
		if rv.Len() == 0 {
			return 0, false
		}
		val = rv.Index(0).Interface()
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		return 0, false
	}
	return f, true
}

func attrString(attrs api.AttributeMap, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	val, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return "", false
	}
	return s, true
}
