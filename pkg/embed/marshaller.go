package funcalc

import (
	"fmt"
	"reflect"

	"github.com/funvibe/funcalc/internal/value"
)

// Marshaller handles conversion between Go and calculator values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

var valueType = reflect.TypeOf((*value.Value)(nil)).Elem()

// ToValue converts a Go value to a calculator value.
func (m *Marshaller) ToValue(val interface{}) (value.Value, error) {
	if val == nil {
		return nil, nil
	}
	if v, ok := val.(value.Value); ok {
		return v, nil
	}

	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Int(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.Real(v.Float()), nil
	case reflect.Bool:
		return value.Bool(v.Bool()), nil
	case reflect.String:
		return value.String(v.String()), nil
	case reflect.Slice, reflect.Array:
		return m.sliceToArray(v)
	default:
		// Pointers, maps, structs and functions travel as opaque handles.
		return &value.Object{TypeName: v.Type().String(), Handle: val}, nil
	}
}

func (m *Marshaller) sliceToArray(v reflect.Value) (*value.Array, error) {
	elems := make([]value.Value, v.Len())
	for i := 0; i < v.Len(); i++ {
		e, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	return value.NewArray(elems...), nil
}

// FromValue converts a calculator value to a Go value. targetType is
// optional; if provided, the result is converted to that type.
func (m *Marshaller) FromValue(v value.Value, targetType reflect.Type) (interface{}, error) {
	v = value.Resolve(v)
	if v == nil {
		return nil, nil
	}
	if targetType != nil && targetType == valueType {
		return v, nil
	}

	var out interface{}
	switch x := v.(type) {
	case value.Int:
		out = int(x)
		if targetType != nil && targetType.Kind() == reflect.Int64 {
			out = int64(x)
		}
	case value.Real:
		out = float64(x)
	case value.Bool:
		out = bool(x)
	case value.String:
		out = string(x)
	case value.FlatVector:
		out = []float64{x.X, x.Y}
	case value.SpaceVector:
		out = []float64{x.X, x.Y, x.Z}
	case value.Collection:
		return m.collectionToSlice(x, targetType)
	case *value.Object:
		out = x.Handle
	default:
		return nil, fmt.Errorf("unsupported type for conversion: %s", value.TypeName(v))
	}
	return convert(out, targetType)
}

func (m *Marshaller) collectionToSlice(c value.Collection, targetType reflect.Type) (interface{}, error) {
	elemType := reflect.TypeOf((*interface{})(nil)).Elem()
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, c.Len())
	for _, el := range c.Elements() {
		val, err := m.FromValue(el, elemType)
		if err != nil {
			return nil, err
		}
		if val == nil {
			slice = reflect.Append(slice, reflect.Zero(elemType))
			continue
		}
		slice = reflect.Append(slice, reflect.ValueOf(val))
	}
	return slice.Interface(), nil
}

// convert coerces a marshalled value to targetType when the two differ.
func convert(val interface{}, targetType reflect.Type) (interface{}, error) {
	if targetType == nil || targetType.Kind() == reflect.Interface {
		return val, nil
	}
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(targetType):
		return val, nil
	case rv.Type().ConvertibleTo(targetType) && rv.Kind() != reflect.String && targetType.Kind() != reflect.String:
		return rv.Convert(targetType).Interface(), nil
	}
	return nil, fmt.Errorf("cannot convert %s to %s", rv.Type(), targetType)
}
