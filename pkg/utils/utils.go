package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// MapToStruct populates a struct with values from a map using json tags.
// target must be a pointer to a struct. Keys are matched case-insensitively,
// because viper lowercases every key it reads.
func MapToStruct(data map[string]interface{}, target interface{}) error {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr {
		return errors.New("target must be a pointer to a struct")
	}

	targetValue = targetValue.Elem()
	if targetValue.Kind() != reflect.Struct {
		return errors.New("target must point to a struct")
	}

	lowered := make(map[string]interface{}, len(data))
	for k, v := range data {
		lowered[strings.ToLower(k)] = v
	}

	targetType := targetValue.Type()
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		fieldValue := targetValue.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}

		// Remove json options like omitempty
		if idx := strings.Index(tag, ","); idx != -1 {
			tag = tag[:idx]
		}

		value, ok := lowered[strings.ToLower(tag)]
		if !ok {
			continue
		}

		if err := setField(fieldValue, value); err != nil {
			return fmt.Errorf("error setting field %s: %w", field.Name, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}

	if field.Type() == durationType {
		return setDuration(field, value)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprintf("%v", value))
		return nil
	case reflect.Bool:
		return setBool(field, value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloat(field, value)
	case reflect.Map:
		return setMap(field, value)
	}

	return fmt.Errorf("unsupported type: %s", field.Kind())
}

func setBool(field reflect.Value, value interface{}) error {
	switch v := value.(type) {
	case bool:
		field.SetBool(v)
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("cannot convert %T to bool", value)
	}
	return nil
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func setInt(field reflect.Value, value interface{}) error {
	n, err := toInt64(value)
	if err != nil {
		return err
	}
	if field.OverflowInt(n) {
		return fmt.Errorf("value %d overflows %s", n, field.Type())
	}
	field.SetInt(n)
	return nil
}

// setDuration accepts duration strings ("30s") or plain numbers of seconds
func setDuration(field reflect.Value, value interface{}) error {
	if s, ok := value.(string); ok {
		d, err := time.ParseDuration(s)
		if err == nil {
			field.SetInt(int64(d))
			return nil
		}
	}
	n, err := toInt64(value)
	if err != nil {
		return fmt.Errorf("cannot convert %v to duration", value)
	}
	field.SetInt(int64(time.Duration(n) * time.Second))
	return nil
}

func setFloat(field reflect.Value, value interface{}) error {
	var floatValue float64

	switch v := value.(type) {
	case float64:
		floatValue = v
	case int:
		floatValue = float64(v)
	case int64:
		floatValue = float64(v)
	case string:
		var err error
		floatValue, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot convert %T to float", value)
	}

	field.SetFloat(floatValue)
	return nil
}

func setMap(field reflect.Value, value interface{}) error {
	mapValue, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("cannot set map field with %T", value)
	}

	mapType := field.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("only string keys are supported for maps")
	}

	resultMap := reflect.MakeMapWithSize(mapType, len(mapValue))
	for k, v := range mapValue {
		elemValue := reflect.New(mapType.Elem()).Elem()
		if err := setField(elemValue, v); err != nil {
			return err
		}
		resultMap.SetMapIndex(reflect.ValueOf(k), elemValue)
	}

	field.Set(resultMap)
	return nil
}
