package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// MergeFromEnv overrides fields of cfg from environment variables named by
// their `env` struct tag. Nested structs are walked; unset variables leave
// the field alone, while a variable set to the empty string clears it.
func MergeFromEnv(cfg interface{}) error {
	return mergeFromLookup(cfg, os.LookupEnv)
}

func mergeFromLookup(cfg interface{}, lookup func(string) (string, bool)) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("config: MergeFromEnv needs a non-nil pointer, got %T", cfg)
	}
	return walkEnv(v.Elem(), lookup)
}

func walkEnv(v reflect.Value, lookup func(string) (string, bool)) error {
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := walkEnv(field, lookup); err != nil {
				return err
			}
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		value, ok := lookup(name)
		if !ok {
			continue
		}
		if err := setField(field, value); err != nil {
			return fmt.Errorf("invalid value for %s (%s): %w", t.Field(i).Name, name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		if value == "" {
			field.SetInt(0)
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		// Valgrind options may themselves contain commas, so lists are
		// whitespace separated.
		field.Set(reflect.ValueOf(strings.Fields(value)))

	default:
		return fmt.Errorf("unsupported type %s", field.Kind())
	}
	return nil
}
