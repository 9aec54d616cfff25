package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("no zero fields", func(t *testing.T) {
		for _, field := range zeroFields(reflect.ValueOf(*Default()), "Config", false) {
			assert.Fail(t, "zero-value field", field)
		}
	})

	t.Run("buffer limits", func(t *testing.T) {
		cfg := Default()
		require.Equal(t, 1024, cfg.Buffer.Initial)
		require.GreaterOrEqual(t, cfg.Buffer.Maximal, cfg.Buffer.Initial)
		require.False(t, cfg.Body.ImplicitZeroLength)
	})

	t.Run("independent instances", func(t *testing.T) {
		a, b := Default(), Default()
		a.Buffer.Initial = 1
		require.Equal(t, 1024, b.Buffer.Initial)
	})
}

// zeroFields walks the struct recursively and reports the fields holding zero values, except
// those tagged as nullable.
func zeroFields(value reflect.Value, name string, nullable bool) (fields []string) {
	if value.Kind() == reflect.Struct {
		for i := range value.NumField() {
			field := value.Type().Field(i)
			fields = append(fields, zeroFields(
				value.Field(i), name+"."+field.Name, field.Tag.Get("test") == "nullable",
			)...)
		}

		return fields
	}

	if value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}
