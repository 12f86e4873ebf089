package metrics

import (
	"math"
	"reflect"
	"strings"

	"github.com/rotisserie/eris"
)

// CheckFinite reports the first float64 (or *float64) field of a snapshot
// struct that is NaN or infinite, named by its JSON key.
func CheckFinite(snapshot any) error {
	v := reflect.Indirect(reflect.ValueOf(snapshot))
	if v.Kind() != reflect.Struct {
		return eris.Errorf("metrics: cannot check %T", snapshot)
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.Pointer {
			if f.IsNil() {
				continue
			}
			f = f.Elem()
		}
		if f.Kind() != reflect.Float64 {
			continue
		}
		if x := f.Float(); math.IsNaN(x) || math.IsInf(x, 0) {
			return eris.Errorf("metric %s is not finite", fieldName(t.Field(i)))
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}
