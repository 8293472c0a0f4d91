package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/specialistvlad/flowgridgo/internal/fghcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	ctyValueType = reflect.TypeFor[cty.Value]()
	ctyTypeType  = reflect.TypeFor[cty.Type]()
)

// Decode copies node attributes into the exported fields of the struct
// target points to. Fields opt in with a `cty:"name"` tag; `cty:"name,required"`
// makes the attribute mandatory. Fields keep their current value when the
// attribute is absent, so callers pre-fill defaults.
//
// Field types map as follows: cty.Value receives the attribute as is,
// cty.Type parses a type name such as "number", and any other type is
// converted through its gocty implied type.
func Decode(attrs map[string]cty.Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("registry.Decode: target must be a pointer to a struct, got %T", target))
	}
	rv = rv.Elem()
	rt := rv.Type()

	var errs []error
	known := make(map[string]bool)
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("cty")
		parts := strings.Split(tag, ",")
		name := parts[0]
		if name == "" || name == "-" {
			continue
		}
		known[name] = true

		v, ok := attrs[name]
		if !ok {
			if slices.Contains(parts[1:], "required") {
				errs = append(errs, fmt.Errorf("attribute %q is required", name))
			}
			continue
		}
		if err := decodeField(v, rv.Field(i)); err != nil {
			errs = append(errs, fmt.Errorf("attribute %q: %w", name, err))
		}
	}

	var unknown []string
	for name := range attrs {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	for _, name := range unknown {
		errs = append(errs, fmt.Errorf("unsupported attribute %q", name))
	}
	return errors.Join(errs...)
}

func decodeField(v cty.Value, dst reflect.Value) error {
	switch dst.Type() {
	case ctyValueType:
		dst.Set(reflect.ValueOf(v))
		return nil
	case ctyTypeType:
		s, err := convert.Convert(v, cty.String)
		if err != nil || s.IsNull() {
			return fmt.Errorf("a type name is required")
		}
		t, err := fghcl.ParseType(s.AsString())
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	implied, err := gocty.ImpliedType(reflect.Zero(dst.Type()).Interface())
	if err != nil {
		return fmt.Errorf("could not imply cty type from Go type %s: %w", dst.Type(), err)
	}
	conv, err := convert.Convert(v, implied)
	if err != nil {
		return fmt.Errorf("expected %s: %w", implied.FriendlyName(), err)
	}
	if conv.IsNull() {
		return nil
	}
	return gocty.FromCtyValue(conv, dst.Addr().Interface())
}
