// FILE: lixenwraith/confz/decode.go
package confz

import (
	"errors"
	"fmt"
	"maps"
	"net"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// DefaultTagName is the struct tag naming configuration keys.
const DefaultTagName = "config"

// Decode decodes raw into target, a non-nil pointer, and validates the result
// against its `validate` struct tags. Keys are matched against the tagName
// struct tag, DefaultTagName if empty, falling back to case-insensitive field names.
// Values already held by a struct or map target act as defaults: raw is merged
// over them key by key, like one more source.
// Failures are returned as *ValidationError.
func Decode(raw map[string]any, target any, tagName string) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be non-nil pointer, got %T", target)
	}
	if tagName == "" {
		tagName = DefaultTagName
	}

	elem := rv.Elem()
	if !layerable(elem) {
		if err := decodeInto(raw, target, tagName); err != nil {
			return err
		}
		return validateStruct(target, tagName)
	}

	// Decode into a fresh value so a failure leaves target untouched
	fresh := reflect.New(elem.Type())
	if err := decodeInto(layered(raw, elem, tagName), fresh.Interface(), tagName); err != nil {
		return err
	}
	elem.Set(fresh.Elem())
	return validateStruct(target, tagName)
}

// Validate decodes and validates raw into a new T.
func Validate[T any](raw map[string]any) (*T, error) {
	return validateInto[T](raw, nil, DefaultTagName, "", nil)
}

// validateInto decodes raw merged over base into a new T, then runs tag
// validation and the additional validator funcs in order. The result shares
// no memory with base.
func validateInto[T any](raw map[string]any, base *T, tagName, class string, funcs []func(*T) error) (*T, error) {
	target := new(T)
	if base != nil && layerable(reflect.ValueOf(base).Elem()) {
		raw = layered(raw, reflect.ValueOf(base).Elem(), tagName)
	}

	if err := decodeInto(raw, target, tagName); err != nil {
		return nil, withClass(err, class)
	}
	if err := validateStruct(target, tagName); err != nil {
		return nil, withClass(err, class)
	}

	for _, fn := range funcs {
		if err := fn(target); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, withClass(ve, class)
			}
			return nil, &ValidationError{
				Class:  class,
				Fields: []FieldError{{Message: err.Error()}},
				Err:    err,
			}
		}
	}

	return target, nil
}

func withClass(err error, class string) error {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Class == "" {
		ve.Class = class
	}
	return err
}

// decodeInto is the single mapstructure entry point
func decodeInto(raw map[string]any, target any, tagName string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       getDecodeHook(),
		// Maps, slices and pointers are always freshly allocated
		ZeroFields: true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if raw == nil {
		raw = make(map[string]any)
	}
	if err := decoder.Decode(raw); err != nil {
		return &ValidationError{Fields: decodeFieldErrors(err), Err: err}
	}
	return nil
}

// decodeFieldErrors flattens the joined errors reported by the decoder
func decodeFieldErrors(err error) []FieldError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var fields []FieldError
		for _, inner := range joined.Unwrap() {
			fields = append(fields, decodeFieldErrors(inner)...)
		}
		return fields
	}

	field := FieldError{Message: err.Error()}

	var decodeErr *mapstructure.DecodeError
	if errors.As(err, &decodeErr) {
		field.Path = decodeErr.Name()
		field.Message = decodeErr.Unwrap().Error()
	}

	var parseErr *mapstructure.ParseError
	var convErr *mapstructure.UnconvertibleTypeError
	switch {
	case errors.As(err, &parseErr):
		field.Expected = expectedType(parseErr.Expected)
		field.Value = parseErr.Value
	case errors.As(err, &convErr):
		field.Expected = expectedType(convErr.Expected)
		field.Value = convErr.Value
	}

	return []FieldError{field}
}

func expectedType(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	return v.Type().String()
}

// layerable reports whether v has keys that raw values can be merged into
func layerable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return v.Type().Key().Kind() == reflect.String
	default:
		return false
	}
}

// layered returns raw merged over the raw form of base
func layered(raw map[string]any, base reflect.Value, tagName string) map[string]any {
	merged, ok := toRaw(base, tagName)
	mergedMap, isMap := merged.(map[string]any)
	if !ok || !isMap {
		mergedMap = make(map[string]any)
	}
	overlay(mergedMap, raw)
	return mergedMap
}

// overlay merges update into base. Nested maps merge key by key, anything
// else replaces the base value and type mismatches are left to the decoder.
// A key without an exact match replaces a key differing only in case, as
// field lookup is case-insensitive.
func overlay(base, update map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(update)) {
		if _, exists := base[key]; !exists {
			for existing := range base {
				if strings.EqualFold(existing, key) {
					base[key] = base[existing]
					delete(base, existing)
					break
				}
			}
		}

		value := update[key]
		baseMap, baseIsMap := base[key].(map[string]any)
		valueMap, valueIsMap := value.(map[string]any)
		if baseIsMap && valueIsMap {
			overlay(baseMap, valueMap)
			continue
		}
		base[key] = cloneValue(value)
	}
}

// leafStructs are decoded as a whole by the decode hooks
var leafStructs = map[reflect.Type]bool{
	reflect.TypeFor[time.Time](): true,
	reflect.TypeFor[url.URL]():   true,
	reflect.TypeFor[net.IPNet](): true,
}

// toRaw converts a Go value into the form loaders produce: structs and
// string-keyed maps become map[string]any, slices become []any. The result
// shares no maps, slices or pointers with v. It reports false for nil values.
func toRaw(v reflect.Value, tagName string) (any, bool) {
	switch v.Kind() {
	case reflect.Invalid:
		return nil, false

	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil, false
		}
		return toRaw(v.Elem(), tagName)

	case reflect.Struct:
		if n, ok := v.Interface().(net.IPNet); ok {
			return net.IPNet{IP: slices.Clone(n.IP), Mask: slices.Clone(n.Mask)}, true
		}
		if leafStructs[v.Type()] || !hasExportedFields(v.Type()) {
			return v.Interface(), true
		}
		out := make(map[string]any)
		structToRaw(out, v, tagName)
		return out, true

	case reflect.Map:
		if v.IsNil() {
			return nil, false
		}
		if v.Type().Key().Kind() != reflect.String {
			cp := reflect.MakeMapWithSize(v.Type(), v.Len())
			iter := v.MapRange()
			for iter.Next() {
				cp.SetMapIndex(iter.Key(), iter.Value())
			}
			return cp.Interface(), true
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if item, ok := toRaw(iter.Value(), tagName); ok {
				out[iter.Key().String()] = item
			}
		}
		return out, true

	case reflect.Slice:
		if v.IsNil() {
			return nil, false
		}
		// Byte slices such as net.IP keep their type
		if v.Type().Elem().Kind() == reflect.Uint8 {
			cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
			reflect.Copy(cp, v)
			return cp.Interface(), true
		}
		out := make([]any, v.Len())
		for i := range v.Len() {
			out[i], _ = toRaw(v.Index(i), tagName)
		}
		return out, true

	default:
		return v.Interface(), true
	}
}

func structToRaw(out map[string]any, v reflect.Value, tagName string) {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get(tagName), ",")
		if name == "-" {
			continue
		}

		fv := v.Field(i)
		if slices.Contains(strings.Split(opts, ","), "squash") {
			inner := reflect.Indirect(fv)
			if inner.Kind() == reflect.Struct {
				structToRaw(out, inner, tagName)
				continue
			}
		}

		if name == "" {
			name = field.Name
		}
		if item, ok := toRaw(fv, tagName); ok {
			out[name] = item
		}
	}
}

func hasExportedFields(t reflect.Type) bool {
	for i := range t.NumField() {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

var validators sync.Map // tag name -> *validator.Validate

func validatorFor(tagName string) *validator.Validate {
	if v, ok := validators.Load(tagName); ok {
		return v.(*validator.Validate)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get(tagName), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		default:
			return name
		}
	})

	actual, _ := validators.LoadOrStore(tagName, v)
	return actual.(*validator.Validate)
}

// validateStruct runs `validate` tag rules when target points to a struct
func validateStruct(target any, tagName string) error {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := validatorFor(tagName).Struct(rv.Addr().Interface())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: []FieldError{{Message: err.Error()}}, Err: err}
	}

	fields := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Drop the leading struct type name from the namespace
		_, path, found := strings.Cut(fe.Namespace(), ".")
		if !found {
			path = fe.Field()
		}
		fields = append(fields, FieldError{
			Path:     path,
			Expected: fe.Tag(),
			Value:    fe.Value(),
			Message:  validationMessage(fe),
		})
	}
	return &ValidationError{Fields: fields, Err: err}
}

func validationMessage(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("failed '%s=%s' rule", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed '%s' rule", fe.Tag())
}

// getDecodeHook returns the composite decode hook for all type conversions
func getDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}

		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 49 { // Max IPv6 CIDR length
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}
