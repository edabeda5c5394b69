package output

import (
	"fmt"
	"reflect"
	"sort"
)

// SortCriteria defines a sort criterion with field name and direction
type SortCriteria struct {
	Field      string // Field name to sort by
	Descending bool   // If true, sort descending; otherwise ascending
}

// MultiFieldSort sorts a slice by multiple criteria
// The slice parameter must be a pointer to a slice of structs
func MultiFieldSort(slice interface{}, criteria []SortCriteria) error {
	sliceVal := reflect.ValueOf(slice)
	if sliceVal.Kind() != reflect.Ptr {
		return fmt.Errorf("slice must be a pointer to a slice")
	}

	sliceVal = sliceVal.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return fmt.Errorf("slice must be a pointer to a slice")
	}

	if len(criteria) == 0 {
		return fmt.Errorf("at least one sort criteria must be provided")
	}

	sort.SliceStable(sliceVal.Interface(), func(i, j int) bool {
		iVal := sliceVal.Index(i)
		jVal := sliceVal.Index(j)

		for _, criterion := range criteria {
			iField, err := getFieldValue(iVal, criterion.Field)
			if err != nil {
				return false
			}

			jField, err := getFieldValue(jVal, criterion.Field)
			if err != nil {
				return false
			}

			cmp := compareValues(iField, jField)
			if cmp != 0 {
				if criterion.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
		}

		return false
	})

	return nil
}

// getFieldValue gets a field value from a struct using reflection
func getFieldValue(val reflect.Value, fieldName string) (interface{}, error) {
	// Dereference pointers
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("nil pointer encountered")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("value is not a struct")
	}

	field := val.FieldByName(fieldName)
	if !field.IsValid() {
		return nil, fmt.Errorf("field %s not found", fieldName)
	}

	return field.Interface(), nil
}

// compareValues compares two values and returns -1, 0, or 1
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	aVal := reflect.ValueOf(a)
	bVal := reflect.ValueOf(b)

	switch aVal.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compareOrdered(aVal.Int(), bVal.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return compareOrdered(aVal.Uint(), bVal.Uint())
	case reflect.Float32, reflect.Float64:
		return compareOrdered(aVal.Float(), bVal.Float())
	case reflect.String:
		return compareOrdered(aVal.String(), bVal.String())
	default:
		// For other types, fall back to string representation
		return compareOrdered(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func compareOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
