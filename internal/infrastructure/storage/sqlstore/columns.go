package sqlstore

import (
	"reflect"
	"sync"
)

var columnCache sync.Map // map[reflect.Type][]string

// Columns returns the column names declared by T's "db" tags, in field order.
// Embedded structs are walked recursively. Results are cached per type.
//
// Usage:
//
//	var taskColumns = sqlstore.Columns[capture.Task]()
//	// ["id", "product_id", "location_id", ...]
func Columns[T any]() []string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := columnCache.Load(t); ok {
		return append([]string(nil), cached.([]string)...)
	}

	cols := columnsOf(t)
	columnCache.Store(t, cols)
	return append([]string(nil), cols...)
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}
