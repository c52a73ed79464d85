package sheettable_test

import (
	"reflect"
	"testing"
	"time"

	sheettable "github.com/ideamans/go-sheettable"
)

func recordOf(values map[string]interface{}) *sheettable.Record {
	return &sheettable.Record{Key: 2, Values: values}
}

func TestRecord_GetAsString(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   string
	}{
		{"string value", map[string]interface{}{"col": "hello"}, "hello"},
		{"int64 value", map[string]interface{}{"col": int64(42)}, "42"},
		{"float64 value", map[string]interface{}{"col": 2.5}, "2.5"},
		{"bool value", map[string]interface{}{"col": true}, "true"},
		{"strings value", map[string]interface{}{"col": []string{"a", "b"}}, "a,b"},
		{"missing column", map[string]interface{}{}, "default"},
		{"nil value", map[string]interface{}{"col": nil}, "default"},
		{"null value", map[string]interface{}{"col": sheettable.Null}, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordOf(tt.values).GetAsString("col", "default"); got != tt.want {
				t.Errorf("GetAsString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_GetAsInt64(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   int64
	}{
		{"int64 value", map[string]interface{}{"col": int64(42)}, 42},
		{"int value", map[string]interface{}{"col": 7}, 7},
		{"int32 value", map[string]interface{}{"col": int32(-3)}, -3},
		{"float64 value", map[string]interface{}{"col": 9.9}, 9},
		{"numeric string", map[string]interface{}{"col": "123"}, 123},
		{"invalid string", map[string]interface{}{"col": "abc"}, -1},
		{"null value", map[string]interface{}{"col": sheettable.Null}, -1},
		{"missing column", nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordOf(tt.values).GetAsInt64("col", -1); got != tt.want {
				t.Errorf("GetAsInt64() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_GetAsFloat64(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   float64
	}{
		{"float64 value", map[string]interface{}{"col": 1.5}, 1.5},
		{"int64 value", map[string]interface{}{"col": int64(2)}, 2},
		{"numeric string", map[string]interface{}{"col": "3.25"}, 3.25},
		{"bool value", map[string]interface{}{"col": true}, -1},
		{"null value", map[string]interface{}{"col": sheettable.Null}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordOf(tt.values).GetAsFloat64("col", -1); got != tt.want {
				t.Errorf("GetAsFloat64() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_GetAsStrings(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   []string
	}{
		{"comma separated", map[string]interface{}{"col": "a,b,c"}, []string{"a", "b", "c"}},
		{"empty string", map[string]interface{}{"col": ""}, []string{}},
		{"string slice", map[string]interface{}{"col": []string{"x"}}, []string{"x"}},
		{"interface slice", map[string]interface{}{"col": []interface{}{1, "y"}}, []string{"1", "y"}},
		{"missing column", map[string]interface{}{}, []string{"default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recordOf(tt.values).GetAsStrings("col", []string{"default"})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetAsStrings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_GetAsBool(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   bool
	}{
		{"bool value", map[string]interface{}{"col": true}, true},
		{"TRUE string", map[string]interface{}{"col": "TRUE"}, true},
		{"one string", map[string]interface{}{"col": "1"}, true},
		{"other string", map[string]interface{}{"col": "no"}, false},
		{"zero int", map[string]interface{}{"col": 0}, false},
		{"non-zero int64", map[string]interface{}{"col": int64(5)}, true},
		{"non-zero float64", map[string]interface{}{"col": 0.5}, true},
		{"null value keeps default", map[string]interface{}{"col": sheettable.Null}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordOf(tt.values).GetAsBool("col", true); got != tt.want {
				t.Errorf("GetAsBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_GetAsTime(t *testing.T) {
	def := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		values map[string]interface{}
		want   time.Time
	}{
		{"time value", map[string]interface{}{"col": at}, at},
		{"RFC3339 string", map[string]interface{}{"col": "2024-03-15T10:30:00Z"}, at},
		{"datetime string", map[string]interface{}{"col": "2024-03-15 10:30:00"}, at},
		{"date string", map[string]interface{}{"col": "2024-03-15"}, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"invalid string", map[string]interface{}{"col": "yesterday"}, def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordOf(tt.values).GetAsTime("col", def); !got.Equal(tt.want) {
				t.Errorf("GetAsTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_Setters(t *testing.T) {
	var r sheettable.Record
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	r.SetString("name", "Alice")
	r.SetInt64("id", 1)
	r.SetFloat64("score", 9.5)
	r.SetStrings("tags", []string{"a", "b"})
	r.SetBool("active", true)
	r.SetTime("at", at)

	want := map[string]interface{}{
		"name":   "Alice",
		"id":     int64(1),
		"score":  9.5,
		"tags":   "a,b",
		"active": true,
		"at":     "2024-03-15T10:30:00Z",
	}
	if !reflect.DeepEqual(r.Values, want) {
		t.Errorf("Values = %v, want %v", r.Values, want)
	}
	if got := r.GetAsTime("at", time.Time{}); !got.Equal(at) {
		t.Errorf("GetAsTime() = %v, want %v", got, at)
	}
}

func TestRecord_IsNull(t *testing.T) {
	r := sheettable.NewRecord(3)
	r.Values["a"] = sheettable.Null
	r.Values["b"] = nil
	r.Values["c"] = ""

	for col, want := range map[string]bool{"a": true, "b": true, "c": false, "missing": true} {
		if got := r.IsNull(col); got != want {
			t.Errorf("IsNull(%q) = %v, want %v", col, got, want)
		}
	}
	if r.Key != 3 {
		t.Errorf("Key = %d, want 3", r.Key)
	}
	if got := r.Get("c"); got != "" {
		t.Errorf("Get(c) = %#v, want empty string", got)
	}
}
