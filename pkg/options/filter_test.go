package options

import (
	"reflect"
	"testing"

	"github.com/EnvForge/envforge/pkg/provider"
)

func TestFilterValues(t *testing.T) {
	set := provider.OptionSet{
		"region":  {},
		"enabled": {},
		"count":   {},
	}

	tests := []struct {
		name   string
		values map[string]interface{}
		want   map[string]string
	}{
		{
			name: "unknown keys are dropped",
			values: map[string]interface{}{
				"region":      "eu-west-1",
				"reuseToggle": true,
			},
			want: map[string]string{"region": "eu-west-1"},
		},
		{
			name: "nil values are dropped",
			values: map[string]interface{}{
				"region": nil,
				"count":  3,
			},
			want: map[string]string{"count": "3"},
		},
		{
			name: "booleans and numbers are stringified",
			values: map[string]interface{}{
				"enabled": true,
				"count":   float64(2),
			},
			want: map[string]string{"enabled": "true", "count": "2"},
		},
		{
			name:   "empty input",
			values: map[string]interface{}{},
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterValues(tt.values, set)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterValues() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterValuesIdempotent(t *testing.T) {
	set := provider.OptionSet{
		"region":  {},
		"enabled": {},
	}
	values := map[string]interface{}{
		"region":  "eu-west-1",
		"enabled": false,
		"extra":   "ignored",
	}

	once := FilterValues(values, set)

	again := make(map[string]interface{}, len(once))
	for key, value := range once {
		again[key] = value
	}

	twice := FilterValues(again, set)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second filter changed the result: %v vs %v", once, twice)
	}
}

func TestFilterStrings(t *testing.T) {
	set := provider.OptionSet{"region": {}}
	values := map[string]string{
		"region": "eu-west-1",
		"gone":   "x",
	}

	got := FilterStrings(values, set)
	want := map[string]string{"region": "eu-west-1"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterStrings() = %v, want %v", got, want)
	}
}
