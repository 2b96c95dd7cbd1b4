package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEqual(t *testing.T) {
	type point struct{ X, Y int }
	type holder struct{ V any }

	slice := []int{1, 2, 3}
	m := map[string]int{"a": 1}
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"same int", 1, 1, true},
		{"different int", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"strings", "a", "a", true},
		{"structs", point{1, 2}, point{1, 2}, true},
		{"pointer identity", &point{1, 2}, &point{1, 2}, false},
		{"same slice", slice, slice, true},
		{"equal contents, different slices", []int{1, 2, 3}, []int{1, 2, 3}, false},
		{"resliced", slice, slice[:2], false},
		{"nil slices", []int(nil), []int(nil), true},
		{"nil and empty slice", []int(nil), []int{}, false},
		{"same map", m, m, true},
		{"different maps", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"funcs", fn, fn, false},
		{"uncomparable interface field", holder{[]int{1}}, holder{[]int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEqual(tt.a, tt.b))
		})
	}
}
