package microsig

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal(t *testing.T) {
	t.Run("read and write", func(t *testing.T) {
		count := NewSignal(0)
		assert.Equal(t, 0, count.Read())

		count.Write(10)
		assert.Equal(t, 10, count.Read())

		// same value
		count.Write(10)
		assert.Equal(t, 10, count.Read())
	})

	t.Run("zero values", func(t *testing.T) {
		err := NewSignal[error](nil)
		assert.Nil(t, err.Read())

		err.Write(errors.New("oops"))
		assert.EqualError(t, err.Read(), "oops")

		err.Write(nil)
		assert.Nil(t, err.Read())
	})

	t.Run("types", func(t *testing.T) {
		str := NewSignal("hello")
		flag := NewSignal(true)
		obj := NewSignal(map[string]int{"a": 1})

		str.Write("world")
		flag.Write(false)
		obj.Write(map[string]int{"a": 2})

		assert.Equal(t, "world", str.Read())
		assert.False(t, flag.Read())
		assert.Equal(t, map[string]int{"a": 2}, obj.Read())
	})

	t.Run("same value does not trigger effects", func(t *testing.T) {
		count := NewSignal(42)
		runs := 0

		NewEffect(func() {
			runs++
			count.Read()
		})

		count.Write(42)
		Tick()
		count.Write(42)
		Tick()

		assert.Equal(t, 1, runs)
	})

	t.Run("custom equality", func(t *testing.T) {
		name := NewSignal("hello", WithEquals(strings.EqualFold))
		log := []string{}

		NewEffect(func() {
			log = append(log, name.Read())
		})

		name.Write("HELLO")
		Tick()
		name.Write("bye")
		Tick()

		assert.Equal(t, []string{"hello", "bye"}, log)
		assert.Equal(t, "bye", name.Read())
	})

	t.Run("reference values compare by identity", func(t *testing.T) {
		items := []int{1, 2}
		list := NewSignal(items)
		runs := 0

		NewEffect(func() {
			runs++
			list.Read()
		})

		list.Write(items)
		Tick()
		assert.Equal(t, 1, runs)

		list.Write([]int{1, 2})
		Tick()
		assert.Equal(t, 2, runs)
	})

	t.Run("peek and update do not track", func(t *testing.T) {
		count := NewSignal(1)
		runs := 0

		NewEffect(func() {
			runs++
			count.Peek()
		})

		count.Update(func(v int) int { return v + 1 })
		Tick()

		assert.Equal(t, 2, count.Read())
		assert.Equal(t, 1, runs)
	})

	t.Run("write from another goroutine", func(t *testing.T) {
		var wg sync.WaitGroup
		log := []int{}

		count := NewSignal(0)
		NewEffect(func() {
			log = append(log, count.Read())
		})

		wg.Go(func() {
			count.Write(1)
		})
		wg.Wait()

		// the flush belongs to the runtime that created the signal
		Tick()

		assert.Equal(t, []int{0, 1}, log)
	})
}
