// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal(t *testing.T) {
	t.Run("fires in subscription order", func(t *testing.T) {
		log := []string{}
		s := New[int]("test")

		s.Subscribe(func(v int) { log = append(log, "a") })
		s.Subscribe(func(v int) { log = append(log, "b") })
		s.Subscribe(func(v int) { log = append(log, "c") })

		s.Fire(1)
		s.Fire(2)

		assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, log)
	})

	t.Run("passes the value", func(t *testing.T) {
		var got []int
		var s Signal[int]
		s.Subscribe(func(v int) { got = append(got, v) })

		s.Fire(7)
		s.Fire(9)

		assert.Equal(t, []int{7, 9}, got)
	})

	t.Run("output argument", func(t *testing.T) {
		s := New[*bool]("should-close")
		s.Subscribe(func(b *bool) {})
		s.Subscribe(func(b *bool) { *b = true })

		closeNow := false
		s.Fire(&closeNow)

		assert.True(t, closeNow)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		log := []string{}
		s := New[struct{}]("test")

		s.Subscribe(func(struct{}) { log = append(log, "a") })
		h := s.Subscribe(func(struct{}) { log = append(log, "b") })

		assert.True(t, s.Unsubscribe(h))
		assert.False(t, s.Unsubscribe(h))
		assert.False(t, s.Unsubscribe(Handle{}))
		s.Fire(struct{}{})

		assert.Equal(t, []string{"a"}, log)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("handle from another signal is ignored", func(t *testing.T) {
		a := New[int]("a")
		b := New[int]("b")
		a.Subscribe(func(int) {})
		h := b.Subscribe(func(int) {})

		assert.False(t, a.Unsubscribe(h))
		assert.Equal(t, 1, a.Len())
	})

	t.Run("self unsubscribe during fire", func(t *testing.T) {
		log := []string{}
		s := New[int]("test")

		var h Handle
		h = s.Subscribe(func(int) {
			log = append(log, "once")
			s.Unsubscribe(h)
		})
		s.Subscribe(func(int) { log = append(log, "always") })

		s.Fire(0)
		s.Fire(0)

		assert.Equal(t, []string{"once", "always", "always"}, log)
	})

	t.Run("unsubscribing a later subscriber skips it", func(t *testing.T) {
		log := []string{}
		s := New[int]("test")

		var later Handle
		s.Subscribe(func(int) {
			log = append(log, "first")
			s.Unsubscribe(later)
		})
		later = s.Subscribe(func(int) { log = append(log, "later") })

		s.Fire(0)

		assert.Equal(t, []string{"first"}, log)
	})

	t.Run("subscribing during fire takes effect next fire", func(t *testing.T) {
		log := []string{}
		s := New[int]("test")

		added := false
		s.Subscribe(func(int) {
			log = append(log, "outer")
			if !added {
				added = true
				s.Subscribe(func(int) { log = append(log, "inner") })
			}
		})

		s.Fire(0)
		s.Fire(0)

		assert.Equal(t, []string{"outer", "outer", "inner"}, log)
	})

	t.Run("re-entrant fire", func(t *testing.T) {
		depth := 0
		s := New[int]("test")
		s.Subscribe(func(n int) {
			depth++
			if n > 0 {
				s.Fire(n - 1)
			}
		})

		s.Fire(3)

		assert.Equal(t, 4, depth)
	})

	t.Run("subscriber panic leaves signal usable", func(t *testing.T) {
		s := New[int]("test")
		h := s.Subscribe(func(int) { panic("boom") })

		assert.Panics(t, func() { s.Fire(0) })

		s.Unsubscribe(h)
		calls := 0
		s.Subscribe(func(int) { calls++ })

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Fire(0)
		}()
		<-done

		assert.Equal(t, 1, calls)
	})

	t.Run("nil subscriber panics", func(t *testing.T) {
		s := New[int]("test")
		assert.Panics(t, func() { s.Subscribe(nil) })
	})

	t.Run("fire from a second goroutine panics", func(t *testing.T) {
		s := New[int]("test")
		entered := make(chan struct{})
		release := make(chan struct{})
		var got []int
		s.Subscribe(func(v int) {
			got = append(got, v)
			if v == 1 {
				close(entered)
				<-release
			}
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Fire(1)
		}()
		<-entered
		assert.Panics(t, func() { s.Fire(2) })
		close(release)
		<-done

		require.NotPanics(t, func() { s.Fire(3) })
		assert.Equal(t, []int{1, 3}, got)
	})
}

func TestErrSignal(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("fire stops at first error", func(t *testing.T) {
		log := []string{}
		s := NewErr[int]("start")

		s.Subscribe(func(int) error { log = append(log, "a"); return nil })
		s.Subscribe(func(int) error { log = append(log, "b"); return errBoom })
		s.Subscribe(func(int) error { log = append(log, "c"); return nil })

		err := s.Fire(0)

		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, []string{"a", "b"}, log)
	})

	t.Run("fire all runs everything", func(t *testing.T) {
		errOther := errors.New("other")
		log := []string{}
		s := NewErr[int]("cleanup")

		s.Subscribe(func(int) error { log = append(log, "a"); return errBoom })
		s.Subscribe(func(int) error { log = append(log, "b"); return nil })
		s.Subscribe(func(int) error { log = append(log, "c"); return errOther })

		err := s.FireAll(0)

		assert.ErrorIs(t, err, errBoom)
		assert.ErrorIs(t, err, errOther)
		assert.Equal(t, []string{"a", "b", "c"}, log)
	})

	t.Run("no subscribers", func(t *testing.T) {
		s := NewErr[int]("empty")
		assert.NoError(t, s.Fire(0))
		assert.NoError(t, s.FireAll(0))
		assert.Equal(t, "empty", s.Name())
	})
}
