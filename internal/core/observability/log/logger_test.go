package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLoggerLevelRoundTrip(t *testing.T) {
	l := New(Options{Level: LevelWarn, Format: "console"})
	assert.Equal(t, LevelWarn, l.GetLevel())

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())

	child := l.With(String("component", "test")).Named("child")
	assert.Equal(t, LevelDebug, child.GetLevel())
}

func TestToZapFields(t *testing.T) {
	fields := toZapFields(
		Bool("b", true),
		Duration("d", time.Second),
		Float64("f", 1.5),
		Int("i", 3),
		Uint32("u32", 4),
		Uint64("u64", 5),
		String("s", "x"),
		Error(errors.New("boom")),
		Any("a", []int{1}),
	)
	require.Len(t, fields, 9)
	assert.Equal(t, "b", fields[0].Key)
	assert.Equal(t, "error", fields[7].Key)
	assert.Nil(t, toZapFields())
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("ignored", Int("n", 1))
		l.Error("ignored", Error(nil))
	})
}
