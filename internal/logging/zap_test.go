package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log, sync, err := New(FormatZap, &buf)
	require.NoError(t, err)

	log.With("module", "test").Info(context.Background(), "hello", "k", "v")
	require.NoError(t, sync())

	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))

	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["module"])
	assert.Equal(t, "v", rec["k"])
}

func TestZapLogger_AllLevels(t *testing.T) {
	var buf bytes.Buffer
	log, sync, err := New(FormatZap, &buf)
	require.NoError(t, err)

	ctx := context.Background()
	log.Debug(ctx, "dbg")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")
	require.NoError(t, sync())

	out := buf.String()
	for _, lvl := range []string{`"level":"debug"`, `"level":"warn"`, `"level":"error"`} {
		assert.Contains(t, out, lvl)
	}
}

func TestNew_SlogDefaultAndUnknown(t *testing.T) {
	var buf bytes.Buffer
	log, sync, err := New("", &buf)
	require.NoError(t, err)
	log.Info(context.Background(), "boot", "addr", ":5000")
	require.NoError(t, sync())
	assert.Contains(t, buf.String(), `"msg":"boot"`)
	assert.Contains(t, buf.String(), `"addr":":5000"`)

	_, _, err = New("logrus", &buf)
	require.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "ignored")
	l.With("a", 1).Error(context.Background(), "ignored")
}
