package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
	}{
		{DebugLevel, []string{"d", "i", "w", "e"}},
		{InfoLevel, []string{"i", "w", "e"}},
		{WarnLevel, []string{"w", "e"}},
		{ErrorLevel, []string{"e"}},
		{LogLevel("bogus"), []string{"i", "w", "e"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.level, &buf)
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")

			var got []string
			for _, e := range decodeLines(t, &buf) {
				got = append(got, e["message"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	base := New(DebugLevel, &buf).WithField("component", "gsa")
	child := base.WithFields(map[string]interface{}{"run": 2}).WithError(errors.New("boom"))

	child.Info("done", map[string]interface{}{
		"best":    math.Inf(1),
		"elapsed": 1500 * time.Millisecond,
	})
	base.Info("parent")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	e := lines[0]
	assert.Equal(t, "INFO", e["level"])
	assert.Equal(t, "done", e["message"])
	assert.Equal(t, "gsa", e["component"])
	assert.EqualValues(t, 2, e["run"])
	assert.Equal(t, "boom", e["error"])
	assert.Equal(t, "+Inf", e["best"])
	assert.Equal(t, "1.5s", e["elapsed"])
	assert.Contains(t, e["caller"], "logging/logger_test.go")
	assert.NotEmpty(t, e["timestamp"])

	_, leaked := lines[1]["run"]
	assert.False(t, leaked, "fields of a derived logger must not reach the parent")
	assert.Same(t, child, child.WithError(nil))
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&Config{Level: "debug", Format: "text", Output: "discard"})
	require.NoError(t, err)
	l.sink.out = &buf

	l.WithFields(map[string]interface{}{"b": 2, "a": 1}).Debug("hello")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "DEBUG hello")
	assert.Less(t, strings.Index(line, " a=1"), strings.Index(line, " b=2"))
}

func TestLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	l := New(InfoLevel, &buf)
	code := -1
	l.sink.exit = func(c int) { code = c }

	l.Fatal("bye")

	assert.Equal(t, 1, code)
	assert.Equal(t, "FATAL", decodeLines(t, &buf)[0]["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, FatalLevel, ParseLevel("fatal"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("loud"))
}

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(nil)
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, l.Level())
	assert.Equal(t, JSONFormat, l.sink.format)

	_, err = NewLogger(&Config{Output: "/nonexistent-dir/x/y.log"})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &CtxLogger{New(DebugLevel, &buf)}
	ctx := l.WithContext(context.Background())
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestZapLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(InfoLevel, &buf)
	z := NewZapLogger(l).Named("gsa").With(zap.Int("run", 3))

	z.Debug("hidden")
	z.Info("gsa iteration", zap.Float64s("best", []float64{1, 2}), zap.Error(errors.New("x")))
	z.Warn("slow")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "gsa iteration", lines[0]["message"])
	assert.Equal(t, "gsa", lines[0]["logger"])
	assert.EqualValues(t, 3, lines[0]["run"])
	assert.Equal(t, []interface{}{1.0, 2.0}, lines[0]["best"])
	assert.Equal(t, "x", lines[0]["error"])
	assert.Equal(t, "WARN", lines[1]["level"])
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	l := New(DebugLevel, &buf)

	var fromCtx *CtxLogger
	h := middleware.RequestID(Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/x", nil))

	require.NotNil(t, fromCtx)
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "Request started", lines[0]["message"])
	done := lines[1]
	assert.Equal(t, "WARN", done["level"])
	assert.EqualValues(t, http.StatusNotFound, done["status"])
	assert.Equal(t, "/api/v1/jobs/x", done["path"])
	assert.NotEmpty(t, done["request_id"])
}
