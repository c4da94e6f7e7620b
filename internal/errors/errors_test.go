package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EGRM23/fisica-computacional-2024/internal/logging"
)

var errNotFound = stderrors.New("not found")

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", &Error{Message: "bad"}, "bad"},
		{"all fields", &Error{Message: "bad", Operation: "Run", Component: "gsa", Err: errNotFound}, "bad: operation=Run, component=gsa: not found"},
		{"no message", &Error{Operation: "Run", Err: errNotFound}, "operation=Run: not found"},
		{"wrapped only", &Error{Err: errNotFound}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))

	inner := New("inner").WithCode("not_found")
	outer := Wrapf(inner, "job %s", "abc")

	assert.Equal(t, "job abc: inner", outer.Error())
	assert.Equal(t, "not_found", outer.Code)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Same(t, inner, Unwrap(outer))

	var target *Error
	require.True(t, As(Wrap(errNotFound, "lookup"), &target))
	assert.True(t, Is(target, errNotFound))
	assert.False(t, Is(target, io.EOF))
}

func TestStackTrace(t *testing.T) {
	err := Errorf("x=%d", 3)
	require.NotEmpty(t, err.StackTrace())
	assert.Contains(t, err.StackTrace()[0], "TestStackTrace")
	for _, frame := range err.StackTrace() {
		assert.NotContains(t, frame, "internal/errors/errors.go")
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "", CodeOf(nil))
	assert.Equal(t, "", CodeOf(errNotFound))
	wrapped := Wrap(New("x").WithCode("invalid_params"), "")
	assert.Equal(t, "invalid_params", CodeOf(wrapped))
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.DebugLevel, &buf)

	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Contains(t, buf.String(), "kaboom")
	assert.Contains(t, buf.String(), "Recovered from panic")
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		status int
		logged bool
	}{
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			h := ErrorHandler(logging.New(logging.InfoLevel, &buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.logged, strings.Contains(buf.String(), "Request error"))
		})
	}
}
