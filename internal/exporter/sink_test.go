package exporter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSink(t *testing.T) {
	w := httptest.NewRecorder()
	sink := NewHTTPSink(w)

	err := sink.Write(context.Background(), Artifact{
		Name:     "herd.csv",
		MIMEType: CSVMIMEType,
		Body:     []byte(`"a"`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CSVMIMEType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="herd.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "3", w.Header().Get("Content-Length"))
	assert.Equal(t, `"a"`, w.Body.String())
}

func TestHTTPSinkCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	err := NewHTTPSink(w).Write(ctx, Artifact{Name: "x.csv"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "nested")
	sink := NewFileSink(dir)

	require.NoError(t, sink.Write(context.Background(), Artifact{Name: "herd.csv", Body: []byte("one")}))
	require.NoError(t, sink.Write(context.Background(), Artifact{Name: "herd.csv", Body: []byte("two")}))

	data, err := os.ReadFile(filepath.Join(dir, "herd.csv"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.Len(t, sink.Paths(), 2)
}

func TestFileSinkStaysInsideDirectory(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	require.NoError(t, sink.Write(context.Background(), Artifact{Name: "../../escape.csv", Body: []byte("x")}))

	_, err := os.Stat(filepath.Join(dir, "escape.csv"))
	assert.NoError(t, err)
}

func TestBufferSinkConcurrent(t *testing.T) {
	sink := NewBufferSink()
	_, ok := sink.Last()
	assert.False(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Write(context.Background(), Artifact{Name: "a.csv", Body: []byte("x")})
		}()
	}
	wg.Wait()

	assert.Len(t, sink.Artifacts(), 20)
	last, ok := sink.Last()
	assert.True(t, ok)
	assert.Equal(t, "a.csv", last.Name)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"herd.csv", "herd.csv"},
		{"reports/herd.csv", "herd.csv"},
		{`..\..\herd.csv`, "herd.csv"},
		{"a\"b.csv", "a_b.csv"},
		{"line\nbreak.csv", "linebreak.csv"},
		{"", "export"},
		{"..", "export"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}
