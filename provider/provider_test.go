package provider_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xalexb/strata/provider"
	"github.com/0xalexb/strata/source"
)

var errBroken = errors.New("broken document")

// lineParser is a minimal test format: each "key=value" line becomes a text
// field. A document containing "!" fails to parse.
func lineParser(data []byte) (*source.Source, error) {
	content := strings.TrimSpace(string(data))
	if strings.Contains(content, "!") {
		return nil, errBroken
	}

	builder := source.NewMapBuilder()

	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}

		key, value, _ := strings.Cut(line, "=")
		builder.Set(strings.TrimSpace(key), source.NewText(strings.TrimSpace(value)))
	}

	return builder.Build(), nil
}

func newLineProvider() *provider.Provider {
	return provider.New("line", lineParser)
}

func requireText(t *testing.T, src *source.Source, path, want string) {
	t.Helper()

	node, err := src.Get(path)
	require.NoError(t, err)

	text, err := node.Text()
	require.NoError(t, err)
	assert.Equal(t, want, text)
}

func TestProvider_FromString(t *testing.T) {
	t.Parallel()

	src, err := newLineProvider().FromString("name=demo")
	require.NoError(t, err)

	requireText(t, src, "name", "demo")
	assert.Equal(t, "line", src.Info()[source.InfoType])
	assert.Equal(t, "name=demo", src.Info()[source.InfoContent])
}

func TestProvider_FromString_TruncatesMarker(t *testing.T) {
	t.Parallel()

	long := "name=" + strings.Repeat("x", 100)

	src, err := newLineProvider().FromString(long)
	require.NoError(t, err)

	marker := src.Info()[source.InfoContent]
	assert.True(t, strings.HasSuffix(marker, "..."))
	assert.Less(t, len(marker), len(long))
}

func TestProvider_MarkerSurvivesSplitRune(t *testing.T) {
	t.Parallel()

	// The 40-byte cut lands inside the first multi-byte rune; only that
	// rune's leading bytes are dropped.
	prefix := strings.Repeat("a", 39)

	src, err := newLineProvider().FromString(prefix + "日本語")
	require.NoError(t, err)

	assert.Equal(t, prefix+"...", src.Info()[source.InfoContent])
}

func TestProvider_MarkerKeepsBinaryContent(t *testing.T) {
	t.Parallel()

	data := append([]byte("k=v\n"), bytes.Repeat([]byte{0xff}, 60)...)

	src, err := newLineProvider().FromBytes(data)
	require.NoError(t, err)

	marker := src.Info()[source.InfoContent]
	assert.True(t, strings.HasSuffix(marker, "..."))
	// Invalid bytes do not erase the marker wholesale.
	assert.GreaterOrEqual(t, len(marker), 30)
	assert.True(t, strings.HasPrefix(marker, "k=v\n"))
}

func TestProvider_FromBytesAndReader(t *testing.T) {
	t.Parallel()

	p := newLineProvider()

	fromBytes, err := p.FromBytes([]byte("a=1"))
	require.NoError(t, err)
	requireText(t, fromBytes, "a", "1")

	fromReader, err := p.FromReader(strings.NewReader("b=2"))
	require.NoError(t, err)
	requireText(t, fromReader, "b", "2")
}

func TestProvider_FromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.line")

	err := os.WriteFile(path, []byte("host=localhost"), 0o600)
	require.NoError(t, err)

	src, err := newLineProvider().FromFile(path)
	require.NoError(t, err)

	requireText(t, src, "host", "localhost")
	assert.Equal(t, path, src.Info()[source.InfoFile])
}

func TestProvider_FromFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := newLineProvider().FromFile("/nonexistent/app.line")
	require.ErrorIs(t, err, provider.ErrSourceNotFound)
}

func TestProvider_FromFile_Directory(t *testing.T) {
	t.Parallel()

	_, err := newLineProvider().FromFile(t.TempDir())
	require.ErrorIs(t, err, provider.ErrSourceNotFound)
}

func TestProvider_FromURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote=yes"))
	}))
	defer server.Close()

	src, err := newLineProvider().FromURL(context.Background(), server.URL)
	require.NoError(t, err)

	requireText(t, src, "remote", "yes")
	assert.Equal(t, server.URL, src.Info()[source.InfoURL])
}

func TestProvider_FromURL_NotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := newLineProvider().FromURL(context.Background(), server.URL)
	require.ErrorIs(t, err, provider.ErrSourceNotFound)
}

func TestProvider_FromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"conf/app.line": &fstest.MapFile{Data: []byte("embedded=true")},
	}

	src, err := newLineProvider().FromFS(fsys, "conf/app.line")
	require.NoError(t, err)

	requireText(t, src, "embedded", "true")
	assert.Equal(t, "conf/app.line", src.Info()[source.InfoResource])

	_, err = newLineProvider().FromFS(fsys, "conf/missing.line")
	require.ErrorIs(t, err, provider.ErrSourceNotFound)
}

func TestProvider_ParseError(t *testing.T) {
	t.Parallel()

	_, err := newLineProvider().FromString("!")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrParse)
	assert.ErrorIs(t, err, errBroken)

	var parseErr *provider.ParseError

	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "line", parseErr.Format)
}

func TestProvider_Map_ComposesInRegistrationOrder(t *testing.T) {
	t.Parallel()

	var order []string

	p := newLineProvider().
		Map(func(src *source.Source) *source.Source {
			order = append(order, "first")

			return src.WithPrefix("outer")
		}).
		Map(func(src *source.Source) *source.Source {
			order = append(order, "second")

			return src.WithPrefix("inner")
		})

	src, err := p.FromString("k=v")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, order)

	// The second transform wraps the first transform's output.
	requireText(t, src, "inner.outer.k", "v")
}

func TestProvider_Format(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line", newLineProvider().Format())
}
