package client

import (
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"cofoundr/artifacts"
	"cofoundr/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageJSONURLKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "url", body: `{"url":"http://x/a.png","image_url":"http://x/b.png"}`, want: "http://x/a.png"},
		{name: "image_url", body: `{"image_url":"http://x/y.png"}`, want: "http://x/y.png"},
		{name: "image", body: `{"image":"http://x/c.png"}`, want: "http://x/c.png"},
		{name: "empty url skipped", body: `{"url":"","image":"http://x/d.png"}`, want: "http://x/d.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				_, _ = io.WriteString(w, tt.body)
			})

			img, err := c.Image(context.Background(), "idea")
			require.NoError(t, err)
			assert.Equal(t, types.ImageURL, img.Kind)
			assert.Equal(t, tt.want, img.URL)
			assert.Equal(t, tt.want, img.Ref())
		})
	}
}

func TestImageJSONWithoutURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})

	_, err := c.Image(context.Background(), "idea")
	require.Error(t, err)
	assert.Equal(t, "no image URL found in response", err.Error())
	assert.ErrorIs(t, err, errNoImageURL)
}

func TestImageBinaryIsStored(t *testing.T) {
	store := artifacts.NewLocalStore(t.TempDir())
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}, WithArtifacts(store))

	img, err := c.Image(context.Background(), "idea")
	require.NoError(t, err)
	assert.Equal(t, types.ImageBinary, img.Kind)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, int64(len(pngHeader)), img.Size)

	path, err := store.Path(img.Handle)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestImageBinarySniffsMissingContentType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write(pngHeader)
	})

	img, err := c.Image(context.Background(), "idea")
	require.NoError(t, err)
	assert.Equal(t, types.ImageBinary, img.Kind)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestReportIsStored(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	store := artifacts.NewLocalStore(t.TempDir())
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathReport, r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}, WithArtifacts(store))

	doc, err := c.Report(context.Background(), &types.AnalyzeResult{BusinessAnalysis: "b"})
	require.NoError(t, err)
	assert.Equal(t, ReportFileName, doc.Name)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, int64(len(pdf)), doc.Size)

	rc, err := store.Open(context.Background(), doc.Handle)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pdf, data)
}
