package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/frog":
			_, _ = w.Write([]byte(`[{"word":"frog"}]`))
		case "/empty":
			_, _ = w.Write([]byte(`[]`))
		case "/oops":
			w.WriteHeader(http.StatusInternalServerError)
		case "/junk":
			_, _ = w.Write([]byte(`{not json`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"title":"No Definitions Found"}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	ctx := context.Background()

	found, err := c.Lookup(ctx, "FROG")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = c.Lookup(ctx, "qzxv")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = c.Lookup(ctx, "empty")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = c.Lookup(ctx, "oops")
	assert.Error(t, err)

	_, err = c.Lookup(ctx, "junk")
	assert.Error(t, err)
}

func TestLookupTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, 200*time.Millisecond).Lookup(context.Background(), "frog")
	assert.Error(t, err)
}
