package manheimfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLocationsWalksPages(t *testing.T) {
	var userAgent string
	mux := http.NewServeMux()
	mux.HandleFunc(IndexPath, func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		_, _ = w.Write([]byte(`<html><body>
<a href="/en/country/us-locations/page/2">2</a>
<div class="single_location_container">
  <h3>Manheim Dallas</h3>
  <p>5333 W Kiest Blvd<br>Dallas, TX 75236</p>
</div></body></html>`))
	})
	mux.HandleFunc(IndexPath+"/page/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(headingsPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a, err := NewManheimFetcherAdapter(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	locs, pages, err := a.FetchLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.Len(t, locs, 3)
	assert.Equal(t, "Manheim Dallas", locs[0].Name)
	assert.Equal(t, "Manheim Nevada", locs[1].Name)
	assert.Equal(t, "Manheim Ohio", locs[2].Name)
	assert.Equal(t, DefaultUserAgent, userAgent)
}

func TestFetchLocationsFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a, err := NewManheimFetcherAdapter(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, _, err = a.FetchLocations(context.Background())
	assert.Error(t, err)
}

func TestPageURL(t *testing.T) {
	a, err := NewManheimFetcherAdapter(Config{BaseURL: "https://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/en/country/us-locations", a.pageURL(1))
	assert.Equal(t, "https://example.com/en/country/us-locations/page/4", a.pageURL(4))
}
