package httpd_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetsdb/sheetsdb"
	"github.com/sheetsdb/sheetsdb/httpd"
	"github.com/sheetsdb/sheetsdb/sheetsdbtest"
)

type stubAuth struct {
	identity *httpd.Identity
	err      error
}

func (a *stubAuth) Authenticate(r *http.Request) (*httpd.Identity, error) {
	return a.identity, a.err
}

func testServer(fake *sheetsdbtest.Fake, store httpd.MetaStore) *httpd.Server {
	auth := stubAuth{
		identity: &httpd.Identity{Email: "ann@example.com"},
	}

	return httpd.NewServer(&auth, store, sheetsdb.DefaultConfig(),
		httpd.WithAPIFactory(func(ctx context.Context, client *http.Client) (sheetsdb.API, error) {
			return fake, nil
		}))
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	fake := sheetsdbtest.New()

	auth := stubAuth{err: fmt.Errorf("no session")}
	server := httpd.NewServer(&auth, httpd.NewMemStore(), sheetsdb.DefaultConfig(),
		httpd.WithAPIFactory(func(ctx context.Context, client *http.Client) (sheetsdb.API, error) {
			return fake, nil
		}))

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnconfiguredIdentityIsRedirectedToSetup(t *testing.T) {
	fake := sheetsdbtest.New()
	server := testServer(fake, httpd.NewMemStore())

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, httptest.NewRequest("GET", "/api/tables", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	assert.Equal(t, "/setup", location.Path)
	assert.Equal(t, "/api/tables", location.Query().Get("next"))
	assert.NotEmpty(t, location.Query().Get("reason"))
}

func TestStaleMetaSpreadsheetIsRedirectedToSetup(t *testing.T) {
	fake := sheetsdbtest.New()

	store := httpd.NewMemStore()
	store.Put("ann@example.com", "gone")

	server := testServer(fake, store)

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	assert.Equal(t, "/setup", location.Path)
	assert.Equal(t, "/", location.Query().Get("next"))
}

func TestSetupForm(t *testing.T) {
	fake := sheetsdbtest.New()
	server := testServer(fake, httpd.NewMemStore())

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, httptest.NewRequest("GET", "/setup?reason=no+meta+spreadsheet+configured", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no meta spreadsheet configured")
}

func TestSetupSaveStoresSubmittedID(t *testing.T) {
	fake := sheetsdbtest.New()
	fake.Add("meta", sheetsdb.MetaTitle)

	store := httpd.NewMemStore()
	server := testServer(fake, store)

	form := url.Values{}
	form.Set("meta_spreadsheet_id", "meta")
	form.Set("next", "/api/tables")

	r := httptest.NewRequest("POST", "/setup", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/api/tables", w.Header().Get("Location"))

	metaID, err := store.Get("ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "meta", metaID)
}

func TestSetupSaveCreatesMetaSpreadsheetWhenBlank(t *testing.T) {
	fake := sheetsdbtest.New()

	store := httpd.NewMemStore()
	server := testServer(fake, store)

	r := httptest.NewRequest("POST", "/setup", strings.NewReader("meta_spreadsheet_id="))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	metaID, err := store.Get("ann@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, metaID)

	// the created spreadsheet is a valid, verifiable meta spreadsheet
	sheet := fake.Sheets[metaID]
	require.NotNil(t, sheet)
	assert.Equal(t, sheetsdb.MetaTitle, sheet.Title)
}

func TestSetupSaveIgnoresExternalRedirects(t *testing.T) {
	fake := sheetsdbtest.New()
	fake.Add("meta", sheetsdb.MetaTitle)

	server := testServer(fake, httpd.NewMemStore())

	form := url.Values{}
	form.Set("meta_spreadsheet_id", "meta")
	form.Set("next", "https://example.com/phish")

	r := httptest.NewRequest("POST", "/setup", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestAPITables(t *testing.T) {
	fake := sheetsdbtest.New()
	fake.Add("meta", sheetsdb.MetaTitle,
		[]any{"name", "spreadsheet_id", "columns", "num_rows", "last_modified"},
		[]any{"users", "sheet-1", `[{"name":"name","type":"string"}]`, "2", "2024-01-02T12:34:56Z"})

	store := httpd.NewMemStore()
	store.Put("ann@example.com", "meta")

	server := testServer(fake, store)

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, httptest.NewRequest("GET", "/api/tables", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	reply := struct {
		Success bool                 `json:"success"`
		Data    []sheetsdb.MetaEntry `json:"data"`
	}{}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.True(t, reply.Success)
	require.Len(t, reply.Data, 1)
	assert.Equal(t, "users", reply.Data[0].Name)
	assert.Equal(t, 2, reply.Data[0].NumRows)
}

func TestIndexPage(t *testing.T) {
	fake := sheetsdbtest.New()
	fake.Add("meta", sheetsdb.MetaTitle,
		[]any{"name", "spreadsheet_id", "columns", "num_rows", "last_modified"},
		[]any{"users", "sheet-1", `[{"name":"name","type":"string"}]`, "2", "2024-01-02T12:34:56Z"})

	store := httpd.NewMemStore()
	store.Put("ann@example.com", "meta")

	server := testServer(fake, store)

	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "users")
}
