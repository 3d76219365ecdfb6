package httpd

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/sheetsdb/sheetsdb"
	"github.com/sheetsdb/sheetsdb/httpd/html"
)

// response is the JSON envelope for the API endpoints.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// index renders the table registry: name, row count, last-modified and the
// backing spreadsheet ID/link for every registered table.
func (s *Server) index(w http.ResponseWriter, r *http.Request, sdk *sheetsdb.SDK) {
	tables, err := sdk.Tables(r.Context())
	if err != nil {
		s.log.Error("listing tables failed", zap.Error(err))
		http.Error(w, "error listing tables", http.StatusBadGateway)
		return
	}

	page := map[string]any{
		"App":               s.cfg.App,
		"MetaSpreadsheetID": sdk.MetaSpreadsheetID(),
		"MetaURL":           sheetsdb.SpreadsheetURL(sdk.MetaSpreadsheetID()),
		"Tables":            tables,
	}

	s.render(w, "index.html", s.cfg.IndexTemplate, page)
}

// setupForm collects/confirms the meta spreadsheet ID.
func (s *Server) setupForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.Authenticate(r); err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	page := map[string]any{
		"App":       s.cfg.App,
		"MetaTitle": sheetsdb.MetaTitle,
		"Next":      r.URL.Query().Get("next"),
		"Reason":    r.URL.Query().Get("reason"),
	}

	s.render(w, "setup.html", s.cfg.SetupTemplate, page)
}

// setupSave stores the submitted meta spreadsheet ID for the identity,
// creating a fresh meta spreadsheet when the field is left blank.
func (s *Server) setupSave(w http.ResponseWriter, r *http.Request) {
	identity, err := s.auth.Authenticate(r)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	metaID := strings.TrimSpace(r.FormValue("meta_spreadsheet_id"))
	if metaID == "" {
		api, err := s.api(ctx, identity.Client)
		if err != nil {
			s.log.Error("API client error", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		created, err := sheetsdb.CreateMetaSpreadsheet(ctx, api)
		if err != nil {
			s.log.Error("creating meta spreadsheet failed", zap.Error(err))
			http.Error(w, "error creating meta spreadsheet", http.StatusBadGateway)
			return
		}

		s.log.Info("meta spreadsheet created", zap.String("user", identity.Email), zap.String("spreadsheet", created))

		metaID = created
	}

	if err := s.store.Put(identity.Email, metaID); err != nil {
		s.log.Error("meta store error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	next := r.FormValue("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

// apiTables is the JSON variant of the registry listing.
func (s *Server) apiTables(w http.ResponseWriter, r *http.Request, sdk *sheetsdb.SDK) {
	tables, err := sdk.Tables(r.Context())

	w.Header().Set("Content-Type", "application/json")

	encoder := json.NewEncoder(w)

	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		encoder.Encode(response{Error: err.Error()})
		return
	}

	encoder.Encode(response{Success: true, Data: tables})
}

// render executes either the override template from disk or the built-in
// page.
func (s *Server) render(w http.ResponseWriter, name, override string, page any) {
	var t *template.Template
	var err error

	if override != "" {
		t, err = template.ParseFiles(override)
	} else {
		t, err = template.New(name).ParseFS(html.HTML, name)
	}

	if err != nil {
		s.log.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error formatting page", http.StatusInternalServerError)
		return
	}

	var b bytes.Buffer
	if err := t.Execute(&b, page); err != nil {
		s.log.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "error formatting page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(b.Bytes())
}
