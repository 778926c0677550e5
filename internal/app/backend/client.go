// internal/app/backend/client.go
//
// Client for the CRM REST backend. The backend owns contact storage, audit
// logging, and the cookie/bearer session it issues after the external-auth
// exchange; this app only consumes its JSON surface.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

// ErrUnauthenticated is returned when the backend answers 401. Callers use
// errors.Is on it to decide whether to fall back to demo mode or treat a
// feed as empty; it is never surfaced to the user as a hard error.
var ErrUnauthenticated = errors.New("backend: unauthenticated")

// APIError carries a non-401 error response so handlers can show the
// server-provided message when one exists.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: unexpected status %d", e.Status)
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New constructs a backend Client for the given base URL.
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// ContactQuery mirrors the backend's list parameters. Page here is
// zero-based like everywhere else in this app; the wire format is 1-based.
type ContactQuery struct {
	Search    string
	Company   string
	Status    string
	Tag       string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ContactPage is the backend's list response.
type ContactPage struct {
	Contacts []models.Contact `json:"contacts"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Me returns the identity bound to the current session token.
// GET /api/auth/me
func (c *Client) Me(ctx context.Context, token string) (*models.Identity, error) {
	var id models.Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// ExchangeSession trades a one-time external-auth session id for an
// authenticated identity. POST /api/auth/session?session_id=…
func (c *Client) ExchangeSession(ctx context.Context, sessionID string) (*models.Identity, error) {
	path := "/api/auth/session?session_id=" + url.QueryEscape(sessionID)
	var id models.Identity
	if err := c.do(ctx, http.MethodPost, path, "", nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Logout invalidates the backend session. POST /api/auth/logout
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// ListContacts fetches one page of contacts. GET /api/contacts
func (c *Client) ListContacts(ctx context.Context, token string, q ContactQuery) (*ContactPage, error) {
	vals := url.Values{}
	// The backend counts pages from 1.
	vals.Set("page", strconv.Itoa(q.Page+1))
	if q.PageSize > 0 {
		vals.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Company != "" {
		vals.Set("company", q.Company)
	}
	if q.Status != "" {
		vals.Set("status", q.Status)
	}
	if q.Tag != "" {
		vals.Set("tag", q.Tag)
	}
	if q.SortBy != "" {
		vals.Set("sort_by", q.SortBy)
		if q.SortOrder != "" {
			vals.Set("sort_order", q.SortOrder)
		}
	}

	var page ContactPage
	if err := c.do(ctx, http.MethodGet, "/api/contacts?"+vals.Encode(), token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateContact stores a new contact; the backend assigns the id.
// POST /api/contacts
func (c *Client) CreateContact(ctx context.Context, token string, in models.Contact) (*models.Contact, error) {
	var out models.Contact
	if err := c.do(ctx, http.MethodPost, "/api/contacts", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateContact replaces the mutable fields of an existing contact.
// PUT /api/contacts/{id}
func (c *Client) UpdateContact(ctx context.Context, token, id string, in models.Contact) (*models.Contact, error) {
	var out models.Contact
	if err := c.do(ctx, http.MethodPut, "/api/contacts/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContact removes a contact by id. DELETE /api/contacts/{id}
func (c *Client) DeleteContact(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/contacts/"+url.PathEscape(id), token, nil, nil)
}

// AuditLogs returns the audit feed, newest-first as the backend delivers it.
// GET /api/audit/logs
func (c *Client) AuditLogs(ctx context.Context, token string) ([]models.AuditEntry, error) {
	var out struct {
		Logs []models.AuditEntry `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/audit/logs", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// Ping probes backend reachability for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend: health returned %d", resp.StatusCode)
	}
	return nil
}

// do performs one JSON request/response exchange. A 401 maps to
// ErrUnauthenticated; other non-2xx statuses map to *APIError carrying the
// server's "detail" or "message" field when present.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readErrMessage(resp.Body)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

func readErrMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}
