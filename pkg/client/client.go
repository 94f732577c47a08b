// Package client is a typed HTTP client for the admin dashboard API.
package client

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
	"sync"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
)

var emailValidator = govalidator.New()

// Client talks to the backend on behalf of one admin session.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	session *Session
	onSave  func(*Session) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSessionSaver is called whenever the session changes (login, refresh, logout).
func WithSessionSaver(save func(*Session) error) Option {
	return func(c *Client) { c.onSave = save }
}

// New constructs a client. sess may be nil for a logged-out client.
func New(baseURL string, sess *Session, opts ...Option) *Client {
	if sess == nil {
		sess = &Session{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.session
}

// ─── Responses ──────────────────────────────────────────────────────

// Me is the account behind the session.
type Me struct {
	User        model.User `json:"user"`
	Permissions []string   `json:"permissions"`
}

// Page is one window of a list endpoint.
type Page[T any] struct {
	Items   []T
	Page    int
	Limit   int
	HasMore bool
	Status  string
}

// ListOptions selects a window of /api/users. Zero values use server defaults.
type ListOptions struct {
	Page   int
	Limit  int
	Status string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	HasMore bool   `json:"hasMore"`
	Status  string `json:"status"`
}

type decisionResult struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

// ─── Auth ───────────────────────────────────────────────────────────

// Login authenticates an admin and stores the tokens in the session.
func (c *Client) Login(ctx context.Context, identifier, password string) (*model.LoginResponse, error) {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return nil, ErrValidation
	}
	var resp model.LoginResponse
	body := map[string]string{"identifier": identifier, "password": password}
	if _, err := c.send(ctx, http.MethodPost, "/api/admin/auth/login", body, &resp, false); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session.AccessToken = resp.Token
	c.session.RefreshToken = resp.RefreshToken
	c.session.User = resp.User
	c.session.Permissions = resp.Permissions
	err := c.saveLocked()
	c.mu.Unlock()
	return &resp, err
}

// Logout revokes the refresh token and clears the session. The local
// session is cleared even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.session.RefreshToken
	c.mu.Unlock()

	var callErr error
	if refresh != "" {
		_, callErr = c.send(ctx, http.MethodPost, "/api/admin/auth/logout", model.RefreshRequest{RefreshToken: refresh}, nil, false)
	}

	c.mu.Lock()
	*c.session = Session{}
	saveErr := c.saveLocked()
	c.mu.Unlock()
	return errors.Join(callErr, saveErr)
}

// Me returns the logged-in admin and its permissions.
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.call(ctx, http.MethodGet, "/api/admin/auth/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// ─── Approval ───────────────────────────────────────────────────────

// Pending lists registrations awaiting review, oldest first.
func (c *Client) Pending(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.call(ctx, http.MethodGet, "/api/admin/auth/pending-users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Approve approves a pending registration.
func (c *Client) Approve(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var res decisionResult
	if err := c.call(ctx, http.MethodPost, "/api/admin/auth/approve-user/"+id.String(), nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Reject rejects a pending registration. A blank reason is refused locally.
func (c *Client) Reject(ctx context.Context, id uuid.UUID, reason string) (*model.User, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &APIError{Message: "Ret gerekçesi boş bırakılamaz.", kind: ErrValidation}
	}
	var res decisionResult
	body := model.RejectRequest{Reason: reason}
	if err := c.call(ctx, http.MethodPost, "/api/admin/auth/reject-user/"+id.String(), body, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Users lists the registry, optionally filtered by status.
func (c *Client) Users(ctx context.Context, opts ListOptions) (*Page[model.User], error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	p := "/api/users"
	if len(q) > 0 {
		p += "?" + q.Encode()
	}

	page := &Page[model.User]{}
	env, err := c.callEnvelope(ctx, http.MethodGet, p, nil, &page.Items)
	if err != nil {
		return nil, err
	}
	page.Page, page.Limit, page.HasMore, page.Status = env.Page, env.Limit, env.HasMore, env.Status
	return page, nil
}

// Alumni lists the public roster. No session is needed.
func (c *Client) Alumni(ctx context.Context, pageNum, limit int) (*Page[model.PublicProfile], error) {
	q := url.Values{}
	if pageNum > 0 {
		q.Set("page", strconv.Itoa(pageNum))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	p := "/api/public/alumni"
	if len(q) > 0 {
		p += "?" + q.Encode()
	}

	page := &Page[model.PublicProfile]{}
	env, err := c.send(ctx, http.MethodGet, p, nil, &page.Items, false)
	if err != nil {
		return nil, err
	}
	page.Page, page.Limit, page.HasMore, page.Status = env.Page, env.Limit, env.HasMore, env.Status
	return page, nil
}

// FilterApproved keeps users whose status is approved, ignoring case.
func FilterApproved(users []model.User) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if strings.EqualFold(string(u.Status), string(model.StatusApproved)) {
			out = append(out, u)
		}
	}
	return out
}

// ─── Role management ────────────────────────────────────────────────

// ListAdmins lists accounts holding an admin role.
func (c *Client) ListAdmins(ctx context.Context) ([]model.AdminSummary, error) {
	var res struct {
		Admins []model.AdminSummary `json:"admins"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/admin/management/list-admins", nil, &res); err != nil {
		return nil, withRoleMessage(err)
	}
	return res.Admins, nil
}

// SetRole assigns role to the account with the given email.
func (c *Client) SetRole(ctx context.Context, email, role string) (*model.User, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	r, err := model.ParseAdminRole(role)
	if err != nil || !r.Assignable() {
		return nil, &APIError{Message: "Geçersiz rol: " + role, kind: ErrValidation}
	}
	var res decisionResult
	body := model.SetRoleRequest{Email: strings.TrimSpace(email), Role: string(r)}
	if err := c.call(ctx, http.MethodPost, "/api/admin/management/set-role", body, &res); err != nil {
		return nil, withRoleMessage(err)
	}
	return &res.User, nil
}

// RemoveRole clears the admin role of the account with the given email.
func (c *Client) RemoveRole(ctx context.Context, email string) (*model.User, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	var res decisionResult
	body := model.RemoveRoleRequest{Email: strings.TrimSpace(email)}
	if err := c.call(ctx, http.MethodPost, "/api/admin/management/remove-role", body, &res); err != nil {
		return nil, withRoleMessage(err)
	}
	return &res.User, nil
}

func checkEmail(email string) error {
	if emailValidator.Var(strings.TrimSpace(email), "required,email") != nil {
		return &APIError{Message: "Geçerli bir e-posta adresi girin.", kind: ErrValidation}
	}
	return nil
}

// ─── Transport ──────────────────────────────────────────────────────

func (c *Client) call(ctx context.Context, method, p string, in, out any) error {
	_, err := c.callEnvelope(ctx, method, p, in, out)
	return err
}

// callEnvelope sends an authenticated request. On 401 it refreshes the
// token pair once and retries.
func (c *Client) callEnvelope(ctx context.Context, method, p string, in, out any) (*envelope, error) {
	env, err := c.send(ctx, method, p, in, out, true)
	if !errors.Is(err, ErrUnauthorized) {
		return env, err
	}
	if refreshErr := c.refresh(ctx); refreshErr != nil {
		return env, err
	}
	return c.send(ctx, method, p, in, out, true)
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.session.RefreshToken
	c.mu.Unlock()
	if refresh == "" {
		return ErrUnauthorized
	}

	var pair model.TokenPair
	if _, err := c.send(ctx, http.MethodPost, "/api/admin/auth/refresh", model.RefreshRequest{RefreshToken: refresh}, &pair, false); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.AccessToken = pair.Token
	c.session.RefreshToken = pair.RefreshToken
	return c.saveLocked()
}

func (c *Client) saveLocked() error {
	if c.onSave == nil {
		return nil
	}
	return c.onSave(c.session)
}

// send performs one round trip and decodes the envelope's data into out.
func (c *Client) send(ctx context.Context, method, p string, in, out any, auth bool) (*envelope, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		c.mu.Lock()
		token := c.session.AccessToken
		c.mu.Unlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 400 {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, kind: kindFor(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Fields = env.Error.Fields
		}
		return &env, apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}
