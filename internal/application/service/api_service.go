package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/service"
	"github.com/bravo68web/confdash/internal/infrastructure/configserver"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/tree"
	"github.com/bravo68web/confdash/internal/validation"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// APIService exposes one method per config-server operation. Every failure
// it returns has already been reported to its notifier, so callers only
// decide what to do with their own state.
type APIService struct {
	client    *configserver.Client
	validator *validation.Validator
	notifier  service.Notifier
	token     string
	log       *logger.Logger
}

// NewAPIService creates an unauthenticated facade reporting to notifier
func NewAPIService(
	client *configserver.Client,
	validator *validation.Validator,
	notifier service.Notifier,
) *APIService {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &APIService{
		client:    client,
		validator: validator,
		notifier:  notifier,
		log:       logger.Get().WithFields(logger.Component("api-service")),
	}
}

// WithToken returns a copy that authenticates as token
func (s *APIService) WithToken(token string) *APIService {
	cp := *s
	cp.token = token
	return &cp
}

// WithNotifier returns a copy reporting to n
func (s *APIService) WithNotifier(n service.Notifier) *APIService {
	cp := *s
	cp.notifier = n
	return &cp
}

// Token returns the bearer token in use
func (s *APIService) Token() string {
	return s.token
}

// Validator returns the validator shared with the forms
func (s *APIService) Validator() *validation.Validator {
	return s.validator
}

// BaseURL returns the config-server base URL
func (s *APIService) BaseURL() string {
	return s.client.BaseURL()
}

type call struct {
	endpoint string
	body     any
	form     map[string]string
	success  string
	quiet    bool
}

func (s *APIService) do(ctx context.Context, c call, out any) (*configserver.Result, error) {
	res, err := s.client.Do(ctx, configserver.Request{
		Endpoint: c.endpoint,
		Token:    s.token,
		Body:     c.body,
		Form:     c.form,
	}, out)
	if err != nil {
		if !c.quiet {
			s.notifier.Notify(notify.New(models.SeverityError, apperrors.Message(err)))
		}
		return nil, err
	}

	if !c.quiet {
		msg := res.Message
		if msg == "" {
			msg = c.success
		}
		if msg != "" {
			s.notifier.Notify(notify.New(models.SeveritySuccess, msg))
		}
	}
	return res, nil
}

// reject reports a local validation failure without touching the network
func (s *APIService) reject(err error) error {
	s.notifier.Notify(notify.New(models.SeverityWarning, apperrors.Message(err)))
	return err
}

func (s *APIService) checkRef(ref *models.FileRef) error {
	if ref.Namespace == "" {
		return s.reject(apperrors.ValidationError("namespace", "Namespace is required"))
	}
	dir, err := tree.Normalize(ref.Path)
	if err != nil {
		return s.reject(err)
	}
	ref.Path = dir
	if err := s.validator.FileName(ref.Name); err != nil {
		return s.reject(err)
	}
	return nil
}

// Namespaces

// ListNamespaces returns every namespace name
func (s *APIService) ListNamespaces(ctx context.Context) ([]string, error) {
	res, err := s.do(ctx, call{endpoint: configserver.EndpointNamespaceList}, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[string](res.Raw, "namespaces", "data")
}

// CreateNamespace validates and creates a namespace
func (s *APIService) CreateNamespace(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if err := s.validator.Namespace(name); err != nil {
		return s.reject(err)
	}
	_, err := s.do(ctx, call{
		endpoint: configserver.EndpointNamespaceCreate,
		body:     map[string]string{"namespace": name},
		success:  fmt.Sprintf("Namespace %q created", name),
	}, nil)
	if err == nil {
		s.log.Info("Namespace created", logger.Namespace(name))
	}
	return err
}

// DeleteNamespace deletes a namespace and everything in it
func (s *APIService) DeleteNamespace(ctx context.Context, name string) error {
	if name == "" {
		return s.reject(apperrors.ValidationError("namespace", "Namespace is required"))
	}
	_, err := s.do(ctx, call{
		endpoint: configserver.EndpointNamespaceDelete,
		body:     map[string]string{"namespace": name},
		success:  fmt.Sprintf("Namespace %q deleted", name),
	}, nil)
	if err == nil {
		s.log.Info("Namespace deleted", logger.Namespace(name))
	}
	return err
}

// ListFiles returns one directory level of a namespace tree
func (s *APIService) ListFiles(ctx context.Context, namespace, dir string) ([]models.TreeEntry, error) {
	dir, err := tree.Normalize(dir)
	if err != nil {
		return nil, s.reject(err)
	}
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointNamespaceFiles,
		body:     map[string]string{"namespace": namespace, "path": dir},
	}, nil)
	if err != nil {
		return nil, err
	}
	names, err := decodeList[string](res.Raw, "files", "data")
	if err != nil {
		return nil, err
	}
	entries := make([]models.TreeEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, models.TreeEntry{Name: n})
	}
	return entries, nil
}

// Config files

type fileBody struct {
	Action    string `json:"action"`
	AppName   string `json:"appName"`
	Namespace string `json:"namespace"`
	Path      string `json:"path"`
	Email     string `json:"email"`
	Content   string `json:"content,omitempty"`
	Message   string `json:"message,omitempty"`
	CommitID  string `json:"commitId,omitempty"`
}

func newFileBody(action string, ref models.FileRef, email string) fileBody {
	return fileBody{
		Action:    action,
		AppName:   ref.Name,
		Namespace: ref.Namespace,
		Path:      ref.Path,
		Email:     email,
	}
}

// FetchFile reads a file and the commit id it is at
func (s *APIService) FetchFile(ctx context.Context, ref models.FileRef, email string) (*models.FileContent, error) {
	if err := s.checkRef(&ref); err != nil {
		return nil, err
	}
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointConfigFetch,
		body:     newFileBody(configserver.ActionFetch, ref, email),
	}, nil)
	if err != nil {
		return nil, err
	}

	var fc models.FileContent
	if trimmed := bytes.TrimSpace(res.Raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &fc); err != nil {
			return nil, unexpected(err)
		}
		return &fc, nil
	}
	// plain-text body without a commit id
	fc.Content = string(res.Raw)
	return &fc, nil
}

// CreateFile creates a new file with an initial commit
func (s *APIService) CreateFile(ctx context.Context, ref models.FileRef, content, message, email string) (*models.SaveResult, error) {
	if err := s.checkRef(&ref); err != nil {
		return nil, err
	}
	if err := s.checkCommit(ref.Name, content, message); err != nil {
		return nil, err
	}
	body := newFileBody(configserver.ActionCreate, ref, email)
	body.Content = content
	body.Message = message

	var out models.SaveResult
	if _, err := s.do(ctx, call{
		endpoint: configserver.EndpointConfigCreate,
		body:     body,
		success:  fmt.Sprintf("Created %s", ref.FullPath()),
	}, &out); err != nil {
		return nil, err
	}
	s.log.Info("Config file created",
		logger.Namespace(ref.Namespace), logger.FilePath(ref.FullPath()), logger.CommitID(out.CommitID))
	return &out, nil
}

// UpdateInput carries everything a save needs, including the commit id the
// edit was based on
type UpdateInput struct {
	Ref      models.FileRef
	Content  string
	Message  string
	CommitID string
	Email    string
}

// UpdateFile commits new content. The backend rejects stale commit ids.
func (s *APIService) UpdateFile(ctx context.Context, in UpdateInput) (*models.SaveResult, error) {
	ref := in.Ref
	if err := s.checkRef(&ref); err != nil {
		return nil, err
	}
	if err := s.checkCommit(ref.Name, in.Content, in.Message); err != nil {
		return nil, err
	}
	body := newFileBody(configserver.ActionUpdate, ref, in.Email)
	body.Content = in.Content
	body.Message = in.Message
	body.CommitID = in.CommitID

	var out models.SaveResult
	if _, err := s.do(ctx, call{
		endpoint: configserver.EndpointConfigUpdate,
		body:     body,
		success:  "Changes committed",
	}, &out); err != nil {
		return nil, err
	}
	s.log.Info("Config file updated",
		logger.Namespace(ref.Namespace), logger.FilePath(ref.FullPath()), logger.CommitID(out.CommitID))
	return &out, nil
}

// DeleteFile removes a file
func (s *APIService) DeleteFile(ctx context.Context, ref models.FileRef, message, email string) error {
	if err := s.checkRef(&ref); err != nil {
		return err
	}
	if message == "" {
		message = "Delete " + ref.FullPath()
	}
	body := newFileBody(configserver.ActionDelete, ref, email)
	body.Message = message
	_, err := s.do(ctx, call{
		endpoint: configserver.EndpointConfigDelete,
		body:     body,
		success:  fmt.Sprintf("Deleted %s", ref.FullPath()),
	}, nil)
	return err
}

// FileHistory returns the commits that touched a file
func (s *APIService) FileHistory(ctx context.Context, ref models.FileRef) ([]models.Commit, error) {
	if err := s.checkRef(&ref); err != nil {
		return nil, err
	}
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointConfigHistory,
		body: map[string]string{
			"appName":   ref.Name,
			"namespace": ref.Namespace,
			"path":      ref.Path,
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Commit](res.Raw, "history", "commits", "data")
}

// FileChanges returns the unified diff introduced by a commit
func (s *APIService) FileChanges(ctx context.Context, ref models.FileRef, commitID string) (string, error) {
	if err := s.checkRef(&ref); err != nil {
		return "", err
	}
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointConfigChanges,
		body: map[string]string{
			"appName":   ref.Name,
			"namespace": ref.Namespace,
			"path":      ref.Path,
			"commitId":  commitID,
		},
	}, nil)
	if err != nil {
		return "", err
	}
	return decodeText(res.Raw, "diff", "changes", "data"), nil
}

func (s *APIService) checkCommit(name, content, message string) error {
	if err := s.validator.CommitMessage(message); err != nil {
		return s.reject(err)
	}
	if validation.IsYAML(name) {
		if err := validation.YAML(content); err != nil {
			return s.reject(err)
		}
	}
	return nil
}

// Vault

// GetVaultSecrets reads the whole secret map of a namespace
func (s *APIService) GetVaultSecrets(ctx context.Context, namespace, email string) (models.Secrets, error) {
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointVaultGet,
		body:     map[string]string{"namespace": namespace, "email": email},
	}, nil)
	if err != nil {
		return nil, err
	}
	return decodeSecrets(res.Raw)
}

// UpdateVaultSecrets replaces the whole secret map of a namespace
func (s *APIService) UpdateVaultSecrets(ctx context.Context, namespace, email, message string, secrets models.Secrets) error {
	if err := s.validator.CommitMessage(message); err != nil {
		return s.reject(err)
	}
	if secrets == nil {
		secrets = models.Secrets{}
	}
	_, err := s.do(ctx, call{
		endpoint: configserver.EndpointVaultUpdate,
		body: map[string]any{
			"namespace": namespace,
			"email":     email,
			"message":   message,
			"secrets":   secrets,
		},
		success: "Vault updated",
	}, nil)
	if err == nil {
		s.log.Info("Vault updated", logger.Namespace(namespace), logger.Int("keys", len(secrets)))
	}
	return err
}

// VaultHistory returns the commits of a namespace vault
func (s *APIService) VaultHistory(ctx context.Context, namespace string) ([]models.Commit, error) {
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointVaultHistory,
		body:     map[string]string{"namespace": namespace},
	}, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Commit](res.Raw, "history", "commits", "data")
}

// VaultChanges returns the unified diff of one vault commit
func (s *APIService) VaultChanges(ctx context.Context, namespace, commitID string) (string, error) {
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointVaultChanges,
		body:     map[string]string{"namespace": namespace, "commitId": commitID},
	}, nil)
	if err != nil {
		return "", err
	}
	return decodeText(res.Raw, "diff", "changes", "data"), nil
}

// Feeds

// ListNotifications returns the notification delivery records of a namespace
func (s *APIService) ListNotifications(ctx context.Context, namespace string) ([]models.NotifyRecord, error) {
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointNotifyList,
		body:     map[string]string{"namespace": namespace},
	}, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.NotifyRecord](res.Raw, "notifications", "data")
}

// ListEvents returns the commit feed of a namespace
func (s *APIService) ListEvents(ctx context.Context, namespace string) ([]models.Event, error) {
	res, err := s.do(ctx, call{
		endpoint: configserver.EndpointEventsList,
		body:     map[string]string{"namespace": namespace},
	}, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Event](res.Raw, "events", "data")
}

// Auth

type loginResponse struct {
	Token       string       `json:"token"`
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

// Login exchanges a username and password for a bearer token
func (s *APIService) Login(ctx context.Context, username, password string) (*models.Credentials, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, s.reject(apperrors.ValidationError("username", "Username and password are required"))
	}
	var out loginResponse
	if _, err := s.do(ctx, call{
		endpoint: configserver.EndpointAuthLogin,
		form:     map[string]string{"username": username, "password": password},
	}, &out); err != nil {
		return nil, err
	}

	token := out.Token
	if token == "" {
		token = out.AccessToken
	}
	if token == "" {
		err := apperrors.NewAppError(apperrors.CodeBadGateway, "Login response did not include a token", apperrors.ErrRemote)
		s.notifier.Notify(notify.New(models.SeverityError, err.Message))
		return nil, err
	}
	user := out.User
	if user == nil {
		user = &models.User{Username: username}
	}
	s.log.Info("Signed in", logger.Username(user.Username))
	return &models.Credentials{Token: token, User: user}, nil
}

// Logout ends the session on the backend
func (s *APIService) Logout(ctx context.Context) error {
	_, err := s.do(ctx, call{endpoint: configserver.EndpointAuthLogout, quiet: true}, nil)
	return err
}

// Verify asks the backend whether the token is still accepted. It reports nothing.
func (s *APIService) Verify(ctx context.Context) (*models.User, error) {
	var out struct {
		Valid *bool        `json:"valid"`
		User  *models.User `json:"user"`
	}
	res, err := s.do(ctx, call{endpoint: configserver.EndpointAuthVerify, quiet: true}, nil)
	if err != nil {
		return nil, err
	}
	// a 2xx without a JSON object still counts as valid
	if t := bytes.TrimSpace(res.Raw); len(t) > 0 && t[0] == '{' {
		_ = json.Unmarshal(t, &out)
	}
	if out.Valid != nil && !*out.Valid {
		return nil, apperrors.SessionExpired()
	}
	return out.User, nil
}

// decodeList accepts a bare JSON array or an object wrapping it under one of keys
func decodeList[T any](raw []byte, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	var list []T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, unexpected(err)
		}
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, unexpected(err)
	}
	for _, k := range keys {
		if inner, ok := obj[k]; ok {
			return decodeList[T](inner, keys...)
		}
	}
	return []T{}, nil
}

// decodeText accepts a JSON string, an object holding the text under one of
// keys, or a plain-text body
func decodeText(raw []byte, keys ...string) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return s
		}
	case '{':
		var obj map[string]json.RawMessage
		if json.Unmarshal(trimmed, &obj) == nil {
			for _, k := range keys {
				if inner, ok := obj[k]; ok {
					return decodeText(inner, keys...)
				}
			}
			return ""
		}
	}
	return string(raw)
}

// decodeSecrets accepts a bare map or {secrets: map}. Non-string values are
// rendered with their JSON text.
func decodeSecrets(raw []byte) (models.Secrets, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.Secrets{}, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, unexpected(err)
	}
	if inner, ok := obj["secrets"]; ok && len(obj) <= 3 {
		if t := bytes.TrimSpace(inner); len(t) > 0 && (t[0] == '{' || bytes.Equal(t, []byte("null"))) {
			return decodeSecrets(inner)
		}
	}

	out := make(models.Secrets, len(obj))
	for k, v := range obj {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		out[k] = string(bytes.TrimSpace(v))
	}
	return out, nil
}

func unexpected(err error) error {
	return apperrors.NewAppError(apperrors.CodeBadGateway, "Unexpected response from config server", err)
}
