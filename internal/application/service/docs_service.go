package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/pkg/logger"
)

// Docs is the documentation page content
type Docs struct {
	Markdown string
	Source   string
	Fallback bool
}

// DocsService fetches the config-server README from GitHub and falls back
// to a built-in summary when that fails
type DocsService struct {
	gh       *github.Client
	cfg      config.DocsConfig
	cacheTTL time.Duration
	log      *logger.Logger

	mu       sync.Mutex
	cached   *Docs
	cachedAt time.Time
}

// NewDocsService creates a DocsService
func NewDocsService(cfg config.DocsConfig, httpClient *http.Client) *DocsService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
		if cfg.Token != "" {
			ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
			httpClient = oauth2.NewClient(ctx, ts)
		}
	}
	gh := github.NewClient(httpClient)
	if cfg.APIURL != "" {
		if u, err := url.Parse(strings.TrimRight(cfg.APIURL, "/") + "/"); err == nil {
			gh.BaseURL = u
		}
	}
	return &DocsService{
		gh:       gh,
		cfg:      cfg,
		cacheTTL: 10 * time.Minute,
		log:      logger.Get().WithFields(logger.Component("docs-service")),
	}
}

// Get returns the README, cached for a few minutes
func (s *DocsService) Get(ctx context.Context) *Docs {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.cachedAt) < s.cacheTTL {
		d := *s.cached
		s.mu.Unlock()
		return &d
	}
	s.mu.Unlock()

	docs, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn("Falling back to built-in docs", logger.Error(err))
		return &Docs{Markdown: s.cfg.Fallback, Source: "built-in", Fallback: true}
	}

	s.mu.Lock()
	s.cached, s.cachedAt = docs, time.Now()
	s.mu.Unlock()
	return docs
}

func (s *DocsService) fetch(ctx context.Context) (*Docs, error) {
	var opts *github.RepositoryContentGetOptions
	if s.cfg.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: s.cfg.Ref}
	}
	readme, _, err := s.gh.Repositories.GetReadme(ctx, s.cfg.Owner, s.cfg.Repo, opts)
	if err != nil {
		return nil, err
	}
	content, err := readme.GetContent()
	if err != nil {
		return nil, err
	}
	return &Docs{Markdown: content, Source: readme.GetHTMLURL()}, nil
}
