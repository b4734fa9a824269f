package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SourceNotFoundError means the repository is not registered with the agent
// backend. Registering it is an administrative action, so this is never
// retried.
type SourceNotFoundError struct {
	Identifier string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %q is not registered with the agent backend", e.Identifier)
}

// Source is a repository registered with the agent backend.
type Source struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Session is a server-managed unit of agentic work.
type Session struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	State string `json:"state"`
}

// Session states. The first four come from the backend; timed_out is
// synthesized client-side by the poller.
const (
	StateCreated    = "created"
	StateInProgress = "in_progress"
	StateCompleted  = "completed"
	StateFailed     = "failed"
	StateTimedOut   = "timed_out"
)

// Client talks to a session-based agent backend over REST.
type Client struct {
	baseURL string
	apiKey  string
	httpCli *http.Client
}

// NewClient creates a client with an explicit base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}
}

// ListSources returns the repositories registered with the backend.
func (c *Client) ListSources(ctx context.Context) ([]Source, error) {
	var result struct {
		Sources []Source `json:"sources"`
	}
	if err := c.get(ctx, "/sources", &result); err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return result.Sources, nil
}

// FindSource resolves a logical repository identifier against the registered
// sources. The identifier matches either the full resource name or its
// trailing segments (e.g. "github/acme/widgets").
func (c *Client) FindSource(ctx context.Context, identifier string) (Source, error) {
	sources, err := c.ListSources(ctx)
	if err != nil {
		return Source{}, err
	}
	for _, s := range sources {
		if s.Name == identifier || strings.HasSuffix(s.Name, "/"+identifier) || s.ID == identifier {
			return s, nil
		}
	}
	return Source{}, &SourceNotFoundError{Identifier: identifier}
}

// CreateSessionRequest carries the parameters for starting a review session.
type CreateSessionRequest struct {
	Prompt         string
	Source         Source
	StartingBranch string
	Title          string
}

type wireCreateSession struct {
	Prompt        string            `json:"prompt"`
	Title         string            `json:"title,omitempty"`
	SourceContext wireSourceContext `json:"sourceContext"`
}

type wireSourceContext struct {
	Source            string                 `json:"source"`
	GithubRepoContext *wireGithubRepoContext `json:"githubRepoContext,omitempty"`
}

type wireGithubRepoContext struct {
	StartingBranch string `json:"startingBranch"`
}

// CreateSession starts a new session in the created state.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	body := wireCreateSession{
		Prompt: req.Prompt,
		Title:  req.Title,
		SourceContext: wireSourceContext{
			Source: req.Source.Name,
		},
	}
	if req.StartingBranch != "" {
		body.SourceContext.GithubRepoContext = &wireGithubRepoContext{
			StartingBranch: req.StartingBranch,
		}
	}

	var sess Session
	if err := c.post(ctx, "/sessions", body, &sess); err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	if sess.ID == "" && sess.Name != "" {
		// Resource names look like "sessions/<id>".
		if i := strings.LastIndex(sess.Name, "/"); i >= 0 {
			sess.ID = sess.Name[i+1:]
		}
	}
	if sess.State == "" {
		sess.State = StateCreated
	}
	return sess, nil
}

// GetSession fetches the session's current state.
func (c *Client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	var sess Session
	if err := c.get(ctx, "/sessions/"+sessionID, &sess); err != nil {
		return Session{}, fmt.Errorf("fetching session %s: %w", sessionID, err)
	}
	if sess.ID == "" {
		sess.ID = sessionID
	}
	return sess, nil
}

// ListActivities fetches the session's activity stream, oldest first.
func (c *Client) ListActivities(ctx context.Context, sessionID string) ([]Activity, error) {
	var result struct {
		Activities []Activity `json:"activities"`
	}
	path := fmt.Sprintf("/sessions/%s/activities", sessionID)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("listing activities for session %s: %w", sessionID, err)
	}
	return result.Activities, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, "GET", path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return c.do(ctx, "POST", path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("agent API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
