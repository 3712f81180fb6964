package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"coderoom/internal/models"
)

// DefaultURL is the public Piston execute endpoint.
const DefaultURL = "https://emkc.org/api/v2/piston/execute"

// languageIDs maps editor display names to execution service
// identifiers. Unknown names fall back to the lowercased input.
var languageIDs = map[string]string{
	"Java":       "java",
	"Python":     "python",
	"Javascript": "javascript",
	"cpp":        "cpp",
}

func NormalizeLanguage(name string) string {
	if id, ok := languageIDs[name]; ok {
		return id
	}
	return strings.ToLower(name)
}

// SupportedLanguages lists the display names with a known execution
// service identifier, sorted by name.
func SupportedLanguages() []models.LanguageOption {
	out := make([]models.LanguageOption, 0, len(languageIDs))
	for name, id := range languageIDs {
		out = append(out, models.LanguageOption{Name: name, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Client talks to a Piston-compatible execution service. The service is
// a black box: one POST per run, no retries, no streaming.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Execute submits the request and returns the decoded response. An empty
// version is sent as "*", meaning the service's latest available build.
// Any transport error, non-2xx status, or response without a run object
// is returned as an error.
func (c *Client) Execute(ctx context.Context, req models.ExecRequest) (models.ExecResponse, error) {
	if req.Version == "" {
		req.Version = "*"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return models.ExecResponse{}, fmt.Errorf("failed to encode execution request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return models.ExecResponse{}, fmt.Errorf("failed to build execution request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.ExecResponse{}, fmt.Errorf("failed to call execution service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return models.ExecResponse{}, fmt.Errorf("execution service returned status %d", resp.StatusCode)
	}

	var out models.ExecResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ExecResponse{}, fmt.Errorf("failed to decode execution response: %w", err)
	}
	if out.Run == nil {
		return models.ExecResponse{}, fmt.Errorf("execution response missing run result")
	}
	return out, nil
}
