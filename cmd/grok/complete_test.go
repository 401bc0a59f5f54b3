package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/metalagman/grok/internal/grok"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	status  int
	body    string
	prompts []string
	auths   []string
}

func newFakeAPI(t *testing.T, status int, body string) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req grok.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}

		api.mu.Lock()
		if len(req.Messages) > 0 {
			api.prompts = append(api.prompts, req.Messages[0].Content)
		}
		api.auths = append(api.auths, r.Header.Get("Authorization"))
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		_, _ = w.Write([]byte(api.body))
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	// A nil slice makes cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRoot_SendsExamplePrompt(t *testing.T) {
	clearGrokEnv(t)
	api, srv := newFakeAPI(t, http.StatusOK, `{"choices":[{"message":{"content":"func fib(n int) int"}}]}`)
	t.Setenv("GROK_API_KEY", "xai-123")
	t.Setenv("GROK_API_ENDPOINT", srv.URL)

	stdout, _, err := execute(t, "")
	require.NoError(t, err)
	assert.Equal(t, "\nGrok Response:\nfunc fib(n int) int\n", stdout)
	assert.Equal(t, []string{examplePrompt}, api.prompts)
	assert.Equal(t, []string{"Bearer xai-123"}, api.auths)
}

func TestRoot_PrintsNoContentMessage(t *testing.T) {
	clearGrokEnv(t)
	_, srv := newFakeAPI(t, http.StatusOK, `{"choices":[]}`)
	t.Setenv("GROK_API_KEY", "xai-123")
	t.Setenv("GROK_API_ENDPOINT", srv.URL)

	stdout, _, err := execute(t, "")
	require.NoError(t, err)
	assert.Equal(t, "\nNo response content found in the API response\n", stdout)
}

func TestRoot_PrintsNoContentMessageForArrayBody(t *testing.T) {
	clearGrokEnv(t)
	_, srv := newFakeAPI(t, http.StatusOK, `[]`)
	t.Setenv("GROK_API_KEY", "xai-123")
	t.Setenv("GROK_API_ENDPOINT", srv.URL)

	stdout, _, err := execute(t, "")
	require.NoError(t, err)
	assert.Equal(t, "\nNo response content found in the API response\n", stdout)
}

func TestRoot_FailsWithoutAPIKey(t *testing.T) {
	clearGrokEnv(t)
	api, srv := newFakeAPI(t, http.StatusOK, `{}`)
	t.Setenv("GROK_API_ENDPOINT", srv.URL)

	_, stderr, err := execute(t, "")
	require.ErrorIs(t, err, grok.ErrMissingAPIKey)
	assert.Contains(t, stderr, "failed to create grok client")
	assert.Empty(t, api.prompts)
}

func TestComplete_UsesArgsAsPrompt(t *testing.T) {
	clearGrokEnv(t)
	api, srv := newFakeAPI(t, http.StatusOK, `{"choices":[{"message":{"content":"42"}}]}`)
	t.Setenv("GROK_API_KEY", "xai-123")

	stdout, _, err := execute(t, "", "complete", "--endpoint", srv.URL, "what", "is", "the", "answer")
	require.NoError(t, err)
	assert.Equal(t, "\nGrok Response:\n42\n", stdout)
	assert.Equal(t, []string{"what is the answer"}, api.prompts)
}

func TestComplete_ReadsPromptFromStdin(t *testing.T) {
	clearGrokEnv(t)
	api, srv := newFakeAPI(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	t.Setenv("GROK_API_KEY", "xai-123")
	t.Setenv("GROK_API_ENDPOINT", srv.URL)

	_, _, err := execute(t, "from stdin", "complete", "--stdin")
	require.NoError(t, err)
	assert.Equal(t, []string{"from stdin"}, api.prompts)
}

func TestComplete_RequiresPrompt(t *testing.T) {
	clearGrokEnv(t)
	t.Setenv("GROK_API_KEY", "xai-123")

	_, _, err := execute(t, "", "complete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt is required")
}

func TestComplete_PrintsRawYAML(t *testing.T) {
	clearGrokEnv(t)
	_, srv := newFakeAPI(t, http.StatusOK, `{"id":"resp-1","choices":[]}`)
	t.Setenv("GROK_API_KEY", "xai-123")
	t.Setenv("GROK_API_ENDPOINT", srv.URL)

	stdout, _, err := execute(t, "", "complete", "--raw", "--format", "yaml", "hi")
	require.NoError(t, err)
	assert.YAMLEq(t, "id: resp-1\nchoices: []\n", stdout)
}

func TestComplete_ReturnsErrorAfterSingleAttempt(t *testing.T) {
	clearGrokEnv(t)
	api, srv := newFakeAPI(t, http.StatusInternalServerError, `{"error":"internal"}`)
	t.Setenv("GROK_API_KEY", "xai-123")
	t.Setenv("GROK_API_ENDPOINT", srv.URL)

	_, stderr, err := execute(t, "", "complete", "--max-attempts", "1", "--log-format", "json", "hi")
	var statusErr *grok.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Len(t, api.prompts, 1)
	assert.Contains(t, stderr, `"message":"failed to process request"`)
	assert.NotContains(t, stderr, "xai-123")
}

func TestRoot_LoadsAPIKeyFromEnvFile(t *testing.T) {
	clearGrokEnv(t)
	api, srv := newFakeAPI(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	t.Setenv("GROK_API_ENDPOINT", srv.URL)
	// godotenv only fills variables that are absent, so drop the blank value;
	// t.Setenv restores the original state afterwards.
	require.NoError(t, os.Unsetenv("GROK_API_KEY"))

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, writeTestFile(envFile, "GROK_API_KEY=xai-from-dotenv\n"))

	_, _, err := execute(t, "", "--env-file", envFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer xai-from-dotenv"}, api.auths)
}

func TestRoot_MissingExplicitEnvFileFails(t *testing.T) {
	clearGrokEnv(t)
	t.Setenv("GROK_API_KEY", "xai-123")

	_, _, err := execute(t, "", "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	clearGrokEnv(t)

	path := filepath.Join(t.TempDir(), "grok.yaml")
	stdout, _, err := execute(t, "", "init", path)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_endpoint: https://api.x.ai/v1/chat/completions")
	assert.NotContains(t, string(data), "api_key")
}
