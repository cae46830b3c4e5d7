package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Model: "test-model"}, zerolog.Nop())
}

func TestGenerateSendsFixedParameters(t *testing.T) {
	var got generateRequest
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": `{"title":"Test Problem"}`})
	})

	raw, err := client.Generate(context.Background(), "hola")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Test Problem"}`, string(raw))
	assert.Equal(t, generateRequest{Model: "test-model", Prompt: "hola", Format: "json", Stream: false}, got)
}

func TestGenerateDefaultsModel(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:11434"}, zerolog.Nop())
	assert.Equal(t, "llama3.2", client.model)
	assert.Equal(t, "http://127.0.0.1:11434/api/generate", client.generateURL)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Generate(context.Background(), "hola")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Contains(t, err.Error(), "Bad Gateway")
}

func TestGenerateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(Config{BaseURL: srv.URL}, zerolog.Nop())
	srv.Close()

	_, err := client.Generate(context.Background(), "hola")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.NotNil(t, upstream.Err)
}

func TestGenerateMalformedReplies(t *testing.T) {
	cases := map[string]string{
		"not json envelope":  `<html>`,
		"missing response":   `{"done":true}`,
		"response not json":  `{"response":"Aquí tienes tu problema"}`,
		"truncated response": `{"response":"{\"title\": \"x\""}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := client.Generate(context.Background(), "hola")
			var malformed *MalformedResponseError
			assert.True(t, errors.As(err, &malformed), "got %v", err)
		})
	}
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "upstream_error", outcome(&UpstreamError{Status: "500"}))
	assert.Equal(t, "malformed", outcome(&MalformedResponseError{Reason: "x"}))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
