package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

func messageHandler(t *testing.T, text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_test_001",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": text},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  10,
				"output_tokens": 5,
			},
		})
	}
}

func TestSDKClient_CreateMessage(t *testing.T) {
	ts := httptest.NewServer(messageHandler(t, `{"company_profile":"x"}`))
	defer ts.Close()

	client := NewClient("test-key", WithBaseURL(ts.URL))
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1200,
		System:    "Return JSON only.",
		Messages:  []Message{{Role: "user", Content: "Hello"}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, `{"company_profile":"x"}`, resp.Text())
	assert.Equal(t, int64(10), resp.Usage.InputTokens)
	assert.Equal(t, int64(5), resp.Usage.OutputTokens)
}

func TestSDKClient_CreateMessage_SendsParams(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		messageHandler(t, "ok")(w, r)
	}))
	defer ts.Close()

	temp := 0.2
	client := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:       "claude-haiku-4-5-20251001",
		MaxTokens:   321,
		Messages:    []Message{{Role: "user", Content: "Hi"}},
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.InDelta(t, 321, body["max_tokens"], 0)
	assert.InDelta(t, 0.2, body["temperature"], 0.0001)
	assert.NotContains(t, body, "system")
}

func TestSDKClient_CreateMessage_ErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}))
	defer ts.Close()

	client := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "Hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestStatusCode_NonAPIError(t *testing.T) {
	assert.Equal(t, 0, StatusCode(assert.AnError))
	assert.Equal(t, 0, StatusCode(nil))
}

func TestCreateMessage_MockClient(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()
	req := MessageRequest{Model: "m", MaxTokens: 10, Messages: []Message{{Role: "user", Content: "q"}}}

	mc.On("CreateMessage", ctx, req).Return(&MessageResponse{
		Content: []ContentBlock{{Type: "text", Text: "a"}, {Type: "tool_use"}, {Type: "text", Text: "b"}},
	}, nil).Once()

	resp, err := mc.CreateMessage(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "ab", resp.Text())
	mc.AssertExpectations(t)
}

func TestToSDKMessages_Roles(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
		{Role: "other", Content: "x"},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
}
