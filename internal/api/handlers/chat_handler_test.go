package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"resume-chatbot/internal/dto"
	"resume-chatbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChatService struct {
	result      *service.TurnResult
	err         error
	gotMessage  string
	gotLanguage string
	gotExclude  map[string]struct{}
}

func (f *fakeChatService) HandleTurn(ctx context.Context, message, language string, exclude map[string]struct{}) (*service.TurnResult, error) {
	f.gotMessage = message
	f.gotLanguage = language
	f.gotExclude = exclude
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeChatService) InitialSuggestions(language string, exclude map[string]struct{}) ([]string, string) {
	f.gotLanguage = language
	f.gotExclude = exclude
	return []string{"경력", "주요기술"}, service.TopicInitial
}

func newTestApp(svc ChatService) *fiber.App {
	app := fiber.New()
	handler := NewChatHandler(svc, zap.NewNop())
	app.Post("/api/v1/chat", handler.Chat)
	app.Get("/api/v1/suggestions", handler.Suggestions)
	return app
}

func postChat(t *testing.T, app *fiber.App, body dto.ChatRequest, headers map[string]string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestChatHappyPath(t *testing.T) {
	svc := &fakeChatService{result: &service.TurnResult{
		Response:    "5년입니다.",
		Images:      []string{"/img/a.png"},
		Suggestions: []string{"주요기술"},
		Topic:       "career",
	}}
	app := newTestApp(svc)

	resp := postChat(t, app, dto.ChatRequest{Message: "경력", Language: "ko"}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[dto.ChatResponse](t, resp)
	assert.Equal(t, "5년입니다.", body.Response)
	assert.Equal(t, []string{"/img/a.png"}, body.Images)
	assert.Equal(t, "career", body.Topic)
	assert.Equal(t, "ko", body.Language)
	assert.Equal(t, "경력", svc.gotMessage)
}

func TestChatEmptyMessageIsBadRequest(t *testing.T) {
	svc := &fakeChatService{result: &service.TurnResult{}}
	app := newTestApp(svc)

	resp := postChat(t, app, dto.ChatRequest{Message: "   ", Language: "ko"}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, svc.gotMessage)
}

func TestChatParsesUsedSuggestionsHeader(t *testing.T) {
	svc := &fakeChatService{result: &service.TurnResult{Response: "ok"}}
	app := newTestApp(svc)

	postChat(t, app, dto.ChatRequest{Message: "경력", Language: "ko"}, map[string]string{
		"X-Used-Suggestions": `["경력","주요기술"]`,
	})

	assert.Len(t, svc.gotExclude, 2)
	assert.Contains(t, svc.gotExclude, "경력")
	assert.Contains(t, svc.gotExclude, "주요기술")
}

func TestChatMalformedUsedSuggestionsHeaderIsIgnored(t *testing.T) {
	svc := &fakeChatService{result: &service.TurnResult{Response: "ok"}}
	app := newTestApp(svc)

	resp := postChat(t, app, dto.ChatRequest{Message: "경력", Language: "ko"}, map[string]string{
		"X-Used-Suggestions": `not-json`,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, svc.gotExclude)
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"embedding failure", &service.EmbeddingError{Err: fmt.Errorf("timeout")}, http.StatusServiceUnavailable},
		{"search failure", &service.SearchError{Err: fmt.Errorf("cancelled")}, http.StatusServiceUnavailable},
		{"quota", &service.GenerationError{Kind: service.GenerationQuotaExceeded, Err: fmt.Errorf("429")}, http.StatusTooManyRequests},
		{"model not found", &service.GenerationError{Kind: service.GenerationModelNotFound, Err: fmt.Errorf("404")}, http.StatusInternalServerError},
		{"generic generation", &service.GenerationError{Kind: service.GenerationFailed, Err: fmt.Errorf("boom")}, http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeChatService{err: tt.err})

			resp := postChat(t, app, dto.ChatRequest{Message: "경력", Language: "ko"}, nil)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeBody[dto.ErrorResponse](t, resp)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestChatErrorMessageIsLocalized(t *testing.T) {
	app := newTestApp(&fakeChatService{
		err: &service.GenerationError{Kind: service.GenerationQuotaExceeded, Err: fmt.Errorf("429")},
	})

	resp := postChat(t, app, dto.ChatRequest{Message: "経歴について", Language: "ja"}, nil)

	body := decodeBody[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "API利用上限")
}

func TestSuggestionsEndpoint(t *testing.T) {
	svc := &fakeChatService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/suggestions?language=ja", nil)
	req.Header.Set("X-Used-Suggestions", `["経歴"]`)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[dto.SuggestionsResponse](t, resp)
	assert.Equal(t, service.TopicInitial, body.Topic)
	assert.Equal(t, "ja", body.Language)
	assert.Equal(t, "ja", svc.gotLanguage)
	assert.Contains(t, svc.gotExclude, "経歴")
}

func TestSuggestionsDefaultsToKorean(t *testing.T) {
	svc := &fakeChatService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, service.LanguageKo, svc.gotLanguage)
}
