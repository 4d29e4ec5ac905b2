package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/handlers"
	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/routes"
	"github.com/jimmiewester/skippy/internal/services"
	"github.com/jimmiewester/skippy/internal/store"
)

type fakePublisher struct {
	tasks []models.Task
	err   error
}

func (f *fakePublisher) EnqueueTask(_ context.Context, task models.Task) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakePublisher) EnqueueRetry(_ context.Context, task models.Task, _ time.Duration) error {
	return f.EnqueueTask(context.Background(), task)
}

type testApp struct {
	app       *fiber.App
	store     *store.MemoryStore
	publisher *fakePublisher
}

func newTestApp(t *testing.T, webhookSecret string) *testApp {
	t.Helper()

	st := store.NewMemoryStore()
	pub := &fakePublisher{}
	log := zap.NewNop()

	webhookSvc := services.NewWebhookService(st, log)
	smsSvc := services.NewSMSService(st, log)

	app := fiber.New()
	routes.SetupRoutes(app,
		handlers.NewHealthHandler("skippy", "test"),
		handlers.NewSMSHandler(smsSvc, pub, log),
		handlers.NewWebhookHandler(webhookSvc, pub, webhookSecret, log),
	)

	return &testApp{app: app, store: st, publisher: pub}
}

func (ta *testApp) request(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) jsonRequest(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	return ta.request(t, method, path, rd, fiber.MIMEApplicationJSON)
}

func (ta *testApp) formRequest(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	return ta.request(t, http.MethodPost, path,
		strings.NewReader(form.Encode()), fiber.MIMEApplicationForm)
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeJSONList(t *testing.T, resp *http.Response, out any) error {
	t.Helper()
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
