package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/webhook-outbox/events"
	"github.com/marcelsud/webhook-outbox/webhook"
	"github.com/marcelsud/webhook-outbox/webhook/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testHandlers(t *testing.T, service webhook.UseCase) http.Handler {
	repo := mocks.NewRepository(t)
	queue := mocks.NewQueue(t)
	dispatcher := webhook.NewDispatcher(repo, repo, queue, zerolog.Nop())
	return Handlers(context.Background(), service, dispatcher, events.NewCatalog(), nil)
}

func adminRequest(method, target string, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-Org-Id", "org_1")
	req.Header.Set("X-Org-Role", "admin")
	return req
}

var adminCaller = webhook.Caller{OrgID: "org_1", WebhookAdmin: true}

func TestPostEndpoint(t *testing.T) {
	t.Run("success - 201 with the secret visible", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		now := time.Now().UTC()
		s.On("CreateEndpoint", mock.Anything, adminCaller, webhook.CreateEndpointInput{
			URL:         "https://example.com/hooks",
			Description: "ci notifications",
			Events:      []string{"project.created"},
		}).Return(webhook.Endpoint{
			ID:        "ep_1",
			OrgID:     "org_1",
			URL:       "https://example.com/hooks",
			Secret:    "whsec_fullsecret",
			Events:    []string{"project.created"},
			Enabled:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil)

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/webhooks",
			`{"url":"https://example.com/hooks","description":"ci notifications","events":["project.created"]}`))

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp endpointResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ep_1", resp.ID)
		assert.Equal(t, "whsec_fullsecret", resp.Secret)
	})

	t.Run("error - validation maps to 400", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("CreateEndpoint", mock.Anything, adminCaller, mock.Anything).
			Return(webhook.Endpoint{}, webhook.NewValidationError("url scheme must be https"))

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/webhooks",
			`{"url":"http://example.com/hooks","events":["project.created"]}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error - non-admin maps to 403", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("CreateEndpoint", mock.Anything, webhook.Caller{OrgID: "org_1"}, mock.Anything).
			Return(webhook.Endpoint{}, webhook.ErrForbidden)

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks",
			strings.NewReader(`{"url":"https://example.com/hooks","events":["project.created"]}`))
		req.Header.Set("X-Org-Id", "org_1")
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("error - missing org header maps to 401", func(t *testing.T) {
		s := mocks.NewUseCase(t)

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks",
			strings.NewReader(`{"url":"https://example.com/hooks"}`))
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListEndpointsHandler(t *testing.T) {
	s := mocks.NewUseCase(t)
	s.On("ListEndpoints", mock.Anything, adminCaller).Return([]webhook.Endpoint{
		{ID: "ep_1", Secret: "whsec_****"},
		{ID: "ep_2", Secret: "whsec_****"},
	}, nil)

	h := testHandlers(t, s)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, adminRequest(http.MethodGet, "/v1/webhooks", ""))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []endpointResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestGetEndpointHandler(t *testing.T) {
	t.Run("error - unknown id maps to 404", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("GetEndpoint", mock.Anything, adminCaller, "missing").
			Return(webhook.Endpoint{}, webhook.ErrNotFound)

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodGet, "/v1/webhooks/missing", ""))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteEndpointHandler(t *testing.T) {
	s := mocks.NewUseCase(t)
	s.On("DeleteEndpoint", mock.Anything, adminCaller, "ep_1").Return(nil)

	h := testHandlers(t, s)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, adminRequest(http.MethodDelete, "/v1/webhooks/ep_1", ""))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTestEndpointHandler(t *testing.T) {
	s := mocks.NewUseCase(t)
	s.On("TestEndpoint", mock.Anything, adminCaller, "ep_1").Return("evt_ping", nil)

	h := testHandlers(t, s)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/webhooks/ep_1/test", ""))

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "evt_ping", resp.EventID)
}

func TestListDeliveriesHandler(t *testing.T) {
	s := mocks.NewUseCase(t)
	now := time.Now().UTC()
	s.On("ListDeliveries", mock.Anything, adminCaller, webhook.DeliveryFilter{
		EndpointID: "ep_1",
		Status:     webhook.Failed,
		Page:       2,
		Limit:      10,
	}).Return([]webhook.Delivery{
		{ID: "del_1", EndpointID: "ep_1", FailedAt: &now, Payload: []byte(`{}`)},
	}, nil)

	h := testHandlers(t, s)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, adminRequest(http.MethodGet, "/v1/deliveries?endpoint_id=ep_1&status=failed&page=2&limit=10", ""))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []deliveryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "failed", resp[0].Status)
}

func TestRetryDeliveryHandler(t *testing.T) {
	t.Run("success - 202 with the reset delivery", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("RetryDelivery", mock.Anything, adminCaller, "del_1").Return(webhook.Delivery{
			ID:            "del_1",
			AttemptNumber: 6,
			Payload:       []byte(`{}`),
		}, nil)

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/deliveries/del_1/retry", ""))

		assert.Equal(t, http.StatusAccepted, w.Code)

		var resp deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 6, resp.AttemptNumber)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("error - delivered delivery maps to 400", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("RetryDelivery", mock.Anything, adminCaller, "del_1").
			Return(webhook.Delivery{}, webhook.NewValidationError("only failed deliveries can be retried"))

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/deliveries/del_1/retry", ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPostEventHandler(t *testing.T) {
	t.Run("success - 202 even with no subscribers", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		repo := mocks.NewRepository(t)
		queue := mocks.NewQueue(t)
		dispatcher := webhook.NewDispatcher(repo, repo, queue, zerolog.Nop())

		repo.On("FindSubscribed", mock.Anything, "org_1", "project.created").
			Return([]webhook.Endpoint{}, nil)

		h := Handlers(context.Background(), s, dispatcher, events.NewCatalog(), nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/events",
			`{"type":"project.created","data":{"name":"demo"}}`))

		assert.Equal(t, http.StatusAccepted, w.Code)

		var resp eventResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Accepted)
	})

	t.Run("error - unknown event type maps to 400", func(t *testing.T) {
		s := mocks.NewUseCase(t)

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/events",
			`{"type":"alien.event","data":{"k":"v"}}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error - missing data maps to 400", func(t *testing.T) {
		s := mocks.NewUseCase(t)

		h := testHandlers(t, s)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, adminRequest(http.MethodPost, "/v1/events",
			`{"type":"project.created"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetEventTypesHandler(t *testing.T) {
	s := mocks.NewUseCase(t)

	h := testHandlers(t, s)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, adminRequest(http.MethodGet, "/v1/event-types", ""))

	assert.Equal(t, http.StatusOK, w.Code)

	var types []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	assert.Contains(t, types, events.TestPing)
}
