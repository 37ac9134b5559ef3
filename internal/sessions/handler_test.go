package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorsync/backend/internal/models"
)

func newTestRouter(cal *fakeCalendar, mp *fakeMeetings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(cal, mp, nil, zap.NewNop())
	handler := NewHandler(svc, zap.NewNop())
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validEventBody = `{
	"title": "Algebra Review",
	"startTime": "2024-06-01T10:00",
	"endTime": "2024-06-01T11:00",
	"timezone": "UTC",
	"participants": ["a@x.com"]
}`

func TestCreateEventEndpoint(t *testing.T) {
	router := newTestRouter(newFakeCalendar(), &fakeMeetings{})

	w := doJSON(t, router, http.MethodPost, "/api/events", validEventBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var ev models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	assert.Equal(t, "Algebra Review", ev.Title)
	assert.NotEmpty(t, ev.ID)
	require.NotNil(t, ev.MeetLink)
	assert.Equal(t, models.RecordingNotAvailable, ev.RecordingStatus)
}

func TestCreateEventValidationError(t *testing.T) {
	router := newTestRouter(newFakeCalendar(), &fakeMeetings{})

	body := strings.Replace(validEventBody, `"2024-06-01T11:00"`, `"2024-06-01T10:00"`, 1)
	w := doJSON(t, router, http.MethodPost, "/api/events", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "endTime")
}

func TestListEventsEndpoint(t *testing.T) {
	cal := newFakeCalendar()
	router := newTestRouter(cal, &fakeMeetings{})

	w := doJSON(t, router, http.MethodPost, "/api/events", validEventBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Algebra Review", list[0].Title)
}

func TestUpdateEventNotFound(t *testing.T) {
	router := newTestRouter(newFakeCalendar(), &fakeMeetings{})

	w := doJSON(t, router, http.MethodPut, "/api/events/nope", validEventBody)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}

func TestDeleteEventEndpoint(t *testing.T) {
	router := newTestRouter(newFakeCalendar(), &fakeMeetings{})

	w := doJSON(t, router, http.MethodPost, "/api/events", validEventBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var ev models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))

	w = doJSON(t, router, http.MethodDelete, "/api/events/"+ev.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doJSON(t, router, http.MethodDelete, "/api/events/"+ev.ID, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrganizerEndpoint(t *testing.T) {
	router := newTestRouter(newFakeCalendar(), &fakeMeetings{})

	w := doJSON(t, router, http.MethodGet, "/api/organizer", "")
	require.Equal(t, http.StatusOK, w.Code)

	var org models.Organizer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &org))
	assert.Equal(t, "tutor@example.com", org.Email)
}

func TestCreateEventMalformedBody(t *testing.T) {
	router := newTestRouter(newFakeCalendar(), &fakeMeetings{})

	w := doJSON(t, router, http.MethodPost, "/api/events", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
