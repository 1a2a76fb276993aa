package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holee9/gx10-dashboard/internal/model"
)

func criticalAlert() model.Alert {
	return model.Alert{
		ID:        "a1",
		Category:  model.CategoryGPUTemp,
		Severity:  model.SeverityCritical,
		Message:   "GPU temperature at 88°C (critical threshold 85°C)",
		Value:     88,
		Threshold: 85,
		Timestamp: time.Now(),
	}
}

func TestNtfy_Send(t *testing.T) {
	var gotPath, gotTitle, gotPriority, gotTags, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	t.Cleanup(ts.Close)

	p := NewNtfy(ts.URL+"/", "gx10-alerts")
	require.Equal(t, "ntfy", p.Name())

	err := p.Send(context.Background(), criticalAlert())
	require.NoError(t, err)

	assert.Equal(t, "/gx10-alerts", gotPath)
	assert.Equal(t, "CRITICAL alert: gpu_temp", gotTitle)
	assert.Equal(t, "5", gotPriority)
	assert.Equal(t, "rotating_light,gpu_temp", gotTags)
	assert.Contains(t, gotBody, "GPU temperature")
}

func TestNtfy_WarningPriority(t *testing.T) {
	var gotPriority, gotTags string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPriority = r.Header.Get("Priority")
		gotTags = r.Header.Get("Tags")
	}))
	t.Cleanup(ts.Close)

	a := criticalAlert()
	a.Severity = model.SeverityWarning

	require.NoError(t, NewNtfy(ts.URL, "topic").Send(context.Background(), a))
	assert.Equal(t, "3", gotPriority)
	assert.Equal(t, "warning,gpu_temp", gotTags)
}

func TestNtfy_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	err := NewNtfy(ts.URL, "topic").Send(context.Background(), criticalAlert())
	assert.Error(t, err)
}

func TestWebhook_Send(t *testing.T) {
	var gotMethod, gotContentType, gotHeader string
	var gotAlert model.Alert
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotHeader = r.Header.Get("X-Token")
		json.NewDecoder(r.Body).Decode(&gotAlert)
	}))
	t.Cleanup(ts.Close)

	p := NewWebhook(ts.URL, "", map[string]string{"X-Token": "secret"})
	require.Equal(t, "webhook", p.Name())

	err := p.Send(context.Background(), criticalAlert())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, "a1", gotAlert.ID)
	assert.Equal(t, model.CategoryGPUTemp, gotAlert.Category)
}

func TestWebhook_CustomMethod(t *testing.T) {
	var gotMethod string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	t.Cleanup(ts.Close)

	require.NoError(t, NewWebhook(ts.URL, http.MethodPut, nil).Send(context.Background(), criticalAlert()))
	assert.Equal(t, http.MethodPut, gotMethod)
}

func TestWebhook_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	err := NewWebhook(ts.URL, "", nil).Send(context.Background(), criticalAlert())
	assert.Error(t, err)
}
