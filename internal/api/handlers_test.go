package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-shopguard/internal/api"
	"github.com/technosupport/ts-shopguard/internal/auth"
	"github.com/technosupport/ts-shopguard/internal/camera"
	"github.com/technosupport/ts-shopguard/internal/events"
	"github.com/technosupport/ts-shopguard/internal/middleware"
	"github.com/technosupport/ts-shopguard/internal/notify"
	"github.com/technosupport/ts-shopguard/internal/ratelimit"
	"github.com/technosupport/ts-shopguard/internal/recording"
	"github.com/technosupport/ts-shopguard/internal/surveillance"
	"github.com/technosupport/ts-shopguard/internal/tokens"
	"github.com/technosupport/ts-shopguard/internal/users"
)

type testEnv struct {
	srv   *httptest.Server
	users *users.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	eventSink := events.NewMemorySink()
	recSink := recording.NewMemorySink()
	blobs := recording.NewMemBlobStore()
	blacklist := auth.NewMemoryBlacklist()
	tokenMgr := tokens.NewManager("test-secret", time.Hour)

	userSvc := users.NewService(users.NewMemoryStore(), tokenMgr, blacklist, eventSink)

	src := camera.NewStaticSource(100, 10)
	ctl := surveillance.NewController(surveillance.Config{
		Sampler: camera.SamplerConfig{Interval: time.Hour, WatchdogInterval: time.Hour},
	}, surveillance.Deps{
		OpenSource: func(ctx context.Context) (camera.VideoSource, error) {
			if err := src.Open(ctx); err != nil {
				return nil, err
			}
			return src, nil
		},
		Events:     eventSink,
		Recordings: recSink,
		Blobs:      blobs,
	})
	t.Cleanup(ctl.Stop)

	router := api.NewRouter(api.Deps{
		Users:      userSvc,
		Controller: ctl,
		Events:     eventSink,
		Recordings: recSink,
		Blobs:      blobs,
		Hub:        notify.NewHub(),
		JWT:        middleware.NewJWTAuth(tokenMgr, blacklist),
		RateLimit:  middleware.NewRateLimit(nil, ratelimit.LimitConfig{}),
		Frames:     camera.NewPushSource(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, users: userSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// doRaw sends a non-JSON body, as the frame ingest endpoint expects.
func (e *testEnv) doRaw(t *testing.T, method, path, token string, body []byte) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) registerAndLogin(t *testing.T) string {
	t.Helper()

	resp := e.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":     "owner@shop.test",
		"password":  "hunter2!",
		"shop_name": "Corner Electronics",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "owner@shop.test",
		"password": "hunter2!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestAPI_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": "", "password": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.registerAndLogin(t)
	resp = env.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": "owner@shop.test", "password": "other", "shop_name": "Other",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_RegisterIncludesOwnerDetails(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/v1/auth/register", "", map[string]any{
		"email":             "owner@shop.test",
		"password":          "hunter2!",
		"first_name":        "Asha",
		"last_name":         "Rao",
		"mobile_number":     "+91-9000000001",
		"alternate_numbers": []string{"+91-9000000002"},
		"shop_name":         "Corner Electronics",
		"shop_address":      "12 Market Road",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var p struct {
		Email            string   `json:"email"`
		FirstName        string   `json:"first_name"`
		LastName         string   `json:"last_name"`
		MobileNumber     string   `json:"mobile_number"`
		AlternateNumbers []string `json:"alternate_numbers"`
		ShopAddress      string   `json:"shop_address"`
		PasswordHash     string   `json:"password_hash"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "Asha", p.FirstName)
	assert.Equal(t, "Rao", p.LastName)
	assert.Equal(t, "+91-9000000001", p.MobileNumber)
	assert.Equal(t, []string{"+91-9000000002"}, p.AlternateNumbers)
	assert.Equal(t, "12 Market Road", p.ShopAddress)
	assert.Empty(t, p.PasswordHash, "credential material must not leave the server")

	// The same details come back on the profile endpoint.
	resp = env.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email": "owner@shop.test", "password": "hunter2!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))

	resp = env.do(t, "GET", "/api/v1/profile", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "Asha", p.FirstName)
	assert.Equal(t, "+91-9000000001", p.MobileNumber)
	assert.Equal(t, "12 Market Road", p.ShopAddress)
}

func TestAPI_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t)

	resp := env.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email": "owner@shop.test", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_ProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "GET", "/api/v1/camera/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CameraLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "GET", "/api/v1/camera/status", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st surveillance.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, surveillance.StateInactive, st.State)

	resp = env.do(t, "POST", "/api/v1/camera/start", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, surveillance.StateActive, st.State)

	resp = env.do(t, "POST", "/api/v1/camera/stop", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, surveillance.StateInactive, st.State)
}

func TestAPI_SensitivityRequiresActive(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "PUT", "/api/v1/camera/sensitivity", token, map[string]int{"sensitivity": 40})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, "POST", "/api/v1/camera/start", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, "PUT", "/api/v1/camera/sensitivity", token, map[string]int{"sensitivity": 40})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st surveillance.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 40, st.Sensitivity)

	// Persisted on the profile as well.
	p, err := env.users.Get(context.Background(), "owner@shop.test")
	require.NoError(t, err)
	assert.Equal(t, 40, p.Sensitivity)
}

func TestAPI_FrameIngestAndSnapshot(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "GET", "/api/v1/camera/snapshot", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	img := image.NewGray(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	resp = env.doRaw(t, "POST", "/api/v1/camera/frame", token, buf.Bytes())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = env.do(t, "GET", "/api/v1/camera/snapshot", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), served)

	resp = env.doRaw(t, "POST", "/api/v1/camera/frame", token, []byte("not a jpeg"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_RespondWithoutAlarm(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "POST", "/api/v1/camera/respond", token, map[string]any{
		"present": true, "duration_minutes": 30,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_EventsListIncludesLogin(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "GET", "/api/v1/events", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Events []events.Event `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Events)
	assert.Equal(t, events.KindLogin, out.Events[0].Kind)
}

func TestAPI_UpdateHours(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "PUT", "/api/v1/profile/hours", token, map[string]string{
		"opening_time": "10:00", "closing_time": "02:00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, "PUT", "/api/v1/profile/hours", token, map[string]string{
		"opening_time": "25:00", "closing_time": "18:00",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_RecordingsEmptyAndBadDelete(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "GET", "/api/v1/recordings", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Recordings []recording.Artifact `json:"recordings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Recordings)

	resp = env.do(t, "DELETE", "/api/v1/recordings/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_LogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t)

	resp := env.do(t, "POST", "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, "GET", "/api/v1/camera/status", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
