package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/repos/testutil"
	httpH "github.com/yungbote/arm-gateway/internal/http/handlers"
	httpMW "github.com/yungbote/arm-gateway/internal/http/middleware"
	"github.com/yungbote/arm-gateway/internal/modules/access"
	"github.com/yungbote/arm-gateway/internal/modules/sequencer"
	"github.com/yungbote/arm-gateway/internal/observability"
	"github.com/yungbote/arm-gateway/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	set := repos.New(db, log)
	seq := sequencer.New(sequencer.Deps{Log: log, Templates: set.Template, Suites: set.Suite, Metrics: metrics})
	suites := services.NewSuiteService(db, log, set)
	profiles := services.NewProfileService(db, log, set, suites, access.NewResolver(log, set, metrics), uuid.Nil)
	return NewRouter(RouterConfig{
		Log:               log,
		Metrics:           metrics,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, ""),
		ProfileHandler:    httpH.NewProfileHandler(log, profiles),
		SuiteHandler:      httpH.NewSuiteHandler(log, suites),
		TemplateHandler:   httpH.NewTemplateHandler(log, services.NewTemplateService(db, log, set, seq)),
		DictionaryHandler: httpH.NewDictionaryHandler(log, services.NewDictionaryService(db, log, set)),
		ComplectHandler:   httpH.NewComplectHandler(log, services.NewComplectService(db, log, set)),
		TestcaseHandler:   httpH.NewTestcaseHandler(log, services.NewTestcaseService(db, log, set)),
		AccessHandler:     httpH.NewAccessHandler(log, services.NewAccessService(db, log, set)),
		SystemHandler:     httpH.NewSystemHandler(services.NewSystemService()),
		HealthHandler:     httpH.NewHealthHandler(db),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder, want int) T {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

type idOnly struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
	Content  string    `json:"content"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func TestTemplateLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	profile := decode[idOnly](t, do(t, r, http.MethodPost, "/api/profiles", map[string]any{"name": "bank"}), http.StatusCreated)
	suite := decode[idOnly](t, do(t, r, http.MethodPost, "/api/suites", map[string]any{"profile_id": profile.ID, "title": "greetings"}), http.StatusCreated)

	batch := decode[struct {
		Items []idOnly `json:"items"`
	}](t, do(t, r, http.MethodPost, "/api/templates", []map[string]any{
		{"suite_id": suite.ID, "content": "A"},
		{"suite_id": suite.ID, "content": "B"},
		{"suite_id": suite.ID, "content": "C"},
	}), http.StatusCreated)
	if len(batch.Items) != 3 || batch.Items[2].Position != 3 {
		t.Fatalf("unexpected batch %+v", batch.Items)
	}

	b := batch.Items[1]
	moved := decode[idOnly](t, do(t, r, http.MethodPatch, "/api/templates", map[string]any{"id": b.ID, "position_before": "first"}), http.StatusOK)
	if moved.Position != 1 {
		t.Fatalf("expected B at 1, got %d", moved.Position)
	}

	list := decode[struct {
		Items []idOnly `json:"items"`
		Total int64    `json:"total"`
	}](t, do(t, r, http.MethodGet, "/api/templates?suite_id="+suite.ID.String(), nil), http.StatusOK)
	got := ""
	for _, it := range list.Items {
		got += it.Content
	}
	if got != "BAC" || list.Total != 3 {
		t.Fatalf("expected BAC, got %q (total %d)", got, list.Total)
	}

	suites := decode[struct {
		Items []struct {
			ID   uuid.UUID `json:"id"`
			Stat struct {
				Templates int64 `json:"templates"`
			} `json:"stat"`
		} `json:"items"`
	}](t, do(t, r, http.MethodGet, "/api/suites?profile_id="+profile.ID.String(), nil), http.StatusOK)
	if len(suites.Items) != 1 || suites.Items[0].Stat.Templates != 3 {
		t.Fatalf("unexpected suites %+v", suites.Items)
	}

	removed := decode[map[string]bool](t, do(t, r, http.MethodDelete, "/api/profiles/"+profile.ID.String(), nil), http.StatusOK)
	if !removed["removed"] {
		t.Fatalf("profile not removed")
	}
	e := decode[errorBody](t, do(t, r, http.MethodGet, "/api/templates/"+b.ID.String(), nil), http.StatusNotFound)
	if e.Error.Code != "NOT_EXISTS" {
		t.Fatalf("expected NOT_EXISTS, got %+v", e)
	}
}

func TestErrorCodesOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing suite", http.MethodPost, "/api/templates", map[string]any{"content": "x"}, http.StatusBadRequest, "MISSING_SUITE_ID"},
		{"bad position", http.MethodPost, "/api/templates", map[string]any{"suite_id": uuid.New(), "position": 0}, http.StatusBadRequest, "INVALID_POSITION"},
		{"unknown suite", http.MethodPost, "/api/templates", map[string]any{"suite_id": uuid.New()}, http.StatusNotFound, "NOT_EXISTS"},
		{"missing profile", http.MethodPost, "/api/suites", map[string]any{"title": "x"}, http.StatusBadRequest, "MISSING_PROFILE_ID"},
		{"update without id", http.MethodPatch, "/api/complects", map[string]any{"name": "x"}, http.StatusBadRequest, "ID_REQUIRED"},
		{"bad path id", http.MethodGet, "/api/suites/nope", nil, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown order", http.MethodGet, "/api/testcases?order=nope", nil, http.StatusBadRequest, "INVALID_ORDER"},
		{"empty remove", http.MethodDelete, "/api/dictionaries", map[string]any{"ids": []string{}}, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"remove missing", http.MethodDelete, "/api/dictionaries/" + uuid.NewString(), nil, http.StatusNotFound, "NOT_EXISTS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := decode[errorBody](t, do(t, r, tc.method, tc.path, tc.body), tc.status)
			if e.Error.Code != tc.code {
				t.Fatalf("expected %s, got %+v", tc.code, e.Error)
			}
		})
	}
}

func TestProfileListUsesPrincipalHeaders(t *testing.T) {
	r := newTestRouter(t)
	p := decode[idOnly](t, do(t, r, http.MethodPost, "/api/profiles", map[string]any{"name": "visible"}), http.StatusCreated)
	decode[idOnly](t, do(t, r, http.MethodPost, "/api/profiles", map[string]any{"name": "hidden"}), http.StatusCreated)

	user := uuid.New()
	decode[map[string]any](t, do(t, r, http.MethodPost, "/api/access/users/"+user.String()+"/profiles", []map[string]any{
		{"profile_id": p.ID, "permissions": map[string]bool{"dl_read": true}},
	}), http.StatusCreated)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	req.Header.Set("X-User-Id", user.String())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	list := decode[struct {
		Items []struct {
			ID          uuid.UUID       `json:"id"`
			Permissions map[string]bool `json:"permissions"`
		} `json:"items"`
		Total int64 `json:"total"`
	}](t, rec, http.StatusOK)
	if list.Total != 1 || list.Items[0].ID != p.ID || !list.Items[0].Permissions["dl_read"] || list.Items[0].Permissions["dl_write"] {
		t.Fatalf("unexpected listing %+v", list)
	}

	all := decode[struct {
		Total int64 `json:"total"`
	}](t, do(t, r, http.MethodGet, "/api/profiles", nil), http.StatusOK)
	if all.Total != 2 {
		t.Fatalf("trusted internal call must see all profiles, got %d", all.Total)
	}
}

func TestDictionaryVersionsOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	d := decode[idOnly](t, do(t, r, http.MethodPost, "/api/dictionaries", map[string]any{"code": "colors", "content": "red"}), http.StatusCreated)
	decode[idOnly](t, do(t, r, http.MethodPatch, "/api/dictionaries", map[string]any{"id": d.ID, "content": "blue"}), http.StatusOK)

	versions := decode[struct {
		Items []struct {
			Version int64  `json:"version"`
			Content string `json:"content"`
		} `json:"items"`
		Total int64 `json:"total"`
	}](t, do(t, r, http.MethodGet, "/api/dictionaries/"+d.ID.String()+"/versions?order=-version", nil), http.StatusOK)
	if versions.Total != 2 || versions.Items[0].Content != "blue" || versions.Items[1].Version != 1 {
		t.Fatalf("unexpected versions %+v", versions)
	}
}

func TestHealthVersionAndMetrics(t *testing.T) {
	r := newTestRouter(t)
	if rec := do(t, r, http.MethodGet, "/healthcheck", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	v := decode[services.SystemVersion](t, do(t, r, http.MethodGet, "/api/system/version", nil), http.StatusOK)
	if v.Version != services.Version {
		t.Fatalf("unexpected version %+v", v)
	}
	rec := do(t, r, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("arm_gateway_api_requests_total")) {
		t.Fatalf("metrics missing api counter: %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a request id header")
	}
}
