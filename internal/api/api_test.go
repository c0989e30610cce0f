package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/starford/formbind/internal/formservice"
	"github.com/starford/formbind/internal/seeds"
	"github.com/starford/formbind/internal/sse"
	"github.com/starford/formbind/internal/testutil"
)

// testEnv sets up a temp seed directory, draft DB, service and router.
// An empty authToken disables auth.
func testEnv(t *testing.T, authToken string) (*formservice.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, sseHandler http.Handler) (*formservice.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestSeeds(t, map[string]string{
		"alice.yaml": testutil.AliceSeed,
	})
	catalog := seeds.NewCatalog()
	if err := seeds.Sync(catalog, store, testutil.Logger(), nil); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	svc := formservice.New(catalog, store, testutil.TestDrafts(t), formservice.WithLogger(testutil.Logger()))
	return svc, NewRouter(svc, authToken != "", authToken, sseHandler)
}

func do(t *testing.T, router http.Handler, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func openAlice(t *testing.T, router http.Handler) FormDetail {
	t.Helper()
	w := do(t, router, http.MethodPost, "/forms", OpenFormRequest{Seed: "alice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("open status = %d, body = %s", w.Code, w.Body.String())
	}
	var d FormDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestOpenAndGetForm(t *testing.T) {
	_, router := testEnv(t, "")
	d := openAlice(t, router)
	if d.ID == "" || d.Model.Name != "Alice" || !d.Valid {
		t.Fatalf("detail = %+v", d)
	}

	w := do(t, router, http.MethodGet, "/forms/"+d.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/forms", nil)
	var list FormListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Forms[0].ID != d.ID {
		t.Fatalf("list = %+v", list)
	}
}

func TestOpenForm_BadRequests(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/forms", OpenFormRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing seed = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/forms", OpenFormRequest{Seed: "ghost"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown seed = %d, want 404", w.Code)
	}
}

func TestSetField(t *testing.T) {
	_, router := testEnv(t, "")
	d := openAlice(t, router)

	w := do(t, router, http.MethodPut, "/forms/"+d.ID+"/fields/address.city", SetFieldRequest{Value: "Bergen"})
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d, body = %s", w.Code, w.Body.String())
	}
	var v FieldView
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if v.Path != "address.city" || v.Value != "Bergen" || !v.Dirty || !v.Valid {
		t.Fatalf("view = %+v", v)
	}

	// Validation failures still commit.
	w = do(t, router, http.MethodPut, "/forms/"+d.ID+"/fields/name", SetFieldRequest{Value: "A"})
	if w.Code != http.StatusOK {
		t.Fatalf("invalid value status = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if v.Valid || v.Message == "" {
		t.Fatalf("view = %+v", v)
	}
}

func TestSetField_Errors(t *testing.T) {
	_, router := testEnv(t, "")
	d := openAlice(t, router)

	tests := []struct {
		name   string
		target string
		value  string
		header []string
		want   int
	}{
		{"parse fault", "/fields/age", "abc", nil, http.StatusUnprocessableEntity},
		{"overflow", "/fields/age", "300", nil, http.StatusUnprocessableEntity},
		{"unknown field", "/fields/nope", "x", nil, http.StatusNotFound},
		{"stale version", "/fields/name", "Bob", []string{"If-Match", `"9"`}, http.StatusConflict},
		{"bad version", "/fields/name", "Bob", []string{"If-Match", "abc"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPut, "/forms/"+d.ID+tt.target, SetFieldRequest{Value: tt.value}, tt.header...)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	w := do(t, router, http.MethodGet, "/forms/"+d.ID, nil)
	var got FormDetail
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Version != 0 || got.Model.Age != 30 {
		t.Fatalf("rejected writes changed the form: %+v", got)
	}
}

func TestSetField_IfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	d := openAlice(t, router)

	do(t, router, http.MethodPut, "/forms/"+d.ID+"/fields/name", SetFieldRequest{Value: "Alicia"})
	w := do(t, router, http.MethodPut, "/forms/"+d.ID+"/fields/name", SetFieldRequest{Value: "Ally"}, "If-Match", "1")
	if w.Code != http.StatusOK {
		t.Fatalf("matching version = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestResetAndSubmit(t *testing.T) {
	_, router := testEnv(t, "")
	d := openAlice(t, router)

	do(t, router, http.MethodPut, "/forms/"+d.ID+"/fields/name", SetFieldRequest{Value: "A"})
	if w := do(t, router, http.MethodPost, "/forms/"+d.ID+"/submit", nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid submit = %d, want 422", w.Code)
	}

	w := do(t, router, http.MethodPost, "/forms/"+d.ID+"/reset", nil)
	var got FormDetail
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Model.Name != "Alice" || !got.Valid {
		t.Fatalf("reset = %+v", got)
	}

	w = do(t, router, http.MethodPost, "/forms/"+d.ID+"/validate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("validate = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/forms/"+d.ID+"/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d, body = %s", w.Code, w.Body.String())
	}
	var sub Submission
	_ = json.Unmarshal(w.Body.Bytes(), &sub)
	if sub.Path != "submissions/"+d.ID+".yaml" {
		t.Fatalf("submission = %+v", sub)
	}
}

func TestCloseForm(t *testing.T) {
	_, router := testEnv(t, "")
	d := openAlice(t, router)

	if w := do(t, router, http.MethodDelete, "/forms/"+d.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("close = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/forms/"+d.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after close = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/forms/"+d.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second close = %d, want 404", w.Code)
	}
}

func TestListSeedsAndFields(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/seeds", nil)
	var seedsResp SeedListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &seedsResp)
	if len(seedsResp.Seeds) != 1 || seedsResp.Seeds[0].Name != "alice" {
		t.Fatalf("seeds = %+v", seedsResp)
	}

	w = do(t, router, http.MethodGet, "/fields", nil)
	var fields FieldListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &fields)
	found := false
	for _, f := range fields.Fields {
		if f.Path == "address.zip" {
			found = true
		}
	}
	if !found {
		t.Fatalf("fields = %+v", fields)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodPost, "/forms", OpenFormRequest{Seed: "alice"}, "Authorization", "Bearer secret123")
	if w.Code != http.StatusCreated {
		t.Errorf("authed open = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	if w := do(t, router, http.MethodGet, "/forms", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	if w := do(t, router, http.MethodGet, "/forms", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	broker := sse.NewBroker(0)
	t.Cleanup(broker.Close)
	_, router := testEnvWithSSE(t, "tok", broker)

	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed SSE = %d, want 401", w.Code)
	}
}

func TestSSEEvents_Streams(t *testing.T) {
	broker := sse.NewBroker(0)
	t.Cleanup(broker.Close)
	_, router := testEnvWithSSE(t, "", broker)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}
