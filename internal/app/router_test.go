package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todoList/internal/app"
	"todoList/internal/config"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type item struct {
	ID     string  `json:"todoId"`
	Value  string  `json:"value"`
	Order  int     `json:"order"`
	DoneAt *string `json:"doneAt"`
}

type RouterSuite struct {
	suite.Suite
	app    *app.App
	server *httptest.Server
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	cfg := config.Default()
	cfg.Repository.Type = config.RepositoryInMemory
	cfg.Server.RateLimitRPM = -1
	cfg.Static.Dir = "/assets"

	static := afero.NewMemMapFs()
	s.Require().NoError(afero.WriteFile(static, "/assets/index.html", []byte("<h1>Todo</h1>"), 0o644))

	s.app = app.New(&cfg, app.WithStaticFs(static))
	s.Require().NoError(s.app.Init(context.Background()))
	s.server = httptest.NewServer(s.app.Handler())
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
	s.app.Close()
}

func (s *RouterSuite) do(method, path, contentType, body string) (*http.Response, map[string]json.RawMessage) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var decoded map[string]json.RawMessage
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func (s *RouterSuite) create(value string) item {
	resp, body := s.do(http.MethodPost, "/api/todos", "application/json", `{"value":"`+value+`"}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created item
	s.Require().NoError(json.Unmarshal(body["todo"], &created))
	return created
}

func (s *RouterSuite) list() []item {
	resp, body := s.do(http.MethodGet, "/api/todos", "", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var todos []item
	s.Require().NoError(json.Unmarshal(body["todos"], &todos))
	return todos
}

func (s *RouterSuite) byID(id string) item {
	for _, it := range s.list() {
		if it.ID == id {
			return it
		}
	}
	s.FailNow("запись не найдена", id)
	return item{}
}

func errorMessage(t require.TestingT, body map[string]json.RawMessage) string {
	var msg string
	require.NoError(t, json.Unmarshal(body["errorMessage"], &msg))
	return msg
}

func (s *RouterSuite) TestRoot() {
	resp, body := s.do(http.MethodGet, "/api/", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`"Hi!"`, string(body["message"]))
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *RouterSuite) TestCreateAssignsIncreasingOrder() {
	first := s.create("one")
	second := s.create("two")
	third := s.create("three")

	s.Equal(1, first.Order)
	s.Equal(2, second.Order)
	s.Equal(3, third.Order)
	s.Nil(first.DoneAt)

	got := s.list()
	want := []item{third, second, first}
	if diff := cmp.Diff(want, got); diff != "" {
		s.Failf("список не отсортирован по order", "(-want +got):\n%s", diff)
	}
}

func (s *RouterSuite) TestCreateValidation() {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing", `{}`, `"value" is required`},
		{"not a string", `{"value":12}`, `"value" must be a string`},
		{"empty", `{"value":""}`, `"value" is not allowed to be empty`},
		{"too long", `{"value":"` + strings.Repeat("x", 51) + `"}`, `"value" length must be less than or equal to 50 characters long`},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, body := s.do(http.MethodPost, "/api/todos", "application/json", tt.body)
			s.Equal(http.StatusBadRequest, resp.StatusCode)
			s.Equal(tt.message, errorMessage(s.T(), body))
		})
	}
	s.Empty(s.list())

	edge := s.create(strings.Repeat("x", 50))
	s.Len(edge.Value, 50)
}

func (s *RouterSuite) TestCreateFromForm() {
	resp, body := s.do(http.MethodPost, "/api/todos", "application/x-www-form-urlencoded", "value=from+form")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created item
	s.Require().NoError(json.Unmarshal(body["todo"], &created))
	s.Equal("from form", created.Value)
}

func (s *RouterSuite) TestReorderSwapsPair() {
	first := s.create("one")
	second := s.create("two")
	third := s.create("three")

	resp, body := s.do(http.MethodPatch, "/api/todos/"+first.ID, "application/json", `{"order":3}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Empty(body)

	s.Equal(3, s.byID(first.ID).Order)
	s.Equal(1, s.byID(third.ID).Order)
	s.Equal(2, s.byID(second.ID).Order)

	order := make([]string, 0, 3)
	for _, it := range s.list() {
		order = append(order, it.Value)
	}
	s.Equal([]string{"one", "two", "three"}, order)
}

func (s *RouterSuite) TestReorderToFreeSlot() {
	first := s.create("one")

	resp, _ := s.do(http.MethodPatch, "/api/todos/"+first.ID, "application/json", `{"order":10}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(10, s.byID(first.ID).Order)
}

func (s *RouterSuite) TestToggleDone() {
	it := s.create("walk")

	resp, _ := s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", `{"done":true}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotNil(s.byID(it.ID).DoneAt)

	resp, _ = s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", `{"done":false}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Nil(s.byID(it.ID).DoneAt)
}

func (s *RouterSuite) TestDoneFollowsTruthiness() {
	it := s.create("walk")

	for _, body := range []string{`{"done":"false"}`, `{"done":"yes"}`, `{"done":1}`} {
		resp, _ := s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", `{"done":null}`)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Require().Nil(s.byID(it.ID).DoneAt)

		resp, _ = s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", body)
		s.Require().Equal(http.StatusOK, resp.StatusCode, body)
		s.NotNil(s.byID(it.ID).DoneAt, body)
	}

	resp, _ := s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/x-www-form-urlencoded", "done=false")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Nil(s.byID(it.ID).DoneAt)
}

func (s *RouterSuite) TestPatchChecksExistenceBeforeBody() {
	it := s.create("walk")

	resp, body := s.do(http.MethodPatch, "/api/todos/9b2f0c4e-0000-4000-8000-000000000000", "application/json", `{"order":"abc"}`)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("todo does not exist", errorMessage(s.T(), body))

	resp, body = s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", `{"order":"abc"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(`"order" must be an integer`, errorMessage(s.T(), body))
}

func (s *RouterSuite) TestEditValue() {
	it := s.create("draft")

	resp, _ := s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", `{"value":"final"}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("final", s.byID(it.ID).Value)

	resp, _ = s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", `{"value":""}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("final", s.byID(it.ID).Value)

	long := strings.Repeat("y", 80)
	resp, _ = s.do(http.MethodPatch, "/api/todos/"+it.ID, "application/json", `{"value":"`+long+`"}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(long, s.byID(it.ID).Value)
}

func (s *RouterSuite) TestUnknownID() {
	for _, id := range []string{"9b2f0c4e-0000-4000-8000-000000000000", "not-an-id"} {
		resp, body := s.do(http.MethodPatch, "/api/todos/"+id, "application/json", `{"done":true}`)
		s.Equal(http.StatusNotFound, resp.StatusCode)
		s.Equal("todo does not exist", errorMessage(s.T(), body))

		resp, body = s.do(http.MethodDelete, "/api/todos/"+id, "", "")
		s.Equal(http.StatusNotFound, resp.StatusCode)
		s.Equal("todo does not exist", errorMessage(s.T(), body))
	}
}

func (s *RouterSuite) TestDelete() {
	keep := s.create("keep")
	drop := s.create("drop")

	resp, body := s.do(http.MethodDelete, "/api/todos/"+drop.ID, "", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Empty(body)

	todos := s.list()
	s.Require().Len(todos, 1)
	s.Equal(keep.ID, todos[0].ID)

	resp, _ = s.do(http.MethodPatch, "/api/todos/"+drop.ID, "application/json", `{"done":true}`)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestHealth() {
	resp, body := s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]any
	s.Require().NoError(json.Unmarshal(body["health"], &health))
	s.Equal("todo-list", health["service"])
	s.Equal("ok", health["store"])
}

func (s *RouterSuite) TestStaticAssets() {
	resp, _ := s.do(http.MethodGet, "/", "", "")
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/html")

	resp, _ = s.do(http.MethodGet, "/missing.js", "", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestCORSPreflight() {
	req, err := http.NewRequest(http.MethodOptions, s.server.URL+"/api/todos", nil)
	s.Require().NoError(err)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	s.Contains(resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Repository.Type = config.RepositoryInMemory
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"

	a := app.New(&cfg, app.WithStaticFs(afero.NewMemMapFs()))
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
