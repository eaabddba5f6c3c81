package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"github.com/dkorobov/taskdeck/internal/models"
	"github.com/dkorobov/taskdeck/internal/session"
)

// createTodo posts a new todo as the given session and returns the decoded
// record.
func createTodo(t *testing.T, ts *testServer, token, title string) models.Todo {
	t.Helper()
	result := apitest.Handler(ts.router).
		Post("/todos").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		JSON(fmt.Sprintf(`{"title": %q}`, title)).
		Expect(t).
		Status(http.StatusCreated).
		End()

	var todo models.Todo
	if err := json.NewDecoder(result.Response.Body).Decode(&todo); err != nil {
		t.Fatalf("decoding created todo: %v", err)
	}
	return todo
}

func TestTodos_RequireSession(t *testing.T) {
	ts := newTestServer(t)

	apitest.Handler(ts.router).
		Get("/todos").
		Expect(t).
		Status(http.StatusUnauthorized).
		Header("WWW-Authenticate", "Bearer").
		End()

	apitest.Handler(ts.router).
		Post("/todos").
		JSON(`{"title": "no session"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestCreateTodo_OwnerForcedToCaller(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.registerAndLogin(t, "u1@example.com", "pass-word-1")

	// The body's user_id is ignored: ownership comes from the session only.
	apitest.Handler(ts.router).
		Post("/todos").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		JSON(`{"title": "buy milk", "description": "two liters", "user_id": "11111111-1111-1111-1111-111111111111"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.user_id", user.ID.String())).
		Assert(jsonpath.Equal("$.title", "buy milk")).
		Assert(jsonpath.Equal("$.completed", false)).
		End()
}

func TestCreateTodo_MissingTitle(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "u1@example.com", "pass-word-1")

	apitest.Handler(ts.router).
		Post("/todos").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		JSON(`{"description": "no title"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestGetTodo_OwnershipIsolation(t *testing.T) {
	ts := newTestServer(t)
	_, token1 := ts.registerAndLogin(t, "u1@example.com", "pw1-password")
	_, token2 := ts.registerAndLogin(t, "u2@example.com", "pw2-password")

	todo := createTodo(t, ts, token1, "buy milk")

	// The owner sees the record.
	apitest.Handler(ts.router).
		Get("/todos/"+todo.ID.String()).
		Cookies(apitest.NewCookie(session.CookieName).Value(token1)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "buy milk")).
		End()

	// Another user gets not-found, never forbidden.
	apitest.Handler(ts.router).
		Get("/todos/"+todo.ID.String()).
		Cookies(apitest.NewCookie(session.CookieName).Value(token2)).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestMutations_OwnershipIsolation(t *testing.T) {
	ts := newTestServer(t)
	_, token1 := ts.registerAndLogin(t, "u1@example.com", "pw1-password")
	_, token2 := ts.registerAndLogin(t, "u2@example.com", "pw2-password")

	todo := createTodo(t, ts, token1, "buy milk")
	id := todo.ID.String()

	// Every mutating operation against a foreign todo reports 404.
	apitest.Handler(ts.router).
		Put("/todos/"+id).
		Cookies(apitest.NewCookie(session.CookieName).Value(token2)).
		JSON(`{"title": "hijacked"}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.Handler(ts.router).
		Patch("/todos/"+id).
		Cookies(apitest.NewCookie(session.CookieName).Value(token2)).
		JSON(`{"completed": true}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.Handler(ts.router).
		Delete("/todos/"+id).
		Cookies(apitest.NewCookie(session.CookieName).Value(token2)).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.Handler(ts.router).
		Post("/todos/"+id+"/toggle").
		Cookies(apitest.NewCookie(session.CookieName).Value(token2)).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	// The owner's record is untouched by all of the above.
	apitest.Handler(ts.router).
		Get("/todos/"+id).
		Cookies(apitest.NewCookie(session.CookieName).Value(token1)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "buy milk")).
		Assert(jsonpath.Equal("$.completed", false)).
		End()
}

func TestUpdateTodo(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "u1@example.com", "pw1-password")
	todo := createTodo(t, ts, token, "draft")

	apitest.Handler(ts.router).
		Put("/todos/"+todo.ID.String()).
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		JSON(`{"title": "final", "description": "done deal", "completed": true}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "final")).
		Assert(jsonpath.Equal("$.description", "done deal")).
		Assert(jsonpath.Equal("$.completed", true)).
		End()
}

func TestPatchTodo_PartialFields(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "u1@example.com", "pw1-password")
	todo := createTodo(t, ts, token, "keep title")

	// Only completed is sent; title survives.
	apitest.Handler(ts.router).
		Patch("/todos/"+todo.ID.String()).
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		JSON(`{"completed": true}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "keep title")).
		Assert(jsonpath.Equal("$.completed", true)).
		End()
}

func TestDeleteTodo(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "u1@example.com", "pw1-password")
	todo := createTodo(t, ts, token, "short lived")

	apitest.Handler(ts.router).
		Delete("/todos/"+todo.ID.String()).
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	apitest.Handler(ts.router).
		Get("/todos/"+todo.ID.String()).
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestToggleTodo(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "u1@example.com", "pw1-password")
	todo := createTodo(t, ts, token, "flip me")

	apitest.Handler(ts.router).
		Post("/todos/"+todo.ID.String()+"/toggle").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.completed", true)).
		End()

	apitest.Handler(ts.router).
		Post("/todos/"+todo.ID.String()+"/toggle").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.completed", false)).
		End()
}

func TestGetTodo_MalformedID(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "u1@example.com", "pw1-password")

	// A malformed id cannot name an owned row, so it is a plain 404.
	apitest.Handler(ts.router).
		Get("/todos/not-a-uuid").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestListTodos_PaginationSweep(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "u1@example.com", "pw1-password")
	_, other := ts.registerAndLogin(t, "u2@example.com", "pw2-password")

	created := map[string]bool{}
	for i := 0; i < 5; i++ {
		todo := createTodo(t, ts, token, fmt.Sprintf("task %d", i))
		created[todo.ID.String()] = true
	}
	// Foreign records must never leak into the sweep.
	createTodo(t, ts, other, "not yours")

	seen := map[string]bool{}
	for skip := 0; skip < 6; skip += 2 {
		result := apitest.Handler(ts.router).
			Get("/todos").
			Query("skip", fmt.Sprintf("%d", skip)).
			Query("limit", "2").
			Cookies(apitest.NewCookie(session.CookieName).Value(token)).
			Expect(t).
			Status(http.StatusOK).
			End()

		var page []models.Todo
		if err := json.NewDecoder(result.Response.Body).Decode(&page); err != nil {
			t.Fatalf("decoding page at skip=%d: %v", skip, err)
		}
		for _, todo := range page {
			if !created[todo.ID.String()] {
				t.Errorf("page contained foreign or unknown todo %s", todo.ID)
			}
			if seen[todo.ID.String()] {
				t.Errorf("todo %s appeared on two pages", todo.ID)
			}
			seen[todo.ID.String()] = true
		}
	}
	if len(seen) != len(created) {
		t.Errorf("sweep covered %d todos; want %d", len(seen), len(created))
	}
}

func TestScenario_RegisterLoginCreateCrossUser(t *testing.T) {
	ts := newTestServer(t)

	// Register and log in through the HTTP surface.
	apitest.Handler(ts.router).
		Post("/auth/register").
		JSON(`{"email": "u1@example.com", "password": "pw1-password"}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	loginResult := apitest.Handler(ts.router).
		Post("/auth/login").
		JSON(`{"email": "u1@example.com", "password": "pw1-password"}`).
		Expect(t).
		Status(http.StatusOK).
		CookiePresent(session.CookieName).
		End()

	var loginBody struct {
		UserID      string `json:"user_id"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(loginResult.Response.Body).Decode(&loginBody); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}

	apitest.Handler(ts.router).
		Get("/auth/me").
		Cookies(apitest.NewCookie(session.CookieName).Value(loginBody.AccessToken)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", loginBody.UserID)).
		End()

	todo := createTodo(t, ts, loginBody.AccessToken, "buy milk")
	if todo.UserID.String() != loginBody.UserID {
		t.Errorf("todo owner = %s; want %s", todo.UserID, loginBody.UserID)
	}

	// A second user cannot see the first user's todo.
	_, token2 := ts.registerAndLogin(t, "u2@example.com", "pw2-password")
	apitest.Handler(ts.router).
		Get("/todos/"+todo.ID.String()).
		Cookies(apitest.NewCookie(session.CookieName).Value(token2)).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}
