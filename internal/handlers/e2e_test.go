package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"task_api/internal/repository"
	"task_api/internal/repository/db"
	"task_api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newE2ERouter(t *testing.T, enforceOwnership bool) http.Handler {
	t.Helper()
	sqlDB, err := db.InitSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repos := repository.NewSQLiteRepository(sqlDB)
	services := service.NewService(repos, service.Config{
		TokenSecret:      []byte("e2e-secret"),
		BcryptCost:       bcrypt.MinCost,
		EnforceOwnership: enforceOwnership,
	}, nil)
	return newTestRouterWithOptions(services, Options{Checks: map[string]Checker{"store": repos.Health}})
}

func register(t *testing.T, r http.Handler, email, username string) (id, token string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/auth/register",
		fmt.Sprintf(`{"email":%q,"password":"secret1","username":%q}`, email, username), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := decodeBody(t, w)
	return m["id"].(string), m["token"].(string)
}

func createTask(t *testing.T, r http.Handler, token, name string) map[string]any {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/task/create", fmt.Sprintf(`{"name":%q}`, name), tokenHeader(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["nuevaTarea"].(map[string]any)
}

func readTasks(t *testing.T, r http.Handler, token string) []any {
	t.Helper()
	w := doJSON(r, http.MethodGet, "/task/read", "", tokenHeader(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["tareas"].([]any)
}

func TestE2E_TaskLifecycle(t *testing.T) {
	r := newE2ERouter(t, true)

	userID, token := register(t, r, "a@x.com", "A")
	require.NotEmpty(t, token)

	created := createTask(t, r, token, "buy milk")
	assert.Equal(t, "buy milk", created["name"])
	assert.Equal(t, userID, created["creator"])
	taskID := created["id"].(string)

	list := readTasks(t, r, token)
	require.Len(t, list, 1)
	assert.Equal(t, taskID, list[0].(map[string]any)["id"])

	w := doJSON(r, http.MethodPut, "/task/update/"+taskID, `{"name":"buy oat milk"}`, tokenHeader(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody(t, w)["tarea"].(map[string]any)
	assert.Equal(t, "buy oat milk", updated["name"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])

	w = doJSON(r, http.MethodDelete, "/task/delete/"+taskID, "", tokenHeader(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, taskID, decodeBody(t, w)["tarea"].(map[string]any)["id"])

	assert.Empty(t, readTasks(t, r, token))

	w = doJSON(r, http.MethodDelete, "/task/delete/"+taskID, "", tokenHeader(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestE2E_DuplicateEmail(t *testing.T) {
	r := newE2ERouter(t, true)
	register(t, r, "a@x.com", "A")

	w := doJSON(r, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"other12","username":"B"}`, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, msgDuplicateEmail, decodeBody(t, w)["msg"])

	w = doJSON(r, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", decodeBody(t, w)["username"])
}

func TestE2E_LoginFailuresAreIndistinguishable(t *testing.T) {
	r := newE2ERouter(t, true)
	register(t, r, "a@x.com", "A")

	wrongPw := doJSON(r, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong12"}`, nil)
	unknown := doJSON(r, http.MethodPost, "/auth/login", `{"email":"ghost@x.com","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, wrongPw.Code, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
}

func TestE2E_ReadIsScopedToCaller(t *testing.T) {
	r := newE2ERouter(t, true)
	_, alice := register(t, r, "alice@x.com", "alice")
	_, bob := register(t, r, "bob@x.com", "bob")

	createTask(t, r, alice, "first")
	createTask(t, r, bob, "bob's")
	createTask(t, r, alice, "second")

	list := readTasks(t, r, alice)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].(map[string]any)["name"])
	assert.Equal(t, "first", list[1].(map[string]any)["name"])

	assert.Len(t, readTasks(t, r, bob), 1)
}

func TestE2E_Ownership(t *testing.T) {
	t.Run("enforced", func(t *testing.T) {
		r := newE2ERouter(t, true)
		_, alice := register(t, r, "alice@x.com", "alice")
		_, bob := register(t, r, "bob@x.com", "bob")
		id := createTask(t, r, alice, "mine")["id"].(string)

		w := doJSON(r, http.MethodPut, "/task/update/"+id, `{"name":"hijacked"}`, tokenHeader(bob))
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = doJSON(r, http.MethodDelete, "/task/delete/"+id, "", tokenHeader(bob))
		assert.Equal(t, http.StatusNotFound, w.Code)

		list := readTasks(t, r, alice)
		require.Len(t, list, 1)
		assert.Equal(t, "mine", list[0].(map[string]any)["name"])
	})

	t.Run("unscoped", func(t *testing.T) {
		r := newE2ERouter(t, false)
		aliceID, alice := register(t, r, "alice@x.com", "alice")
		_, bob := register(t, r, "bob@x.com", "bob")
		id := createTask(t, r, alice, "mine")["id"].(string)

		w := doJSON(r, http.MethodPut, "/task/update/"+id, `{"name":"renamed by bob"}`, tokenHeader(bob))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, aliceID, decodeBody(t, w)["tarea"].(map[string]any)["creator"])
	})
}

func TestE2E_TamperedTokenRejected(t *testing.T) {
	r := newE2ERouter(t, true)
	_, token := register(t, r, "a@x.com", "A")

	w := doJSON(r, http.MethodGet, "/task/read", "", tokenHeader(token+"x"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
