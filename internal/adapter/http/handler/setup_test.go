package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	memorycache "taskapp/internal/adapter/cache/memory"
	"taskapp/internal/adapter/database/sqlite"
	"taskapp/internal/adapter/database/sqlite/repository"
	"taskapp/internal/adapter/http/handler"
	"taskapp/internal/adapter/http/routes"
	"taskapp/internal/adapter/imaging"
	"taskapp/internal/adapter/notifier"
	"taskapp/internal/core/port"
	"taskapp/internal/core/service"
	tel "taskapp/internal/core/telemetry"
	"taskapp/pkg/test"
)

type testEnv struct {
	DB      *sql.DB
	Users   port.UserRepository
	Tasks   port.TaskRepository
	Tokens  port.TokenService
	Account port.AccountService
	Router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	rawDB := test.InitTestDB()
	db := sqlite.Wrap(rawDB)

	users := repository.NewUserRepository(db, nil)
	tasks := repository.NewTaskRepository(db, nil)
	tokens := service.NewTokenService(users, "test-secret")
	transcoder := imaging.NewTranscoder()

	account := service.NewAccountService(
		users,
		tasks,
		tokens,
		transcoder,
		notifier.NewNoopNotifier(),
		memorycache.NewCache(),
		tel.NewNoOpProbe(),
	)

	router := routes.SetupRouterForTests(routes.HandlersConfig{
		AuthHandler:    handler.NewAuthHandler(account),
		AccountHandler: handler.NewAccountHandler(account),
		AvatarHandler:  handler.NewAvatarHandler(account, transcoder),
		TokenService:   tokens,
	})

	return &testEnv{
		DB:      rawDB,
		Users:   users,
		Tasks:   tasks,
		Tokens:  tokens,
		Account: account,
		Router:  router,
	}
}

func (e *testEnv) Close() {
	e.DB.Close()
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)

	return rr
}

func (e *testEnv) postJSON(path, body, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.do(req)
}

func (e *testEnv) patchJSON(path, body, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("PATCH", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return e.do(req)
}

func (e *testEnv) get(path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.do(req)
}

func (e *testEnv) delete(path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("DELETE", path, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	return e.do(req)
}

// signUp creates an account through the API and returns its uuid and
// session token.
func (e *testEnv) signUp(t *testing.T, email string) (string, string) {
	t.Helper()

	rr := e.postJSON("/users", `{"name": "Mike", "email": "`+email+`", "password": "red12345", "age": 30}`, "")

	if rr.Code != http.StatusCreated {
		t.Fatalf("signup failed with status %d: %s", rr.Code, rr.Body.String())
	}

	data := decodeData(t, rr)
	user := data["user"].(map[string]any)

	return user["uuid"].(string), data["token"].(string)
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body, _ := io.ReadAll(rr.Body)

	var envelope map[string]any

	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	data, _ := envelope["data"].(map[string]any)

	return data
}

func multipartAvatar(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, "avatar.png")

	if err != nil {
		t.Fatal(err)
	}

	part.Write(content)
	writer.Close()

	return &buf, writer.FormDataContentType()
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer

	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}
