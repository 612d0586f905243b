package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/deptportal/internal/config"
)

const (
	adminEmail    = "admin@dept.test"
	adminPassword = "adminpass123"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Server.Mode = "test"
	cfg.Server.StoragePath = t.TempDir()
	cfg.Server.MaxUploadBytes = 1 << 20
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Database.Driver = config.DriverMemory
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.SessionExpiration = "1h"
	cfg.JWT.Issuer = "deptportal-test"
	cfg.JWT.CookieName = "session"
	cfg.Registration.EnforceCapacity = true
	cfg.Registration.ValidateFields = true
	cfg.GenAI.Endpoint = "http://127.0.0.1:1"
	cfg.GenAI.Timeout = "1s"
	cfg.RateLimit.LoginPerMinute = 1000
	cfg.RateLimit.LoginBurst = 1000
	cfg.Admin.Name = "Admin"
	cfg.Admin.Email = adminEmail
	cfg.Admin.Password = adminPassword
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	return cfg
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)
	deps, err := BuildDependencies(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	return &apiClient{t: t, router: SetupRouter(cfg, deps, zerolog.Nop())}
}

func (a *apiClient) do(method, path string, body interface{}, session *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiClient) session(w *httptest.ResponseRecorder) *http.Cookie {
	a.t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	a.t.Fatalf("no session cookie in response: %s", w.Body.String())
	return nil
}

func (a *apiClient) login(email, password, portal string) *http.Cookie {
	w := a.do(http.MethodPost, "/api/auth", map[string]string{"email": email, "password": password, "type": portal}, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return a.session(w)
}

func (a *apiClient) signup(name, email string) *http.Cookie {
	w := a.do(http.MethodPost, "/api/auth/signup", map[string]string{"name": name, "email": email, "password": "student123"}, nil)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return a.session(w)
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error.Code
}

func TestHealthAndMetrics(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAnonymousAccess(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/resources?type=pyqs", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/resources?type=quizzes", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/resources?type=blogs", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/users", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/auth", map[string]string{"email": adminEmail, "password": adminPassword, "type": "admin"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := api.session(w)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	me := decodeData(t, api.do(http.MethodGet, "/api/auth/me", nil, cookie))
	require.Equal(t, adminEmail, me["email"])
	require.Equal(t, "admin", me["role"])

	w = api.do(http.MethodPost, "/api/auth", map[string]string{"email": adminEmail, "password": adminPassword, "type": "student"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	api := newAPI(t)
	cookie := api.signup("Ada", "ada@dept.test")

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/auth/me", nil, cookie).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/auth", nil, cookie).Code)

	w := api.do(http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentCannotWriteResources(t *testing.T) {
	api := newAPI(t)
	student := api.signup("Ada", "ada@dept.test")

	w := api.do(http.MethodPost, "/api/resources?type=pyqs", map[string]interface{}{"title": "DBMS 2023"}, student)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/users", nil, student)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestResourceLifecycle(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword, "admin")

	w := api.do(http.MethodPost, "/api/resources?type=hackathons", map[string]interface{}{"title": "Winter Hack", "prize": "GPU"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeData(t, w)["id"].(string)

	w = api.do(http.MethodPut, "/api/resources?type=hackathons", map[string]interface{}{"id": id, "title": "Winter Hack 2"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "Winter Hack 2", decodeData(t, w)["title"])

	w = api.do(http.MethodGet, "/api/resources?type=hackathons&id="+id, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "GPU", decodeData(t, w)["prize"])

	w = api.do(http.MethodDelete, "/api/resources?type=hackathons&id="+id, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodDelete, "/api/resources?type=hackathons&id="+id, nil, admin)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventRegistrationThroughPut(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword, "admin")

	w := api.do(http.MethodPost, "/api/resources?type=events", map[string]interface{}{"title": "Hack Night", "capacity": 1}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	eventID := decodeData(t, w)["id"].(string)

	ada := api.signup("Ada", "ada@dept.test")
	adaID := decodeData(t, api.do(http.MethodGet, "/api/auth/me", nil, ada))["id"].(string)

	register := map[string]interface{}{"id": eventID, "addRegisteredUserId": adaID, "registrationData": map[string]string{}}
	w = api.do(http.MethodPut, "/api/resources?type=events", register, ada)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeData(t, w)
	require.Equal(t, float64(1), out["registeredCount"])
	require.Equal(t, false, out["alreadyRegistered"])

	w = api.do(http.MethodPut, "/api/resources?type=events", register, ada)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decodeData(t, w)["alreadyRegistered"])

	bob := api.signup("Bob", "bob@dept.test")
	w = api.do(http.MethodPut, "/api/resources?type=events", map[string]interface{}{"id": eventID, "addRegisteredUserId": ""}, bob)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "RES_005", errorCode(t, w))

	w = api.do(http.MethodPut, "/api/resources?type=events", map[string]interface{}{"id": eventID, "addRegisteredUserId": adaID}, bob)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, "/api/resources?type=pyqs", map[string]interface{}{"id": eventID, "addRegisteredUserId": ""}, bob)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/resources/registrations?id="+eventID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var log struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &log))
	require.Len(t, log.Data, 2)
}

func TestUploadAndDownload(t *testing.T) {
	api := newAPI(t)
	student := api.signup("Ada", "ada@dept.test")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("normal forms"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(student)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	url := decodeData(t, w)["fileUrl"].(string)
	w = api.do(http.MethodGet, url, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "normal forms", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Disposition"), "notes.txt")

	w = api.do(http.MethodGet, "/api/files/missing", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/upload", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var env struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func TestDemotedOrDeletedAdminLosesAccess(t *testing.T) {
	api := newAPI(t)
	root := api.login(adminEmail, adminPassword, "admin")

	for _, email := range []string{"second@dept.test", "third@dept.test"} {
		w := api.do(http.MethodPost, "/api/users", map[string]string{
			"name": "Deputy", "email": email, "password": "deputypass1", "role": "admin",
		}, root)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	second := api.login("second@dept.test", "deputypass1", "admin")
	third := api.login("third@dept.test", "deputypass1", "admin")
	secondID := decodeData(t, api.do(http.MethodGet, "/api/auth/me", nil, second))["id"].(string)
	thirdID := decodeData(t, api.do(http.MethodGet, "/api/auth/me", nil, third))["id"].(string)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/users", nil, second).Code)

	// demotion takes effect on the very next request with the old cookie
	w := api.do(http.MethodPut, "/api/users", map[string]string{"id": secondID, "role": "student"}, root)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/users", nil, second).Code)
	w = api.do(http.MethodPost, "/api/resources?type=pyqs", map[string]interface{}{"title": "DBMS 2023"}, second)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "student", decodeData(t, api.do(http.MethodGet, "/api/auth/me", nil, second))["role"])

	// a deleted account's cookie no longer identifies anyone
	w = api.do(http.MethodDelete, "/api/users?id="+thirdID, nil, root)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/users", nil, third).Code)
	require.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/me", nil, third).Code)
	w = api.do(http.MethodPost, "/api/resources?type=pyqs", map[string]interface{}{"title": "DBMS 2024"}, third)
	require.Contains(t, []int{http.StatusUnauthorized, http.StatusForbidden}, w.Code)

	// deactivation behaves like deletion
	w = api.do(http.MethodPut, "/api/users", map[string]interface{}{"id": secondID, "isActive": false}, root)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/me", nil, second).Code)
}

func TestQuizAccessApprovalFlow(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword, "admin")

	w := api.do(http.MethodPost, "/api/resources?type=quizzes", map[string]interface{}{"title": "Graph Theory"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quizID := decodeData(t, w)["id"].(string)

	ada := api.signup("Ada", "ada@dept.test")
	adaID := decodeData(t, api.do(http.MethodGet, "/api/auth/me", nil, ada))["id"].(string)

	w = api.do(http.MethodPost, "/api/notifications", map[string]interface{}{
		"type": "quiz_access_request", "title": "Quiz access request", "message": "May I take it?",
		"targetRole": "admin", "quizId": quizID,
	}, ada)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	request := decodeData(t, w)
	require.Equal(t, adaID, request["studentId"])
	require.Equal(t, "pending", request["status"])
	requestID := request["id"].(string)

	inbox := decodeList(t, api.do(http.MethodGet, "/api/notifications", nil, admin))
	require.Len(t, inbox, 1)
	require.Empty(t, decodeList(t, api.do(http.MethodGet, "/api/notifications", nil, ada)))

	w = api.do(http.MethodPut, "/api/notifications", map[string]interface{}{"id": requestID, "status": "approved"}, ada)
	require.Equal(t, http.StatusForbidden, w.Code)

	approve := map[string]interface{}{"id": requestID, "status": "approved"}
	w = api.do(http.MethodPut, "/api/notifications", approve, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "approved", decodeData(t, w)["status"])

	quiz := decodeData(t, api.do(http.MethodGet, "/api/resources?type=quizzes&id="+quizID, nil, admin))
	require.Equal(t, []interface{}{adaID}, quiz["assignedTo"])

	replies := decodeList(t, api.do(http.MethodGet, "/api/notifications", nil, ada))
	require.Len(t, replies, 1)
	require.Equal(t, "quiz_access_approved", replies[0]["type"])
	require.Equal(t, "approved", replies[0]["status"])

	// repeating the approval does not notify the student again
	w = api.do(http.MethodPut, "/api/notifications", approve, admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeList(t, api.do(http.MethodGet, "/api/notifications", nil, ada)), 1)

	w = api.do(http.MethodPut, "/api/notifications", map[string]interface{}{"id": replies[0]["id"], "read": true}, ada)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, true, decodeData(t, w)["read"])
}

func TestQuizResultResubmissionKeepsOneRecord(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword, "admin")

	w := api.do(http.MethodPost, "/api/resources?type=quizzes", map[string]interface{}{"title": "Normal Forms"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quizID := decodeData(t, w)["id"].(string)

	ada := api.signup("Ada", "ada@dept.test")

	w = api.do(http.MethodPost, "/api/quiz-results", map[string]interface{}{"quizId": quizID, "score": 4}, ada)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	firstID := decodeData(t, w)["id"]

	w = api.do(http.MethodPost, "/api/quiz-results", map[string]interface{}{
		"quizId": quizID, "score": 9, "answers": map[string]string{"q1": "b"},
	}, ada)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, firstID, decodeData(t, w)["id"])

	results := decodeList(t, api.do(http.MethodGet, "/api/quiz-results", nil, ada))
	require.Len(t, results, 1)
	require.Equal(t, float64(9), results[0]["score"])
	require.Equal(t, quizID, results[0]["quizId"])

	w = api.do(http.MethodPost, "/api/quiz-results", map[string]interface{}{"quizId": "missing", "score": 1}, ada)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/quiz-results", map[string]interface{}{"quizId": quizID, "score": 1}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
