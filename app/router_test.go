package app

import (
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/cache"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/storage"
	"bitwise74/taskcamp/internal/testutil"
	"bitwise74/taskcamp/pkg/security"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "correct horse"

func testConfig() *config.Config {
	return &config.Config{
		App:      config.App{LogLevel: "info", Secret: "test-secret"},
		Host:     config.Host{Port: 8080, Domain: "camp.test"},
		Session:  config.Session{Store: "cookie", Name: "taskcamp_session", MaxAge: 3600},
		Cache:    config.Cache{Store: "memory"},
		Accounts: config.Accounts{ActivationTTL: time.Hour, PasswordResetTTL: time.Hour},
		Upload:   config.Upload{MaxSize: 1 << 20},
		Security: config.Security{RateLimit: 1000},
	}
}

type RouterTestSuite struct {
	suite.Suite
	db    *gorm.DB
	deps  *internal.Deps
	mail  *testutil.Dispatcher
	files *testutil.Storage
	srv   *httptest.Server
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.db = testutil.NewDB(s.T())
	s.mail = &testutil.Dispatcher{}
	s.files = &testutil.Storage{Inner: storage.NewLocalFs(afero.NewMemMapFs())}
	s.deps = internal.NewDeps(testConfig(), s.db, s.files, cache.NewMemory(time.Minute), s.mail, security.NewFast())

	ctx, cancel := context.WithCancel(context.Background())
	s.T().Cleanup(cancel)

	router, err := NewRouter(ctx, s.deps)
	s.Require().NoError(err)

	s.srv = httptest.NewServer(router)
	s.T().Cleanup(s.srv.Close)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

// client returns a cookie keeping client that doesn't follow redirects
func (s *RouterTestSuite) client() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login creates an active user with codenames and returns a client holding
// its session
func (s *RouterTestSuite) login(email string, codenames ...string) *http.Client {
	hash, err := s.deps.Argon.Hash(testPassword)
	s.Require().NoError(err)
	testutil.CreateUser(s.T(), s.db, email, hash, codenames...)

	c := s.client()
	res := s.post(c, "/accounts/login/", url.Values{"username": {email}, "password": {testPassword}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Require().Equal("/", res.Header.Get("Location"))

	return c
}

func (s *RouterTestSuite) get(c *http.Client, path string) *http.Response {
	res, err := c.Get(s.srv.URL + path)
	s.Require().NoError(err)
	s.T().Cleanup(func() { res.Body.Close() })

	return res
}

func (s *RouterTestSuite) post(c *http.Client, path string, form url.Values) *http.Response {
	res, err := c.PostForm(s.srv.URL+path, form)
	s.Require().NoError(err)
	s.T().Cleanup(func() { res.Body.Close() })

	return res
}

func (s *RouterTestSuite) decode(res *http.Response) map[string]any {
	var out map[string]any
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&out))

	return out
}

func (s *RouterTestSuite) TestAnonymousRedirectsToLogin() {
	res := s.get(s.client(), "/projects/?q=a")

	s.Equal(http.StatusFound, res.StatusCode)
	s.Equal("/accounts/login/?next=%2Fprojects%2F%3Fq%3Da", res.Header.Get("Location"))

	res = s.get(s.client(), "/")
	s.Equal(http.StatusFound, res.StatusCode)
}

func (s *RouterTestSuite) TestMissingPermissionIsForbidden() {
	c := s.login("viewer@example.com", "view_task")

	res := s.get(c, "/projects/")
	s.Require().Equal(http.StatusForbidden, res.StatusCode)
	s.Equal("You have no permission to view Projects", s.decode(res)["error"])

	res = s.post(c, "/projects/tasks/1/comment_post/", url.Values{"description": {"hi"}})
	s.Require().Equal(http.StatusForbidden, res.StatusCode)
	s.Equal("You have no permission to add Comment", s.decode(res)["error"])
}

func (s *RouterTestSuite) TestProjectCRUD() {
	c := s.login("pm@example.com", "view_project", "add_project", "change_project", "delete_project")

	res := s.post(c, "/projects/add/", url.Values{"title": {"Apollo"}, "due_date": {"2030-01-02"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/projects/1/", res.Header.Get("Location"))

	res = s.post(c, "/projects/add/", url.Values{"title": {""}})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.get(c, "/projects/1/")
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("Apollo", s.decode(res)["project"].(map[string]any)["title"])

	res = s.post(c, "/projects/1/edit/?next=/projects/", url.Values{"title": {"Apollo 2"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/projects/", res.Header.Get("Location"))

	var p model.Project
	s.Require().NoError(s.db.First(&p, 1).Error)
	s.Equal("Apollo 2", p.Title)

	s.Equal(http.StatusNotFound, s.get(c, "/projects/999/").StatusCode)
	s.Equal(http.StatusNotFound, s.get(c, "/projects/abc/").StatusCode)

	res = s.post(c, "/projects/1/delete/", nil)
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/projects/", res.Header.Get("Location"))

	s.Equal(http.StatusNotFound, s.get(c, "/projects/1/").StatusCode)
}

func (s *RouterTestSuite) TestProjectListSearchAndOrderToggle() {
	c := s.login("pm@example.com", "view_project")
	testutil.CreateProject(s.T(), s.db, "beta")
	testutil.CreateProject(s.T(), s.db, "alpha")
	testutil.CreateProject(s.T(), s.db, "gamma")

	titles := func(body map[string]any) []string {
		var out []string
		for _, row := range body["projects"].([]any) {
			out = append(out, row.(map[string]any)["title"].(string))
		}
		return out
	}

	body := s.decode(s.get(c, "/projects/?order_by=title"))
	s.Equal("title", body["order_by"])
	s.Equal([]string{"alpha", "beta", "gamma"}, titles(body))
	s.Equal("-title", body["order_links"].(map[string]any)["title"])

	body = s.decode(s.get(c, "/projects/?order_by=title"))
	s.Equal("-title", body["order_by"])
	s.Equal([]string{"gamma", "beta", "alpha"}, titles(body))

	body = s.decode(s.get(c, "/projects/"))
	s.Equal("id", body["order_by"])

	body = s.decode(s.get(c, "/projects/?q=ALP"))
	s.Equal([]string{"alpha"}, titles(body))

	s.Equal(http.StatusBadRequest, s.get(c, "/projects/?order_by=password").StatusCode)
}

func (s *RouterTestSuite) TestTaskPagination() {
	c := s.login("dev@example.com", "view_task")
	p := testutil.CreateProject(s.T(), s.db, "paged")
	for i := 0; i < 11; i++ {
		testutil.CreateTask(s.T(), s.db, p.ID, fmt.Sprintf("task %02d", i), model.StatusNew)
	}

	body := s.decode(s.get(c, "/projects/tasks/?page=2"))
	s.Len(body["tasks"], 1)
	s.Equal(float64(2), body["page"].(map[string]any)["num_pages"])

	s.Equal(http.StatusNotFound, s.get(c, "/projects/tasks/?page=3").StatusCode)
	s.Equal(http.StatusNotFound, s.get(c, "/projects/tasks/?page=abc").StatusCode)

	// paging through keeps the remembered direction
	s.Equal("title", s.decode(s.get(c, "/projects/tasks/?order_by=title"))["order_by"])
	s.Equal("title", s.decode(s.get(c, "/projects/tasks/?order_by=title&page=2"))["order_by"])
}

func (s *RouterTestSuite) TestTaskCreateValidatesReferences() {
	c := s.login("dev@example.com", "add_task")
	p := testutil.CreateProject(s.T(), s.db, "refs")

	res := s.post(c, "/projects/tasks/add/", url.Values{"project": {"999"}, "title": {"x"}})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.post(c, "/projects/tasks/add/", url.Values{"project": {fmt.Sprint(p.ID)}, "title": {"x"}, "status": {"bogus"}})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.post(c, "/projects/tasks/add/", url.Values{"project": {fmt.Sprint(p.ID)}, "title": {"x"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/projects/tasks/1/", res.Header.Get("Location"))

	var task model.Task
	s.Require().NoError(s.db.First(&task, 1).Error)
	s.Equal(model.StatusNew, task.Status)
}

func (s *RouterTestSuite) TestTaskEditKeepsStatusWhenOmitted() {
	c := s.login("dev@example.com", "change_task")
	p := testutil.CreateProject(s.T(), s.db, "shipping")
	task := testutil.CreateTask(s.T(), s.db, p.ID, "release", model.StatusDone)

	res := s.post(c, fmt.Sprintf("/projects/tasks/%d/edit/", task.ID), url.Values{"project": {fmt.Sprint(p.ID)}, "title": {"release 1.0"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)

	var got model.Task
	s.Require().NoError(s.db.First(&got, task.ID).Error)
	s.Equal("release 1.0", got.Title)
	s.Equal(model.StatusDone, got.Status)

	res = s.post(c, fmt.Sprintf("/projects/tasks/%d/edit/", task.ID), url.Values{"project": {fmt.Sprint(p.ID)}, "title": {"release 1.0"}, "status": {"closed"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)

	s.Require().NoError(s.db.First(&got, task.ID).Error)
	s.Equal(model.StatusClosed, got.Status)
}

func (s *RouterTestSuite) TestCommentPost() {
	c := s.login("dev@example.com", "view_task", "add_comment", "view_comment")
	p := testutil.CreateProject(s.T(), s.db, "talk")
	task := testutil.CreateTask(s.T(), s.db, p.ID, "discuss", model.StatusNew)

	res := s.post(c, fmt.Sprintf("/projects/tasks/%d/comment_post/", task.ID), url.Values{"description": {"looks good"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal(fmt.Sprintf("/projects/tasks/%d/", task.ID), res.Header.Get("Location"))

	res = s.post(c, fmt.Sprintf("/projects/tasks/%d/comment_post/", task.ID), url.Values{"description": {"  "}})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.post(c, "/projects/tasks/999/comment_post/", url.Values{"description": {"lost"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/projects/tasks/", res.Header.Get("Location"))

	body := s.decode(s.get(c, fmt.Sprintf("/projects/tasks/%d/", task.ID)))
	s.Equal(true, body["can_comment"])
	s.Len(body["comments"], 1)
}

func (s *RouterTestSuite) TestEmployeeCreateAndDelete() {
	c := s.login("hr@example.com", "add_employee", "delete_employee", "view_employee")

	res := s.post(c, "/employees/add/", url.Values{
		"firstname": {"Ada"},
		"surname":   {"Lovelace"},
		"email":     {"ada@example.com"},
		"birthdate": {"1815-12-10"},
	})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/employees/", res.Header.Get("Location"))

	var e model.Employee
	s.Require().NoError(s.db.Where("email = ?", "ada@example.com").First(&e).Error)

	p := testutil.CreateProject(s.T(), s.db, "owned")
	task := testutil.CreateTask(s.T(), s.db, p.ID, "assigned", model.StatusNew)
	s.Require().NoError(s.db.Model(task).Update("assignee_id", e.ID).Error)

	res = s.post(c, fmt.Sprintf("/employees/%d/delete/", e.ID), nil)
	s.Require().Equal(http.StatusFound, res.StatusCode)

	var reloaded model.Task
	s.Require().NoError(s.db.First(&reloaded, task.ID).Error)
	s.Nil(reloaded.AssigneeID)
}

func (s *RouterTestSuite) TestDocumentLifecycle() {
	c := s.login("docs@example.com", "view_project", "add_document", "view_document", "delete_document")
	p := testutil.CreateProject(s.T(), s.db, "papers")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("document", "notes.txt")
	s.Require().NoError(err)
	_, err = io.WriteString(fw, "meeting notes for the launch")
	s.Require().NoError(err)
	s.Require().NoError(w.WriteField("description", "launch notes"))
	s.Require().NoError(w.Close())

	res, err := c.Post(fmt.Sprintf("%s/projects/%d/document_upload/", s.srv.URL, p.ID), w.FormDataContentType(), &buf)
	s.Require().NoError(err)
	res.Body.Close()
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal(fmt.Sprintf("/projects/%d/", p.ID), res.Header.Get("Location"))

	var doc model.Document
	s.Require().NoError(s.db.First(&doc).Error)
	s.Equal("notes.txt", doc.Title)
	s.Equal("launch notes", doc.Description)
	s.Equal(int64(1), s.db.Model(p).Association("Documents").Count())

	res = s.get(c, fmt.Sprintf("/documents/%d/", doc.ID))
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Contains(res.Header.Get("Content-Disposition"), "notes.txt")
	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	s.Equal("meeting notes for the launch", string(body))

	res = s.post(c, fmt.Sprintf("/documents/%d/delete/", doc.ID), nil)
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal(1, s.files.Deletes[doc.FileKey])

	s.Equal(http.StatusNotFound, s.get(c, fmt.Sprintf("/documents/%d/", doc.ID)).StatusCode)
	s.Equal(http.StatusNotFound, s.post(c, fmt.Sprintf("/documents/%d/delete/", doc.ID), nil).StatusCode)
}

func (s *RouterTestSuite) TestUploadToMissingProject() {
	c := s.login("docs@example.com", "add_document")

	res := s.get(c, "/projects/42/document_upload/")
	s.Equal(http.StatusNotFound, res.StatusCode)
}

func (s *RouterTestSuite) TestRegisterActivateAndLogin() {
	c := s.client()

	res := s.post(c, "/accounts/register/", url.Values{
		"email":     {"new@example.com"},
		"password1": {testPassword},
		"password2": {testPassword},
	})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/accounts/register/done/", res.Header.Get("Location"))

	// inactive accounts can't log in
	res = s.post(c, "/accounts/login/", url.Values{"username": {"new@example.com"}, "password": {testPassword}})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	m, ok := s.mail.Last("activation")
	s.Require().True(ok)
	link, err := url.Parse(m.Link)
	s.Require().NoError(err)
	s.Equal("camp.test", link.Host)

	res = s.get(c, link.Path)
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/", res.Header.Get("Location"))
	s.Equal(1, s.mail.Count("welcome"))

	res = s.get(c, "/")
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Contains(s.decode(res), "projects")

	res = s.get(c, link.Path)
	s.Require().Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal("hash is not found or expired", s.decode(res)["error"])

	parts := strings.Split(strings.Trim(link.Path, "/"), "/")
	s.Equal(http.StatusBadRequest, s.get(s.client(), "/accounts/activate/"+parts[2]+"/bad/").StatusCode)
}

func (s *RouterTestSuite) TestLoginRejectsBadPassword() {
	s.login("user@example.com")

	res := s.post(s.client(), "/accounts/login/", url.Values{"username": {"user@example.com"}, "password": {"wrong password"}})
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *RouterTestSuite) TestLoginHonoursNext() {
	hash, err := s.deps.Argon.Hash(testPassword)
	s.Require().NoError(err)
	testutil.CreateUser(s.T(), s.db, "next@example.com", hash)

	c := s.client()
	res := s.post(c, "/accounts/login/?next=/projects/", url.Values{"username": {"next@example.com"}, "password": {testPassword}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/projects/", res.Header.Get("Location"))

	res = s.post(s.client(), "/accounts/login/?next=https://evil.test/", url.Values{"username": {"next@example.com"}, "password": {testPassword}})
	s.Equal("/", res.Header.Get("Location"))
}

func (s *RouterTestSuite) TestLogout() {
	c := s.login("bye@example.com", "view_project")

	res := s.get(c, "/accounts/logout/")
	s.Require().Equal(http.StatusFound, res.StatusCode)

	s.Equal(http.StatusFound, s.get(c, "/projects/").StatusCode)
}

func (s *RouterTestSuite) TestPasswordReset() {
	s.login("forgot@example.com")
	c := s.client()

	res := s.post(c, "/accounts/password_reset/", url.Values{"email": {"forgot@example.com"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/accounts/password_reset/done/", res.Header.Get("Location"))

	m, ok := s.mail.Last("password_reset")
	s.Require().True(ok)
	link, err := url.Parse(m.Context["reset_link"].(string))
	s.Require().NoError(err)

	s.Equal(http.StatusOK, s.get(c, link.Path).StatusCode)

	res = s.post(c, link.Path, url.Values{"new_password1": {"a new password"}, "new_password2": {"a new password"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)
	s.Equal("/accounts/password_reset/complete/", res.Header.Get("Location"))

	// the link dies with the old password
	s.Equal(http.StatusBadRequest, s.get(c, link.Path).StatusCode)

	res = s.post(c, "/accounts/login/", url.Values{"username": {"forgot@example.com"}, "password": {"a new password"}})
	s.Equal(http.StatusFound, res.StatusCode)

	// unknown addresses look the same
	res = s.post(c, "/accounts/password_reset/", url.Values{"email": {"nobody@example.com"}})
	s.Equal(http.StatusFound, res.StatusCode)
	s.Equal(1, s.mail.Count("password_reset"))
}

func (s *RouterTestSuite) TestProfileEdit() {
	c := s.login("me@example.com")

	res := s.post(c, "/accounts/profile/", url.Values{"first_name": {"Grace"}, "last_name": {"Hopper"}, "birthdate": {"1906-12-09"}})
	s.Require().Equal(http.StatusFound, res.StatusCode)

	var u model.User
	s.Require().NoError(s.db.Where("email = ?", "me@example.com").First(&u).Error)
	s.Equal("Grace", u.FirstName)
	s.Require().NotNil(u.Birthdate)

	res = s.post(c, "/accounts/profile/", url.Values{"birthdate": {"yesterday"}})
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *RouterTestSuite) TestStatusPageOK() {
	res := s.get(s.client(), "/status-page/")
	s.Require().Equal(http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	s.Equal("DB connection is OK", string(body))
}

func (s *RouterTestSuite) TestUnknownRoute() {
	s.Equal(http.StatusNotFound, s.get(s.client(), "/nowhere/").StatusCode)
}

func TestStatusPageFail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec("SELECT 1").WillReturnError(errors.New("connection refused"))

	d := internal.NewDeps(testConfig(), conn, storage.NewLocalFs(afero.NewMemMapFs()), cache.NewMemory(time.Minute), &testutil.Dispatcher{}, security.NewFast())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router, err := NewRouter(ctx, d)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status-page/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "DB connection Fail", w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedDashboardKeepsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conn := testutil.NewDB(t)
	cfg := testConfig()
	cfg.Cache.DashboardTTL = time.Minute

	d := internal.NewDeps(cfg, conn, storage.NewLocalFs(afero.NewMemMapFs()), cache.NewMemory(time.Minute), &testutil.Dispatcher{}, security.NewFast())

	hash, err := d.Argon.Hash(testPassword)
	require.NoError(t, err)
	testutil.CreateUser(t, conn, "boss@example.com", hash)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router, err := NewRouter(ctx, d)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	res, err := c.PostForm(srv.URL+"/accounts/login/", url.Values{"username": {"boss@example.com"}, "password": {testPassword}})
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusFound, res.StatusCode)

	var ids []string
	for i := 0; i < 2; i++ {
		res, err := c.Get(srv.URL + "/")
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		ids = append(ids, res.Header.Get("X-Request-ID"))
	}

	require.NotEmpty(t, ids[0])
	require.NotEmpty(t, ids[1])
	require.NotEqual(t, ids[0], ids[1])
}
