// Package app builds the HTTP router and the infrastructure behind it
package app

import (
	"bitwise74/taskcamp/app/account"
	"bitwise74/taskcamp/app/document"
	"bitwise74/taskcamp/app/employee"
	"bitwise74/taskcamp/app/home"
	"bitwise74/taskcamp/app/project"
	"bitwise74/taskcamp/app/root"
	"bitwise74/taskcamp/app/task"
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/pkg/middleware"
	"bitwise74/taskcamp/pkg/validators"
	"context"
	"fmt"
	"net/http"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRouter registers every route on a new engine. ctx bounds background
// work started for the router, like the rate limiter cleanup.
func NewRouter(ctx context.Context, d *internal.Deps) (*gin.Engine, error) {
	validators.RegisterBindings()

	store, err := sessionStore(d.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store, %w", err)
	}

	router := gin.New()

	if len(d.Config.Host.CORS) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.Config.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(
		gin.CustomRecovery(root.Recovery),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.SecureHeaders(d.Config.Host.SSLEnabled, gin.Mode() != gin.ReleaseMode),
		middleware.Metrics(),
		sessions.Sessions(d.Config.Session.Name, store),
		middleware.LoadUser(d.Users),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	router.NoRoute(root.NoRoute)
	router.NoMethod(root.NoMethod)

	rateLimiter := middleware.NewRateLimiter(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: d.Config.Security.RateLimit,
		CleanupInterval:   time.Minute,
	})
	uploadLimit := middleware.BodySizeLimiter(d.Config.Upload.MaxSize + 1<<20)

	// HEAD /heartbeat			-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	// GET /status-page/			-> Checks the database connection
	router.GET("/status-page/", func(c *gin.Context) { root.StatusPage(c, d) })

	// GET /metrics			-> Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// GET /				-> Dashboard summary
	router.GET("/", middleware.RequireLogin(), middleware.PinRequestID(), cacheFor(d, d.Config.Cache.DashboardTTL), func(c *gin.Context) { home.Dashboard(c, d) })

	a := router.Group("/accounts", rateLimiter.Handler())
	{
		// GET/POST /accounts/register/		-> Registers an inactive user
		a.GET("/register/", account.RegisterForm)
		a.POST("/register/", func(c *gin.Context) { account.Register(c, d) })
		a.GET("/register/done/", account.RegisterDone)

		// GET /accounts/activate/:hash/:token/	-> Activates a user and logs them in
		a.GET("/activate/:hash/:token/", func(c *gin.Context) { account.Activate(c, d) })

		// GET/POST /accounts/login/		-> Starts a session
		a.GET("/login/", account.LoginForm)
		a.POST("/login/", func(c *gin.Context) { account.Login(c, d) })

		// GET/POST /accounts/logout/		-> Ends the session
		a.GET("/logout/", account.Logout)
		a.POST("/logout/", account.Logout)

		// GET/POST /accounts/password_reset/	-> Mails a password reset link
		a.GET("/password_reset/", account.PasswordResetForm)
		a.POST("/password_reset/", func(c *gin.Context) { account.PasswordReset(c, d) })
		a.GET("/password_reset/done/", account.PasswordResetDone)
		a.GET("/password_reset/confirm/:uid/:token/", func(c *gin.Context) { account.PasswordResetConfirmForm(c, d) })
		a.POST("/password_reset/confirm/:uid/:token/", func(c *gin.Context) { account.PasswordResetConfirm(c, d) })
		a.GET("/password_reset/complete/", account.PasswordResetComplete)

		// GET/POST /accounts/profile/		-> Shows and edits the user's profile
		a.GET("/profile/", middleware.RequireLogin(), account.Profile)
		a.POST("/profile/", middleware.RequireLogin(), func(c *gin.Context) { account.ProfileEdit(c, d) })
	}

	viewProject := perm(model.ActionView, model.EntityProject, "You have no permission to view Projects")
	addProject := perm(model.ActionAdd, model.EntityProject, "You have no permission to create Projects")
	changeProject := perm(model.ActionChange, model.EntityProject, "You have no permission to edit Projects")
	deleteProject := perm(model.ActionDelete, model.EntityProject, "You have no permission to delete Projects")

	viewTask := perm(model.ActionView, model.EntityTask, "You have no permission to view Tasks")
	addTask := perm(model.ActionAdd, model.EntityTask, "You have no permission to create Tasks")
	changeTask := perm(model.ActionChange, model.EntityTask, "You have no permission to edit Tasks")
	deleteTask := perm(model.ActionDelete, model.EntityTask, "You have no permission to delete Tasks")
	addComment := perm(model.ActionAdd, model.EntityComment, "You have no permission to add Comment")

	viewEmployee := perm(model.ActionView, model.EntityEmployee, "You have no permission to view Employees")
	addEmployee := perm(model.ActionAdd, model.EntityEmployee, "You have no permission to create Employees")
	changeEmployee := perm(model.ActionChange, model.EntityEmployee, "You have no permission to edit Employees")
	deleteEmployee := perm(model.ActionDelete, model.EntityEmployee, "You have no permission to delete Employees")

	viewDocument := perm(model.ActionView, model.EntityDocument, "You have no permission to view Documents")
	addDocument := perm(model.ActionAdd, model.EntityDocument, "You have no permission to upload Documents")
	deleteDocument := perm(model.ActionDelete, model.EntityDocument, "You have no permission to delete Documents")

	projectDocs := document.ProjectTarget(d)
	taskDocs := document.TaskTarget(d)

	p := router.Group("/projects")
	{
		// GET /projects/			-> Lists projects with their completion
		p.GET("/", viewProject, func(c *gin.Context) { project.ProjectList(c, d) })

		// GET/POST /projects/add/		-> Creates a project
		p.GET("/add/", addProject, project.ProjectForm)
		p.POST("/add/", addProject, func(c *gin.Context) { project.ProjectCreate(c, d) })

		// GET /projects/:id/			-> Project detail with its tasks
		p.GET("/:id/", viewProject, func(c *gin.Context) { project.ProjectDetail(c, d) })

		// GET/POST /projects/:id/edit/		-> Edits a project
		p.GET("/:id/edit/", changeProject, func(c *gin.Context) { project.ProjectEditForm(c, d) })
		p.POST("/:id/edit/", changeProject, func(c *gin.Context) { project.ProjectEdit(c, d) })

		// GET/POST /projects/:id/delete/	-> Deletes a project with its tasks
		p.GET("/:id/delete/", deleteProject, func(c *gin.Context) { project.ProjectDeleteConfirm(c, d) })
		p.POST("/:id/delete/", deleteProject, func(c *gin.Context) { project.ProjectDelete(c, d) })

		// GET/POST /projects/:id/document_upload/	-> Attaches a document to a project
		p.GET("/:id/document_upload/", addDocument, func(c *gin.Context) { document.UploadForm(c, d, projectDocs) })
		p.POST("/:id/document_upload/", addDocument, uploadLimit, func(c *gin.Context) { document.Upload(c, d, projectDocs) })
	}

	t := p.Group("/tasks")
	{
		// GET /projects/tasks/			-> Paginated task list
		t.GET("/", viewTask, func(c *gin.Context) { task.TaskList(c, d) })

		// GET/POST /projects/tasks/add/	-> Creates a task
		t.GET("/add/", addTask, task.TaskForm)
		t.POST("/add/", addTask, func(c *gin.Context) { task.TaskCreate(c, d) })

		// GET /projects/tasks/:id/		-> Task detail with its comments
		t.GET("/:id/", viewTask, func(c *gin.Context) { task.TaskDetail(c, d) })

		// GET/POST /projects/tasks/:id/edit/	-> Edits a task
		t.GET("/:id/edit/", changeTask, func(c *gin.Context) { task.TaskEditForm(c, d) })
		t.POST("/:id/edit/", changeTask, func(c *gin.Context) { task.TaskEdit(c, d) })

		// GET/POST /projects/tasks/:id/delete/	-> Deletes a task with its comments
		t.GET("/:id/delete/", deleteTask, func(c *gin.Context) { task.TaskDeleteConfirm(c, d) })
		t.POST("/:id/delete/", deleteTask, func(c *gin.Context) { task.TaskDelete(c, d) })

		// POST /projects/tasks/:id/comment_post/	-> Adds a comment
		t.POST("/:id/comment_post/", addComment, func(c *gin.Context) { task.CommentPost(c, d) })

		// GET/POST /projects/tasks/:id/document_upload/	-> Attaches a document to a task
		t.GET("/:id/document_upload/", addDocument, func(c *gin.Context) { document.UploadForm(c, d, taskDocs) })
		t.POST("/:id/document_upload/", addDocument, uploadLimit, func(c *gin.Context) { document.Upload(c, d, taskDocs) })
	}

	e := router.Group("/employees")
	{
		// GET /employees/			-> Lists employees
		e.GET("/", viewEmployee, func(c *gin.Context) { employee.EmployeeList(c, d) })

		// GET/POST /employees/add/		-> Creates an employee
		e.GET("/add/", addEmployee, employee.EmployeeForm)
		e.POST("/add/", addEmployee, func(c *gin.Context) { employee.EmployeeCreate(c, d) })

		// GET /employees/:id/			-> Employee detail with assigned tasks
		e.GET("/:id/", viewEmployee, func(c *gin.Context) { employee.EmployeeDetail(c, d) })

		// GET/POST /employees/:id/edit/	-> Edits an employee
		e.GET("/:id/edit/", changeEmployee, func(c *gin.Context) { employee.EmployeeEditForm(c, d) })
		e.POST("/:id/edit/", changeEmployee, func(c *gin.Context) { employee.EmployeeEdit(c, d) })

		// GET/POST /employees/:id/delete/	-> Deletes an employee
		e.GET("/:id/delete/", deleteEmployee, func(c *gin.Context) { employee.EmployeeDeleteConfirm(c, d) })
		e.POST("/:id/delete/", deleteEmployee, func(c *gin.Context) { employee.EmployeeDelete(c, d) })
	}

	docs := router.Group("/documents")
	{
		// GET /documents/:id/			-> Downloads a document
		docs.GET("/:id/", viewDocument, func(c *gin.Context) { document.DocumentDownload(c, d) })

		// POST /documents/:id/delete/		-> Deletes a document and its file
		docs.POST("/:id/delete/", deleteDocument, func(c *gin.Context) { document.DocumentDelete(c, d) })
	}

	return router, nil
}

func perm(action, entity, message string) gin.HandlerFunc {
	return middleware.RequirePermission(model.Codename(action, entity), message)
}

func sessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store

	switch cfg.Session.Store {
	case "redis":
		s, err := redisStore.NewStore(10, "tcp", cfg.Redis.Addr, cfg.Redis.Password, []byte(cfg.App.Secret))
		if err != nil {
			return nil, err
		}
		store = s
	default:
		store = cookie.NewStore([]byte(cfg.App.Secret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Host.SSLEnabled,
		SameSite: http.SameSiteLaxMode,
	})

	return store, nil
}

// cacheFor caches whole responses by request URI. A zero ttl disables it.
func cacheFor(d *internal.Deps, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var store persist.CacheStore = d.Cache
	return cache.CacheByRequestURI(store, ttl)
}
