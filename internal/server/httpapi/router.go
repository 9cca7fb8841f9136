package httpapi

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, p services.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type TaskStatusService interface {
	List(ctx context.Context) ([]*models.TaskStatus, error)
	Get(ctx context.Context, id int64) (*models.TaskStatus, error)
	Create(ctx context.Context, in services.TaskStatusInput) (*models.TaskStatus, error)
	Update(ctx context.Context, id int64, p services.TaskStatusPatch) (*models.TaskStatus, error)
	Delete(ctx context.Context, id int64) error
}

type LabelService interface {
	List(ctx context.Context) ([]*models.Label, error)
	Get(ctx context.Context, id int64) (*models.Label, error)
	Create(ctx context.Context, in services.LabelInput) (*models.Label, error)
	Update(ctx context.Context, id int64, p services.LabelPatch) (*models.Label, error)
	Delete(ctx context.Context, id int64) error
}

type TaskService interface {
	List(ctx context.Context, f models.TaskFilter) ([]*models.Task, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, in services.TaskInput) (*models.Task, error)
	Update(ctx context.Context, id int64, p services.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Pinger is implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps carries everything the router wires together.
type Deps struct {
	Auth     AuthService
	Users    UserService
	Statuses TaskStatusService
	Labels   LabelService
	Tasks    TaskService
	DB       Pinger

	Gate   Authenticator
	Policy auth.Policy
	Logger logging.Logger
}

type handler struct {
	Deps
	log logging.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(d Deps) *gin.Engine {
	h := &handler{Deps: d, log: d.Logger.With("module", "httpapi")}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(h.log))

	allow := func(resource, action string) gin.HandlerFunc {
		return Authorize(d.Policy, resource, action, nil, h.log)
	}
	allowOwner := func(resource, action string) gin.HandlerFunc {
		return Authorize(d.Policy, resource, action, OwnerParam("id"), h.log)
	}

	r.GET("/healthz", allow("health", auth.ActionRead), h.health)

	api := r.Group("/api", Authenticate(d.Gate, h.log))

	api.POST("/login", allow("auth", "login"), h.login)
	api.POST("/refresh", allow("auth", "refresh"), h.refresh)
	api.POST("/logout", allow("auth", "logout"), h.logout)

	users := api.Group("/users")
	users.GET("", allow("users", auth.ActionRead), h.listUsers)
	users.GET("/:id", allow("users", auth.ActionRead), h.getUser)
	users.POST("", allow("users", auth.ActionCreate), h.createUser)
	users.PUT("/:id", allowOwner("users", auth.ActionUpdate), h.updateUser)
	users.DELETE("/:id", allowOwner("users", auth.ActionDelete), h.deleteUser)

	statuses := api.Group("/task_statuses")
	statuses.GET("", allow("task_statuses", auth.ActionRead), h.listStatuses)
	statuses.GET("/:id", allow("task_statuses", auth.ActionRead), h.getStatus)
	statuses.POST("", allow("task_statuses", auth.ActionCreate), h.createStatus)
	statuses.PUT("/:id", allow("task_statuses", auth.ActionUpdate), h.updateStatus)
	statuses.DELETE("/:id", allow("task_statuses", auth.ActionDelete), h.deleteStatus)

	labels := api.Group("/labels")
	labels.GET("", allow("labels", auth.ActionRead), h.listLabels)
	labels.GET("/:id", allow("labels", auth.ActionRead), h.getLabel)
	labels.POST("", allow("labels", auth.ActionCreate), h.createLabel)
	labels.PUT("/:id", allow("labels", auth.ActionUpdate), h.updateLabel)
	labels.DELETE("/:id", allow("labels", auth.ActionDelete), h.deleteLabel)

	tasks := api.Group("/tasks")
	tasks.GET("", allow("tasks", auth.ActionRead), h.listTasks)
	tasks.GET("/:id", allow("tasks", auth.ActionRead), h.getTask)
	tasks.POST("", allow("tasks", auth.ActionCreate), h.createTask)
	tasks.PUT("/:id", allow("tasks", auth.ActionUpdate), h.updateTask)
	tasks.DELETE("/:id", allow("tasks", auth.ActionDelete), h.deleteTask)

	return r
}
