package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sprint-tracker-api/internal/constants"
	"github.com/yukikurage/sprint-tracker-api/internal/database"
	"github.com/yukikurage/sprint-tracker-api/internal/dto"
	"github.com/yukikurage/sprint-tracker-api/internal/middleware"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testUserID uint64 = 42

// testAPI is a router wired like the server, with a fixed authenticated user
type testAPI struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))

	repos := repository.New(db)
	allocator := services.NewSequenceAllocator(repos)

	workspaceHandler := NewWorkspaceHandler(services.NewWorkspaceService(repos))
	stepHandler := NewStepHandler(services.NewStepService(repos.Steps))
	taskHandler := NewTaskHandler(services.NewTaskService(repos, allocator))
	epicHandler := NewEpicHandler(services.NewEpicService(repos, allocator))
	sprintHandler := NewSprintHandler(services.NewSprintService(repos, nil))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, testUserID)
		c.Next()
	})

	api.POST("/steps", stepHandler.CreateStep)
	api.GET("/steps", stepHandler.ListSteps)

	workspaceID := middleware.RequireIDParam("workspace")
	api.POST("/workspaces", workspaceHandler.CreateWorkspace)
	api.GET("/workspaces", workspaceHandler.ListWorkspaces)
	api.GET("/workspaces/:id", workspaceID, workspaceHandler.GetWorkspace)
	api.PUT("/workspaces/:id", workspaceID, workspaceHandler.UpdateWorkspace)
	api.DELETE("/workspaces/:id", workspaceID, workspaceHandler.DeleteWorkspace)
	api.POST("/workspaces/:id/tasks/move-by-keys", workspaceID, taskHandler.MoveTasksByKeys)

	taskID := middleware.RequireIDParam("task")
	api.GET("/tasks", taskHandler.ListTasks)
	api.POST("/tasks", taskHandler.CreateTask)
	api.GET("/tasks/:id", taskID, taskHandler.GetTask)
	api.PATCH("/tasks/:id", taskID, taskHandler.UpdateTask)
	api.DELETE("/tasks/:id", taskID, taskHandler.DeleteTask)
	api.POST("/tasks/:id/move", taskID, taskHandler.MoveTask)

	epicID := middleware.RequireIDParam("epic")
	api.GET("/epics", epicHandler.ListEpics)
	api.POST("/epics", epicHandler.CreateEpic)
	api.GET("/epics/:id", epicID, epicHandler.GetEpic)
	api.PATCH("/epics/:id", epicID, epicHandler.UpdateEpic)
	api.DELETE("/epics/:id", epicID, epicHandler.DeleteEpic)

	sprintID := middleware.RequireIDParam("sprint")
	api.GET("/sprints", sprintHandler.ListSprints)
	api.POST("/sprints", sprintHandler.CreateSprint)
	api.POST("/sprints/bulk-delete", sprintHandler.BulkDeleteSprints)
	api.GET("/sprints/:id", sprintID, sprintHandler.GetSprint)
	api.PATCH("/sprints/:id", sprintID, sprintHandler.UpdateSprint)
	api.POST("/sprints/:id/activate", sprintID, sprintHandler.ActivateSprint)
	api.POST("/sprints/:id/close", sprintID, sprintHandler.CloseSprint)

	return &testAPI{db: db, router: r}
}

// do sends a request with an optional JSON body
func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// seedWorkflow creates three steps and a workspace using them in order
func (a *testAPI) seedWorkflow(t *testing.T, prefix string) (dto.WorkspaceDTO, []dto.StepDTO) {
	t.Helper()

	steps := make([]dto.StepDTO, 0, 3)
	bindings := make([]map[string]interface{}, 0, 3)
	for i, name := range []string{"To Do", "In Progress", "Done"} {
		w := a.do(t, http.MethodPost, "/api/steps", map[string]string{"name": prefix + " " + name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var step dto.StepDTO
		decode(t, w, &step)
		steps = append(steps, step)
		bindings = append(bindings, map[string]interface{}{"step_id": step.ID, "order": i + 1})
	}

	w := a.do(t, http.MethodPost, "/api/workspaces", map[string]interface{}{
		"name":   prefix + " workspace",
		"prefix": prefix,
		"steps":  bindings,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ws dto.WorkspaceDTO
	decode(t, w, &ws)
	return ws, steps
}
