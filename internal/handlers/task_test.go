package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/sprint-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	api   *testAPI
	ws    dto.WorkspaceDTO
	steps []dto.StepDTO
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.api = newTestAPI(suite.T())
	suite.ws, suite.steps = suite.api.seedWorkflow(suite.T(), "PRJ")
}

func (suite *TaskHandlerTestSuite) createTask(title string) dto.TaskDTO {
	w := suite.api.do(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"workspace_id": suite.ws.ID,
		"title":        title,
		"step_id":      suite.steps[0].ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	decode(suite.T(), w, &task)
	return task
}

// TestCreateTask_Success tests key allocation and reporter assignment
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	first := suite.createTask("First")
	second := suite.createTask("Second")

	suite.Equal("PRJ-1", first.IDTask)
	suite.Equal("PRJ-2", second.IDTask)
	suite.Equal(testUserID, first.ReporterID)
	suite.Equal("TODO", string(first.Status))
}

// TestCreateTask_InvalidBody tests missing required fields
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidBody() {
	w := suite.api.do(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"workspace_id": suite.ws.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestCreateTask_ForeignStep tests the cross-workspace reference check
func (suite *TaskHandlerTestSuite) TestCreateTask_ForeignStep() {
	_, otherSteps := suite.api.seedWorkflow(suite.T(), "OTH")

	w := suite.api.do(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"workspace_id": suite.ws.ID,
		"title":        "Wrong step",
		"step_id":      otherSteps[0].ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	var apiErr apierrors.APIError
	decode(suite.T(), w, &apiErr)
	suite.Equal(apierrors.ErrCodeInvalidInput, apiErr.Code)
}

// TestCreateTask_UnknownWorkspace tests creating a task in a missing workspace
func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownWorkspace() {
	w := suite.api.do(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"workspace_id": 999,
		"title":        "Nowhere",
		"step_id":      suite.steps[0].ID,
	})
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestListTasks_Success tests listing with pagination metadata
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	suite.createTask("One")
	suite.createTask("Two")
	suite.createTask("Three")

	w := suite.api.do(suite.T(), http.MethodGet, fmt.Sprintf("/api/tasks?workspace_id=%d&page=1&limit=2", suite.ws.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TaskListResponse
	decode(suite.T(), w, &response)
	suite.Len(response.Tasks, 2)
	suite.Equal(int64(3), response.TotalCount)
	suite.Equal(2, response.TotalPages)
	suite.Equal("PRJ-1", response.Tasks[0].IDTask)
}

// TestListTasks_MissingWorkspace tests the required workspace_id query
func (suite *TaskHandlerTestSuite) TestListTasks_MissingWorkspace() {
	w := suite.api.do(suite.T(), http.MethodGet, "/api/tasks", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.api.do(suite.T(), http.MethodGet, "/api/tasks?workspace_id=abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestGetTask tests retrieval and not-found handling
func (suite *TaskHandlerTestSuite) TestGetTask() {
	task := suite.createTask("Find me")

	w := suite.api.do(suite.T(), http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TaskDTO
	decode(suite.T(), w, &response)
	suite.Equal("Find me", response.Title)
	suite.Require().NotNil(response.Step)
	suite.Equal(suite.steps[0].ID, response.Step.ID)

	w = suite.api.do(suite.T(), http.MethodGet, "/api/tasks/999", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.api.do(suite.T(), http.MethodGet, "/api/tasks/abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestUpdateTask tests a partial update
func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	task := suite.createTask("Draft")

	w := suite.api.do(suite.T(), http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]interface{}{
		"title":  "Final",
		"status": "IN_PROGRESS",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var response dto.TaskDTO
	decode(suite.T(), w, &response)
	suite.Equal("Final", response.Title)
	suite.Equal("IN_PROGRESS", string(response.Status))
	suite.Equal(task.IDTask, response.IDTask)

	w = suite.api.do(suite.T(), http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]interface{}{
		"status": "BLOCKED",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestMoveTask tests changing a task's step
func (suite *TaskHandlerTestSuite) TestMoveTask() {
	task := suite.createTask("Move me")

	w := suite.api.do(suite.T(), http.MethodPost, fmt.Sprintf("/api/tasks/%d/move", task.ID), map[string]interface{}{
		"step_id": suite.steps[1].ID,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TaskDTO
	decode(suite.T(), w, &response)
	suite.Equal(suite.steps[1].ID, response.StepID)
}

// TestMoveTasksByKeys tests the bulk move by display key
func (suite *TaskHandlerTestSuite) TestMoveTasksByKeys() {
	suite.createTask("a")
	suite.createTask("b")

	w := suite.api.do(suite.T(), http.MethodPost, fmt.Sprintf("/api/workspaces/%d/tasks/move-by-keys", suite.ws.ID), map[string]interface{}{
		"keys":    []string{"PRJ-1", "prj-2", "PRJ-404"},
		"step_id": suite.steps[2].ID,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var response dto.MoveByKeysResponse
	decode(suite.T(), w, &response)
	suite.Equal(int64(2), response.Moved)

	w = suite.api.do(suite.T(), http.MethodPost, fmt.Sprintf("/api/workspaces/%d/tasks/move-by-keys", suite.ws.ID), map[string]interface{}{
		"keys":    []string{},
		"step_id": suite.steps[2].ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestDeleteTask tests deletion and the epic guard
func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTask("Delete me")

	w := suite.api.do(suite.T(), http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.api.do(suite.T(), http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.api.do(suite.T(), http.MethodPost, "/api/epics", map[string]interface{}{
		"workspace_id": suite.ws.ID,
		"title":        "Epic",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var epic dto.EpicDTO
	decode(suite.T(), w, &epic)

	w = suite.api.do(suite.T(), http.MethodPost, "/api/tasks", map[string]interface{}{
		"workspace_id": suite.ws.ID,
		"title":        "In epic",
		"step_id":      suite.steps[0].ID,
		"epic_id":      epic.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var inEpic dto.TaskDTO
	decode(suite.T(), w, &inEpic)

	w = suite.api.do(suite.T(), http.MethodDelete, fmt.Sprintf("/api/tasks/%d", inEpic.ID), nil)
	suite.Equal(http.StatusConflict, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
