package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
	"gorm.io/gorm"
)

type WorkspaceServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repos   *repository.Repositories
	service *WorkspaceService
	steps   []*models.Step
	ctx     context.Context
}

func (s *WorkspaceServiceTestSuite) SetupTest() {
	s.db = openTestDB(s.T())
	s.repos = repository.New(s.db)
	s.service = NewWorkspaceService(s.repos)
	s.steps = []*models.Step{
		createStep(s.T(), s.db, "To Do"),
		createStep(s.T(), s.db, "In Progress"),
		createStep(s.T(), s.db, "Done"),
	}
	s.ctx = context.Background()
}

func (s *WorkspaceServiceTestSuite) bindings() []StepBinding {
	return []StepBinding{
		{StepID: s.steps[0].ID, Order: 1},
		{StepID: s.steps[1].ID, Order: 2},
		{StepID: s.steps[2].ID, Order: 3},
	}
}

func (s *WorkspaceServiceTestSuite) TestCreateWorkspace() {
	ws, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{
		Name:   " Platform ",
		Prefix: "plt",
		Steps:  s.bindings(),
	})
	s.Require().NoError(err)

	s.Equal("Platform", ws.Name)
	s.Equal("PLT", ws.Prefix)
	s.Equal(int64(1), ws.NextTaskSeq)
	s.Equal(int64(1), ws.NextEpicSeq)
	s.Require().Len(ws.Steps, 3)
	s.Equal(s.steps[0].ID, ws.Steps[0].StepID)
	s.Equal("Done", ws.Steps[2].Step.Name)
}

func (s *WorkspaceServiceTestSuite) TestCreateWorkspace_PrefixValidation() {
	for _, prefix := range []string{"", "TOOLONG", "AB1", "A-B"} {
		_, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: "ws", Prefix: prefix})
		s.ErrorIs(err, ErrInvalidPrefix, "prefix %q", prefix)
		s.ErrorIs(err, ErrInvalidArgument)
	}

	_, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: " ", Prefix: "OK"})
	s.ErrorIs(err, ErrNameRequired)
}

func (s *WorkspaceServiceTestSuite) TestCreateWorkspace_StepValidation() {
	_, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{
		Name:   "ws",
		Prefix: "WS",
		Steps: []StepBinding{
			{StepID: s.steps[0].ID, Order: 1},
			{StepID: s.steps[0].ID, Order: 2},
		},
	})
	s.ErrorIs(err, ErrDuplicateStep)

	_, err = s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{
		Name:   "ws",
		Prefix: "WS",
		Steps: []StepBinding{
			{StepID: s.steps[0].ID, Order: 1},
			{StepID: s.steps[1].ID, Order: 1},
		},
	})
	s.ErrorIs(err, ErrDuplicateStepOrder)

	_, err = s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{
		Name:   "ws",
		Prefix: "WS",
		Steps:  []StepBinding{{StepID: 999, Order: 1}},
	})
	s.ErrorIs(err, ErrStepNotFound)

	var count int64
	s.Require().NoError(s.db.Model(&models.Workspace{}).Count(&count).Error)
	s.Zero(count)
}

func (s *WorkspaceServiceTestSuite) TestUpdateWorkspace_ReplacesStepsAndKeepsCounters() {
	ws, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: "ws", Prefix: "WS", Steps: s.bindings()})
	s.Require().NoError(err)

	allocator := NewSequenceAllocator(s.repos)
	_, err = allocator.AllocateKey(s.ctx, ws.ID, models.SequenceTask)
	s.Require().NoError(err)

	name := "renamed"
	prefix := "new"
	updated, err := s.service.UpdateWorkspace(s.ctx, ws.ID, UpdateWorkspaceInput{
		Name:   &name,
		Prefix: &prefix,
		Steps: []StepBinding{
			{StepID: s.steps[2].ID, Order: 1},
			{StepID: s.steps[0].ID, Order: 2},
		},
	})
	s.Require().NoError(err)
	s.Equal("renamed", updated.Name)
	s.Equal("NEW", updated.Prefix)
	s.Equal(int64(2), updated.NextTaskSeq)
	s.Equal(int64(1), updated.NextEpicSeq)
	s.Require().Len(updated.Steps, 2)
	s.Equal(s.steps[2].ID, updated.Steps[0].StepID)
	s.Equal(s.steps[0].ID, updated.Steps[1].StepID)

	// Keys allocated after a prefix change use the new prefix
	alloc, err := allocator.AllocateKey(s.ctx, ws.ID, models.SequenceTask)
	s.Require().NoError(err)
	s.Equal("NEW-2", alloc.Key)
}

func (s *WorkspaceServiceTestSuite) TestUpdateWorkspace_StepsNilKeepsEmptyClears() {
	ws, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: "ws", Prefix: "WS", Steps: s.bindings()})
	s.Require().NoError(err)

	name := "kept"
	kept, err := s.service.UpdateWorkspace(s.ctx, ws.ID, UpdateWorkspaceInput{Name: &name})
	s.Require().NoError(err)
	s.Len(kept.Steps, 3)

	cleared, err := s.service.UpdateWorkspace(s.ctx, ws.ID, UpdateWorkspaceInput{Steps: []StepBinding{}})
	s.Require().NoError(err)
	s.Empty(cleared.Steps)
}

func (s *WorkspaceServiceTestSuite) TestUpdateWorkspace_InvalidStepsRollBack() {
	ws, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: "ws", Prefix: "WS", Steps: s.bindings()})
	s.Require().NoError(err)

	name := "should not stick"
	_, err = s.service.UpdateWorkspace(s.ctx, ws.ID, UpdateWorkspaceInput{
		Name:  &name,
		Steps: []StepBinding{{StepID: 999, Order: 1}},
	})
	s.ErrorIs(err, ErrStepNotFound)

	current, err := s.service.GetWorkspace(s.ctx, ws.ID)
	s.Require().NoError(err)
	s.Equal("ws", current.Name)
	s.Len(current.Steps, 3)

	_, err = s.service.UpdateWorkspace(s.ctx, 999, UpdateWorkspaceInput{Name: &name})
	s.ErrorIs(err, ErrWorkspaceNotFound)
}

func (s *WorkspaceServiceTestSuite) TestDeleteWorkspace() {
	empty, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: "empty", Prefix: "EMP", Steps: s.bindings()})
	s.Require().NoError(err)
	busy, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: "busy", Prefix: "BSY"})
	s.Require().NoError(err)

	_, err = NewSprintService(s.repos, newFakeClock()).CreateSprint(s.ctx, CreateSprintInput{WorkspaceID: busy.ID, Name: "S1"})
	s.Require().NoError(err)

	err = s.service.DeleteWorkspace(s.ctx, busy.ID)
	s.ErrorIs(err, ErrWorkspaceHasContents)
	s.ErrorIs(err, ErrConflict)

	s.Require().NoError(s.service.DeleteWorkspace(s.ctx, empty.ID))
	_, err = s.service.GetWorkspace(s.ctx, empty.ID)
	s.ErrorIs(err, ErrWorkspaceNotFound)

	var bindings int64
	s.Require().NoError(s.db.Model(&models.WorkspaceStep{}).Where("workspace_id = ?", empty.ID).Count(&bindings).Error)
	s.Zero(bindings)
}

func (s *WorkspaceServiceTestSuite) TestListWorkspaces() {
	for _, prefix := range []string{"AA", "BB", "CC"} {
		_, err := s.service.CreateWorkspace(s.ctx, CreateWorkspaceInput{Name: prefix, Prefix: prefix})
		s.Require().NoError(err)
	}

	workspaces, total, err := s.service.ListWorkspaces(s.ctx, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(workspaces, 1)
	s.Equal("CC", workspaces[0].Prefix)
}

func TestWorkspaceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceServiceTestSuite))
}
