package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"sketchbin/internal/access"
	"sketchbin/internal/apperr"
	"sketchbin/internal/files"
	"sketchbin/internal/model"
	"sketchbin/internal/random"
	"sketchbin/internal/repository"
)

const (
	projectCodeLength = 6
	adminPageSize     = 10

	thumbnailPrefix = "data:image/png;base64,"
)

// Sorting selects the admin listing order.
type Sorting string

const (
	SortNewest       Sorting = "newest"
	SortOldest       Sorting = "oldest"
	SortLastModified Sorting = "lastmodified"
)

// SaveProjectInput carries the project fields a caller may set. An empty Code
// creates a new project; a non-empty Code updates an existing one.
type SaveProjectInput struct {
	Code        string
	Title       string
	Description string
	Content     string
	IsPublic    bool
	Type        model.ProjectType
}

// ProjectService exposes the owner-scoped project operations. Access denials
// on view, save and delete are reported as a missing project so callers
// cannot probe for private projects.
type ProjectService interface {
	GetProject(ctx context.Context, token, code string) (*model.Project, error)
	SaveProject(ctx context.Context, token string, in SaveProjectInput) (string, error)
	DeleteProject(ctx context.Context, token, code string) error
	GetUserProjects(ctx context.Context, token, userName string, withContent bool) ([]model.Project, error)
	GetFeaturedProjects(ctx context.Context) ([]model.Project, error)
	GetProjectsAdmin(ctx context.Context, token string, sorting Sorting, dateOffset time.Time) ([]model.Project, error)
	SaveThumbnail(ctx context.Context, token, code, thumbnail string) error
}

type projectService struct {
	projects   repository.ProjectRepository
	auth       AuthService
	thumbnails *files.Store
}

// NewProjectService creates a new project service.
func NewProjectService(projects repository.ProjectRepository, auth AuthService, thumbnails *files.Store) ProjectService {
	return &projectService{
		projects:   projects,
		auth:       auth,
		thumbnails: thumbnails,
	}
}

// resolveOptionalUser maps a blank token to an anonymous caller instead of an
// error; project reads are allowed without a session.
func (s *projectService) resolveOptionalUser(ctx context.Context, token string) (*model.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	return s.auth.GetUserForToken(ctx, token)
}

func (s *projectService) GetProject(ctx context.Context, token, code string) (*model.Project, error) {
	user, err := s.resolveOptionalUser(ctx, token)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProjectDoesNotExist
		}
		return nil, fmt.Errorf("%w: find project: %v", apperr.ErrServer, err)
	}
	if !access.CanView(project, user) {
		return nil, apperr.ErrProjectDoesNotExist
	}
	return project, nil
}

func (s *projectService) SaveProject(ctx context.Context, token string, in SaveProjectInput) (string, error) {
	user, err := s.auth.GetUserForToken(ctx, token)
	if err != nil {
		return "", err
	}

	title := html.EscapeString(in.Title)
	description := html.EscapeString(in.Description)

	if in.Code == "" {
		return s.createProject(ctx, user, title, description, in)
	}

	rows, err := s.projects.UpdateOwned(ctx, in.Code, user.ID, repository.ProjectUpdate{
		Title:       title,
		Description: description,
		Content:     in.Content,
		IsPublic:    in.IsPublic,
	})
	if err != nil {
		return "", fmt.Errorf("%w: update project: %v", apperr.ErrServer, err)
	}
	if rows == 0 {
		return "", apperr.ErrProjectDoesNotExist
	}
	return in.Code, nil
}

// createProject inserts a project under a freshly generated public code,
// retrying on the unlikely code collision.
func (s *projectService) createProject(ctx context.Context, user *model.User, title, description string, in SaveProjectInput) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		project := &model.Project{
			Code:        random.Generate(projectCodeLength),
			UserID:      user.ID,
			UserName:    user.Name,
			Title:       title,
			Description: description,
			Content:     in.Content,
			IsPublic:    in.IsPublic,
			Type:        in.Type,
		}
		err := s.projects.Create(ctx, project)
		if err == nil {
			log.Printf("created project %s of user %s", project.Code, user.Name)
			return project.Code, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			lastErr = err
			continue
		}
		return "", fmt.Errorf("%w: create project: %v", apperr.ErrServer, err)
	}
	return "", fmt.Errorf("%w: project code collision persisted: %v", apperr.ErrServer, lastErr)
}

func (s *projectService) DeleteProject(ctx context.Context, token, code string) error {
	user, err := s.auth.GetUserForToken(ctx, token)
	if err != nil {
		return err
	}

	project, err := s.projects.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrProjectDoesNotExist
		}
		return fmt.Errorf("%w: find project: %v", apperr.ErrServer, err)
	}
	if !access.CanMutate(project, user) {
		return apperr.ErrProjectDoesNotExist
	}

	if err := s.projects.DeleteByCode(ctx, code); err != nil {
		return fmt.Errorf("%w: delete project: %v", apperr.ErrServer, err)
	}
	return nil
}

func (s *projectService) GetUserProjects(ctx context.Context, token, userName string, withContent bool) ([]model.Project, error) {
	user, err := s.resolveOptionalUser(ctx, token)
	if err != nil {
		return nil, err
	}

	projects, err := s.projects.ListByUserName(ctx, userName, withContent)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %v", apperr.ErrServer, err)
	}
	return access.FilterListing(projects, user, userName), nil
}

func (s *projectService) GetFeaturedProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.projects.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list featured: %v", apperr.ErrServer, err)
	}
	return projects, nil
}

// GetProjectsAdmin pages through all projects for admin review, at most
// adminPageSize per call, older than dateOffset (zero value means now).
func (s *projectService) GetProjectsAdmin(ctx context.Context, token string, sorting Sorting, dateOffset time.Time) ([]model.Project, error) {
	user, err := s.auth.GetUserForToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !access.CanListAdmin(user) {
		return nil, apperr.ErrInvalidUserName
	}

	order := repository.OrderNewest
	switch sorting {
	case SortOldest:
		order = repository.OrderOldest
	case SortLastModified:
		order = repository.OrderLastModified
	}
	if dateOffset.IsZero() {
		dateOffset = time.Now()
	}

	projects, err := s.projects.ListBefore(ctx, order, dateOffset, adminPageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %v", apperr.ErrServer, err)
	}
	return projects, nil
}

// SaveThumbnail stores the PNG thumbnail carried in a base64 data URI.
func (s *projectService) SaveThumbnail(ctx context.Context, token, code, thumbnail string) error {
	if !strings.HasPrefix(thumbnail, thumbnailPrefix) {
		return apperr.ErrProjectDoesNotExist
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(thumbnail, thumbnailPrefix))
	if err != nil {
		return fmt.Errorf("%w: decode thumbnail: %v", apperr.ErrServer, err)
	}

	user, err := s.auth.GetUserForToken(ctx, token)
	if err != nil {
		return err
	}

	project, err := s.projects.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrProjectDoesNotExist
		}
		return fmt.Errorf("%w: find project: %v", apperr.ErrServer, err)
	}
	if !access.CanMutate(project, user) {
		return apperr.ErrProjectDoesNotExist
	}

	if err := s.thumbnails.SaveThumbnail(code, png); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrServer, err)
	}
	return nil
}
