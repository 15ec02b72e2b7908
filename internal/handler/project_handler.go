package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"sketchbin/internal/model"
	"sketchbin/internal/service"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// SaveProjectRequest represents a project create/update request. An empty
// code creates a new project.
type SaveProjectRequest struct {
	Code        string `json:"code"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Public      bool   `json:"public"`
	Type        string `json:"type" validate:"omitempty,oneof=robot canvas"`
}

// SaveThumbnailRequest carries a PNG thumbnail as a base64 data URI.
type SaveThumbnailRequest struct {
	Thumbnail string `json:"thumbnail" validate:"required"`
}

// SaveProjectResponse carries the public project code.
type SaveProjectResponse struct {
	Code string `json:"code"`
}

// Get godoc
// @Summary Fetch a project by code
// @Tags projects
// @Produce json
// @Param code path string true "Project code"
// @Success 200 {object} model.Project
// @Failure 404 {object} apperr.ErrorResponse
// @Router /projects/{code} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.projectService.GetProject(c.Request().Context(), bearerToken(c), c.Param("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// Save godoc
// @Summary Create or update an owned project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body SaveProjectRequest true "Project fields"
// @Success 200 {object} SaveProjectResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) Save(c echo.Context) error {
	var req SaveProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	projectType := model.ProjectType(req.Type)
	if projectType == "" {
		projectType = model.ProjectTypeRobot
	}

	code, err := h.projectService.SaveProject(c.Request().Context(), bearerToken(c), service.SaveProjectInput{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		IsPublic:    req.Public,
		Type:        projectType,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, SaveProjectResponse{Code: code})
}

// Delete godoc
// @Summary Delete an owned project
// @Tags projects
// @Produce json
// @Param code path string true "Project code"
// @Success 200 {object} map[string]string
// @Failure 404 {object} apperr.ErrorResponse
// @Router /projects/{code} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.projectService.DeleteProject(c.Request().Context(), bearerToken(c), c.Param("code")); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "project deleted")
}

// SaveThumbnail godoc
// @Summary Store a project thumbnail
// @Tags projects
// @Accept json
// @Produce json
// @Param code path string true "Project code"
// @Param request body SaveThumbnailRequest true "PNG data URI"
// @Success 200 {object} map[string]string
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /projects/{code}/thumbnail [post]
func (h *ProjectHandler) SaveThumbnail(c echo.Context) error {
	var req SaveThumbnailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.projectService.SaveThumbnail(c.Request().Context(), bearerToken(c), c.Param("code"), req.Thumbnail); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "thumbnail saved")
}

// UserProjects godoc
// @Summary List a user's projects, private ones included for the owner
// @Tags projects
// @Produce json
// @Param name path string true "Owner user name"
// @Param content query bool false "Include project content"
// @Success 200 {array} model.Project
// @Router /users/{name}/projects [get]
func (h *ProjectHandler) UserProjects(c echo.Context) error {
	withContent := c.QueryParam("content") == "true"
	projects, err := h.projectService.GetUserProjects(c.Request().Context(), bearerToken(c), c.Param("name"), withContent)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// Featured godoc
// @Summary List featured public projects
// @Tags projects
// @Produce json
// @Success 200 {array} model.Project
// @Router /projects/featured [get]
func (h *ProjectHandler) Featured(c echo.Context) error {
	projects, err := h.projectService.GetFeaturedProjects(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// Admin godoc
// @Summary Page through all projects, admin only
// @Tags admin
// @Produce json
// @Param sort query string false "newest, oldest or lastmodified"
// @Param offset query string false "RFC3339 creation-date offset"
// @Success 200 {array} model.Project
// @Failure 400 {object} apperr.ErrorResponse
// @Router /admin/projects [get]
func (h *ProjectHandler) Admin(c echo.Context) error {
	sorting := service.Sorting(c.QueryParam("sort"))

	var offset time.Time
	if raw := c.QueryParam("offset"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset, want RFC3339")
		}
		offset = parsed
	}

	projects, err := h.projectService.GetProjectsAdmin(c.Request().Context(), bearerToken(c), sorting, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}
