package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sketchbin/internal/model"
)

// ProjectOrder selects the sort key for admin listings.
type ProjectOrder string

const (
	OrderNewest       ProjectOrder = "created_at DESC"
	OrderOldest       ProjectOrder = "created_at ASC"
	OrderLastModified ProjectOrder = "last_modified DESC"
)

// ProjectUpdate carries the owner-editable fields of a project. The public
// code and the owner reference are immutable once assigned.
type ProjectUpdate struct {
	Title       string
	Description string
	Content     string
	IsPublic    bool
}

// ProjectRepository manages project rows.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByCode(ctx context.Context, code string) (*model.Project, error)
	// UpdateOwned applies the update only where both code and owner match and
	// returns the number of matched rows; zero means missing or not owned.
	UpdateOwned(ctx context.Context, code string, userID uint, update ProjectUpdate) (int64, error)
	DeleteByCode(ctx context.Context, code string) error
	// ListByUserName returns the user's projects, most recently modified
	// first. Content is omitted unless withContent is set.
	ListByUserName(ctx context.Context, userName string, withContent bool) ([]model.Project, error)
	ListFeatured(ctx context.Context) ([]model.Project, error)
	// ListBefore returns up to limit projects created before the offset, in
	// the given order.
	ListBefore(ctx context.Context, order ProjectOrder, before time.Time, limit int) ([]model.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository builds a GORM-backed repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) FindByCode(ctx context.Context, code string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) UpdateOwned(ctx context.Context, code string, userID uint, update ProjectUpdate) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("code = ? AND user_id = ?", code, userID).
		Updates(map[string]interface{}{
			"title":         update.Title,
			"description":   update.Description,
			"content":       update.Content,
			"public":        update.IsPublic,
			"last_modified": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *projectRepository) DeleteByCode(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", code).Delete(&model.Project{}).Error
}

func (r *projectRepository) ListByUserName(ctx context.Context, userName string, withContent bool) ([]model.Project, error) {
	q := r.db.WithContext(ctx).Where("user_name = ?", userName).Order("last_modified DESC")
	if !withContent {
		q = q.Omit("content")
	}
	var projects []model.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ListFeatured(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("featured = ? AND public = ?", true, true).
		Order("last_modified DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ListBefore(ctx context.Context, order ProjectOrder, before time.Time, limit int) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Order(string(order)).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
