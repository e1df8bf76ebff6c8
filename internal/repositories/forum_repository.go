package repositories

import (
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("forum post not found")
	ErrCommentNotFound = errors.New("forum comment not found")
)

type ForumRepository interface {
	CreatePost(db *gorm.DB, post *models.ForumPost) error
	FindPostByID(db *gorm.DB, id string, includeHidden bool) (*models.ForumPost, error)
	UpdatePost(db *gorm.DB, post *models.ForumPost) error
	DeletePost(db *gorm.DB, id string) error
	ListPosts(db *gorm.DB, filter ForumFilter, p Pagination) ([]models.ForumPost, int64, error)
	SetPostHidden(db *gorm.DB, id string, hidden bool) error
	SetPinned(db *gorm.DB, id string, pinned bool) error

	CreateComment(db *gorm.DB, comment *models.ForumComment) error
	FindCommentByID(db *gorm.DB, id string) (*models.ForumComment, error)
	DeleteComment(db *gorm.DB, comment *models.ForumComment) error
	SetCommentHidden(db *gorm.DB, id string, hidden bool) error
}

type ForumFilter struct {
	Query         string
	Tag           string
	AuthorID      string
	IncludeHidden bool
}

type ForumRepositoryImpl struct{}

func NewForumRepository() ForumRepository {
	return &ForumRepositoryImpl{}
}

func (r *ForumRepositoryImpl) CreatePost(db *gorm.DB, post *models.ForumPost) error {
	return db.Omit("Author", "Comments").Create(post).Error
}

// FindPostByID загружает пост с автором и комментариями (по возрастанию даты)
func (r *ForumRepositoryImpl) FindPostByID(db *gorm.DB, id string, includeHidden bool) (*models.ForumPost, error) {
	query := db.Preload("Author").Preload("Comments", func(tx *gorm.DB) *gorm.DB {
		if !includeHidden {
			tx = tx.Where("is_hidden = ?", false)
		}
		return tx.Order("created_at ASC")
	}).Preload("Comments.Author")

	if !includeHidden {
		query = query.Where("is_hidden = ?", false)
	}

	var post models.ForumPost
	if err := query.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *ForumRepositoryImpl) UpdatePost(db *gorm.DB, post *models.ForumPost) error {
	return db.Omit("Author", "Comments").Save(post).Error
}

func (r *ForumRepositoryImpl) DeletePost(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.ForumComment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.ForumPost{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (r *ForumRepositoryImpl) ListPosts(db *gorm.DB, filter ForumFilter, p Pagination) ([]models.ForumPost, int64, error) {
	query := db.Model(&models.ForumPost{})
	if !filter.IncludeHidden {
		query = query.Where("is_hidden = ?", false)
	}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(body) LIKE ?)", pattern, pattern)
	}
	if filter.Tag != "" {
		cond, arg := jsonContains(query, "tags", filter.Tag)
		query = query.Where(cond, arg)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.ForumPost
	err := query.Preload("Author").
		Order("is_pinned DESC, created_at DESC").
		Scopes(paginate(p)).
		Find(&posts).Error
	return posts, total, err
}

func (r *ForumRepositoryImpl) SetPostHidden(db *gorm.DB, id string, hidden bool) error {
	return r.updatePostColumn(db, id, "is_hidden", hidden)
}

func (r *ForumRepositoryImpl) SetPinned(db *gorm.DB, id string, pinned bool) error {
	return r.updatePostColumn(db, id, "is_pinned", pinned)
}

func (r *ForumRepositoryImpl) updatePostColumn(db *gorm.DB, id, column string, value interface{}) error {
	result := db.Model(&models.ForumPost{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *ForumRepositoryImpl) CreateComment(db *gorm.DB, comment *models.ForumComment) error {
	if err := db.Omit("Author").Create(comment).Error; err != nil {
		return err
	}
	return db.Model(&models.ForumPost{}).Where("id = ?", comment.PostID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
}

func (r *ForumRepositoryImpl) FindCommentByID(db *gorm.DB, id string) (*models.ForumComment, error) {
	var comment models.ForumComment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *ForumRepositoryImpl) DeleteComment(db *gorm.DB, comment *models.ForumComment) error {
	result := db.Where("id = ?", comment.ID).Delete(&models.ForumComment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return db.Model(&models.ForumPost{}).
		Where("id = ? AND comment_count > 0", comment.PostID).
		UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error
}

func (r *ForumRepositoryImpl) SetCommentHidden(db *gorm.DB, id string, hidden bool) error {
	result := db.Model(&models.ForumComment{}).Where("id = ?", id).Update("is_hidden", hidden)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
