package services

import (
	"strings"

	"gorm.io/gorm"

	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

type ForumService interface {
	ListPosts(db *gorm.DB, role models.UserRole, req *dto.PostListRequest) (*dto.Page[models.ForumPost], error)
	GetPost(db *gorm.DB, role models.UserRole, postID string) (*models.ForumPost, error)
	CreatePost(db *gorm.DB, authorID string, req *dto.CreatePostRequest) (*models.ForumPost, error)
	UpdatePost(db *gorm.DB, userID string, role models.UserRole, postID string, req *dto.UpdatePostRequest) (*models.ForumPost, error)
	DeletePost(db *gorm.DB, userID string, role models.UserRole, postID string) error
	AddComment(db *gorm.DB, authorID string, role models.UserRole, postID string, req *dto.CreateCommentRequest) (*models.ForumComment, error)
	DeleteComment(db *gorm.DB, userID string, role models.UserRole, commentID string) error
	SetPinned(db *gorm.DB, postID string, pinned bool) error
}

type ForumServiceImpl struct {
	forumRepo           repositories.ForumRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService
}

func NewForumService(
	forumRepo repositories.ForumRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
) ForumService {
	return &ForumServiceImpl{
		forumRepo:           forumRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// ListPosts - закрепленные сверху, скрытые только для админа
func (s *ForumServiceImpl) ListPosts(db *gorm.DB, role models.UserRole, req *dto.PostListRequest) (*dto.Page[models.ForumPost], error) {
	p := pagination(req.PageRequest)
	items, total, err := s.forumRepo.ListPosts(db, repositories.ForumFilter{
		Query:         strings.TrimSpace(req.Query),
		Tag:           strings.TrimSpace(req.Tag),
		IncludeHidden: role == models.UserRoleAdmin,
	}, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toPage(items, total, p), nil
}

func (s *ForumServiceImpl) GetPost(db *gorm.DB, role models.UserRole, postID string) (*models.ForumPost, error) {
	post, err := s.forumRepo.FindPostByID(db, postID, role == models.UserRoleAdmin)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return post, nil
}

func (s *ForumServiceImpl) CreatePost(db *gorm.DB, authorID string, req *dto.CreatePostRequest) (*models.ForumPost, error) {
	post := &models.ForumPost{
		AuthorID: authorID,
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
		Tags:     normalizeTags(req.Tags),
	}
	if err := s.forumRepo.CreatePost(db, post); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return post, nil
}

func (s *ForumServiceImpl) UpdatePost(db *gorm.DB, userID string, role models.UserRole, postID string, req *dto.UpdatePostRequest) (*models.ForumPost, error) {
	post, err := s.forumRepo.FindPostByID(db, postID, role == models.UserRoleAdmin)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if post.AuthorID != userID && role != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	if req.Tags != nil {
		post.Tags = normalizeTags(*req.Tags)
	}

	if err := s.forumRepo.UpdatePost(db, post); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return post, nil
}

func (s *ForumServiceImpl) DeletePost(db *gorm.DB, userID string, role models.UserRole, postID string) error {
	post, err := s.forumRepo.FindPostByID(db, postID, role == models.UserRoleAdmin)
	if err != nil {
		return handleRepoError(err)
	}
	if post.AuthorID != userID && role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	if err := s.forumRepo.DeletePost(db, post.ID); err != nil {
		return handleRepoError(err)
	}
	return nil
}

// AddComment уведомляет автора поста о чужих комментариях
func (s *ForumServiceImpl) AddComment(db *gorm.DB, authorID string, role models.UserRole, postID string, req *dto.CreateCommentRequest) (*models.ForumComment, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	post, err := s.forumRepo.FindPostByID(tx, postID, role == models.UserRoleAdmin)
	if err != nil {
		return nil, handleRepoError(err)
	}

	comment := &models.ForumComment{
		PostID:   post.ID,
		AuthorID: authorID,
		Body:     strings.TrimSpace(req.Body),
	}
	if err := s.forumRepo.CreateComment(tx, comment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	if post.AuthorID != authorID {
		authorName := ""
		if author, err := s.userRepo.FindByID(db, authorID); err == nil {
			authorName = author.Name
		}
		notifyQuiet(s.notificationService, db, post.AuthorID, models.NotificationForumComment, NotificationVars{
			"post_id":     post.ID,
			"post_title":  post.Title,
			"comment_id":  comment.ID,
			"author_name": authorName,
		})
	}
	return comment, nil
}

func (s *ForumServiceImpl) DeleteComment(db *gorm.DB, userID string, role models.UserRole, commentID string) error {
	comment, err := s.forumRepo.FindCommentByID(db, commentID)
	if err != nil {
		return handleRepoError(err)
	}
	if comment.AuthorID != userID && role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	if err := s.forumRepo.DeleteComment(db, comment); err != nil {
		return handleRepoError(err)
	}
	return nil
}

func (s *ForumServiceImpl) SetPinned(db *gorm.DB, postID string, pinned bool) error {
	if err := s.forumRepo.SetPinned(db, postID, pinned); err != nil {
		return handleRepoError(err)
	}
	return nil
}

// normalizeTags - теги в нижнем регистре без повторов
func normalizeTags(tags []string) []string {
	cleaned := cleanSkills(tags)
	for i, tag := range cleaned {
		cleaned[i] = strings.ToLower(tag)
	}
	return cleaned
}
