package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/models"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

func TestForumService_AddComment(t *testing.T) {
	author := &models.User{Email: "author@campus.edu", Name: "Author"}
	author.ID = newID()
	commenter := &models.User{Email: "commenter@campus.edu", Name: "Ravi"}
	commenter.ID = newID()
	post := &models.ForumPost{AuthorID: author.ID, Title: "Interview tips"}
	post.ID = newID()

	forum := newFakeForumRepo(post)
	notifier := &fakeNotifier{}
	svc := NewForumService(forum, newFakeUserRepo(author, commenter), notifier)
	db, mock := newTestDB(t)
	expectCommit(mock)
	expectCommit(mock)

	// чужой комментарий - автор поста получает уведомление
	comment, err := svc.AddComment(db, commenter.ID, models.UserRoleStudent, post.ID, &dto.CreateCommentRequest{Body: " Thanks! "})
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", comment.Body)
	assert.Equal(t, 1, post.CommentCount)

	sent := notifier.byType(models.NotificationForumComment)
	require.Len(t, sent, 1)
	assert.Equal(t, author.ID, sent[0].UserID)
	assert.Equal(t, "Ravi", sent[0].Vars["author_name"])
	assert.Equal(t, "Interview tips", sent[0].Vars["post_title"])

	// свой комментарий - без уведомления
	_, err = svc.AddComment(db, author.ID, models.UserRoleStudent, post.ID, &dto.CreateCommentRequest{Body: "Update"})
	require.NoError(t, err)
	assert.Len(t, notifier.byType(models.NotificationForumComment), 1)
}

func TestForumService_HiddenPost(t *testing.T) {
	post := &models.ForumPost{AuthorID: newID(), Title: "Hidden", IsHidden: true}
	post.ID = newID()
	svc := NewForumService(newFakeForumRepo(post), newFakeUserRepo(), &fakeNotifier{})
	db, mock := newTestDB(t)
	expectRollback(mock)
	expectCommit(mock)

	_, err := svc.AddComment(db, newID(), models.UserRoleStudent, post.ID, &dto.CreateCommentRequest{Body: "x"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	// админ видит скрытое
	_, err = svc.AddComment(db, newID(), models.UserRoleAdmin, post.ID, &dto.CreateCommentRequest{Body: "x"})
	assert.NoError(t, err)
}

func TestForumService_DeleteComment(t *testing.T) {
	forum := newFakeForumRepo()
	authorID := newID()
	comment := &models.ForumComment{PostID: newID(), AuthorID: authorID, Body: "x"}
	comment.ID = newID()
	forum.comments[comment.ID] = comment
	svc := NewForumService(forum, newFakeUserRepo(), &fakeNotifier{})
	db, _ := newTestDB(t)

	err := svc.DeleteComment(db, newID(), models.UserRoleStudent, comment.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	require.NoError(t, svc.DeleteComment(db, newID(), models.UserRoleAdmin, comment.ID))
	assert.Empty(t, forum.comments)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"golang", "interview"}, normalizeTags([]string{" GoLang", "Interview", "golang", ""}))
}
