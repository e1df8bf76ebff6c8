package services

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gorm.io/gorm"

	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"
)

const (
	feedFetchTimeout    = 30 * time.Second
	maxFeedTitleLength  = 255
	maxExternalIDLength = 512
	maxFeedErrorLength  = 1000
	feedParserUserAgent = "placement-backend-feed/1.0"
)

// после этих элементов в тексте ставится пробел
const htmlBlockSelector = "p, div, li, ul, ol, tr, td, th, h1, h2, h3, h4, h5, h6, section, article, blockquote, pre"

// FeedParser - часть gofeed.Parser, которую использует синхронизация
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

type FeedService interface {
	List(db *gorm.DB) ([]models.JobFeed, error)
	Create(db *gorm.DB, req *dto.CreateFeedRequest) (*models.JobFeed, error)
	Delete(db *gorm.DB, feedID string) error
	Sync(ctx context.Context, db *gorm.DB, feedID string) (*dto.FeedSyncResponse, error)
	// SyncAll синхронизирует все активные фиды, ошибки отдельных фидов только логируются
	SyncAll(ctx context.Context, db *gorm.DB) (int, error)
}

type FeedServiceImpl struct {
	feedRepo    repositories.FeedRepository
	jobRepo     repositories.JobRepository
	companyRepo repositories.CompanyRepository
	parser      FeedParser
}

func NewFeedService(
	feedRepo repositories.FeedRepository,
	jobRepo repositories.JobRepository,
	companyRepo repositories.CompanyRepository,
	parser FeedParser,
) FeedService {
	if parser == nil {
		p := gofeed.NewParser()
		p.UserAgent = feedParserUserAgent
		parser = p
	}
	return &FeedServiceImpl{
		feedRepo:    feedRepo,
		jobRepo:     jobRepo,
		companyRepo: companyRepo,
		parser:      parser,
	}
}

func (s *FeedServiceImpl) List(db *gorm.DB) ([]models.JobFeed, error) {
	feeds, err := s.feedRepo.List(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return feeds, nil
}

// Create - без company_id вакансии фида привязываются к компании с именем фида
func (s *FeedServiceImpl) Create(db *gorm.DB, req *dto.CreateFeedRequest) (*models.JobFeed, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	companyID := req.CompanyID
	if companyID != "" {
		if _, err := s.companyRepo.FindByID(tx, companyID); err != nil {
			return nil, handleRepoError(err)
		}
	} else {
		company := &models.Company{Name: strings.TrimSpace(req.Name)}
		if err := s.companyRepo.Create(tx, company); err != nil {
			if apperrors.Is(err, repositories.ErrCompanyAlreadyExists) {
				return nil, apperrors.ValidationError(map[string]string{
					"company_id": "company with this name already exists, pass its company_id",
				})
			}
			return nil, apperrors.InternalError(err)
		}
		companyID = company.ID
	}

	feed := &models.JobFeed{
		Name:      strings.TrimSpace(req.Name),
		URL:       strings.TrimSpace(req.URL),
		CompanyID: companyID,
		IsActive:  true,
	}
	if err := s.feedRepo.Create(tx, feed); err != nil {
		if apperrors.Is(err, repositories.ErrFeedAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return feed, nil
}

func (s *FeedServiceImpl) Delete(db *gorm.DB, feedID string) error {
	if err := s.feedRepo.Delete(db, feedID); err != nil {
		return handleRepoError(err)
	}
	return nil
}

// Sync импортирует новые элементы фида как открытые вакансии.
// Ключ дедупликации - (feed_id, guid или link).
func (s *FeedServiceImpl) Sync(ctx context.Context, db *gorm.DB, feedID string) (*dto.FeedSyncResponse, error) {
	feed, err := s.feedRepo.FindByID(db, feedID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return s.syncFeed(ctx, db, feed)
}

func (s *FeedServiceImpl) SyncAll(ctx context.Context, db *gorm.DB) (int, error) {
	feeds, err := s.feedRepo.ListActive(db)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}

	imported := 0
	for i := range feeds {
		if ctx.Err() != nil {
			return imported, ctx.Err()
		}
		result, err := s.syncFeed(ctx, db, &feeds[i])
		if err != nil {
			logger.WorkerLog("feed", "sync", err, "feed_id", feeds[i].ID, "url", feeds[i].URL)
			continue
		}
		imported += result.Imported
	}
	return imported, nil
}

func (s *FeedServiceImpl) syncFeed(ctx context.Context, db *gorm.DB, feed *models.JobFeed) (*dto.FeedSyncResponse, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, feedFetchTimeout)
	defer cancel()

	now := timeNow()
	parsed, err := s.parser.ParseURLWithContext(feed.URL, fetchCtx)
	if err != nil {
		feed.LastFetchedAt = &now
		feed.LastError = truncate(err.Error(), maxFeedErrorLength)
		if updateErr := s.feedRepo.Update(db, feed); updateErr != nil {
			logger.Error("Failed to store feed error", "feed_id", feed.ID, "error", updateErr)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "feed", "Failed to fetch feed", http.StatusBadGateway)
	}

	result := &dto.FeedSyncResponse{}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		externalID := feedItemKey(item)
		if externalID == "" || strings.TrimSpace(item.Title) == "" {
			result.Skipped++
			continue
		}

		exists, err := s.jobRepo.ExistsByExternalID(db, feed.ID, externalID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if exists {
			result.Skipped++
			continue
		}

		if err := s.jobRepo.Create(db, feedItemJob(feed, item, externalID)); err != nil {
			return nil, apperrors.InternalError(err)
		}
		result.Imported++
	}

	feed.LastFetchedAt = &now
	feed.LastError = ""
	feed.ImportedCount += result.Imported
	if err := s.feedRepo.Update(db, feed); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.WorkerLog("feed", "sync", nil,
		"feed_id", feed.ID,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return result, nil
}

func feedItemKey(item *gofeed.Item) string {
	key := strings.TrimSpace(item.GUID)
	if key == "" {
		key = strings.TrimSpace(item.Link)
	}
	return truncate(key, maxExternalIDLength)
}

func feedItemJob(feed *models.JobFeed, item *gofeed.Item, externalID string) *models.Job {
	description := item.Description
	if strings.TrimSpace(description) == "" {
		description = item.Content
	}

	feedID := feed.ID
	return &models.Job{
		CompanyID:   feed.CompanyID,
		Title:       truncate(strings.TrimSpace(item.Title), maxFeedTitleLength),
		Description: stripHTML(description),
		JobType:     models.JobTypeFullTime,
		WorkMode:    models.WorkModeOnsite,
		Skills:      cleanSkills(item.Categories),
		Openings:    1,
		Status:      models.JobStatusOpen,
		Source:      models.JobSourceFeed,
		FeedID:      &feedID,
		ExternalID:  externalID,
		ExternalURL: strings.TrimSpace(item.Link),
	}
}

func stripHTML(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return strings.Join(strings.Fields(input), " ")
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find(htmlBlockSelector).AppendHtml(" ")

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// truncate обрезает строку до n символов (по рунам)
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
