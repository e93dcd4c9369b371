package repository

import (
	"context"
	"time"

	"go-stock-newsroom/internal/entity"

	"gorm.io/gorm"
)

// ArticleRepository defines the interface for article data operations.
type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	FindByID(ctx context.Context, id uint) (*entity.Article, error)
	FindByStatus(ctx context.Context, status entity.ArticleStatus) ([]entity.Article, error)
	FindAll(ctx context.Context) ([]entity.Article, error)
	FindPendingUnnotified(ctx context.Context) ([]entity.Article, error)
	MarkNotified(ctx context.Context, ids []uint, notifiedAt time.Time) error
	FindLatestBySymbol(ctx context.Context, stockSymbolID uint) (*entity.Article, error)
	HasFreshDraft(ctx context.Context, stockSymbolID uint, since time.Time) (bool, error)
	UpdateGuarded(ctx context.Context, article *entity.Article, from entity.ArticleStatus) error
}

// NewArticleRepository creates a new GORM-based article repository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
}

func (r *articleRepository) Create(ctx context.Context, article *entity.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *articleRepository) FindByID(ctx context.Context, id uint) (*entity.Article, error) {
	var article entity.Article
	if err := r.db.WithContext(ctx).Preload("StockSymbol").First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindByStatus(ctx context.Context, status entity.ArticleStatus) ([]entity.Article, error) {
	var articles []entity.Article
	if err := r.db.WithContext(ctx).Preload("StockSymbol").
		Where("status = ?", status).
		Order("created_at desc").
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *articleRepository) FindAll(ctx context.Context) ([]entity.Article, error) {
	var articles []entity.Article
	if err := r.db.WithContext(ctx).Preload("StockSymbol").Order("created_at desc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// FindLatestBySymbol returns the most recent article for the symbol, or nil
// when none exists.
func (r *articleRepository) FindLatestBySymbol(ctx context.Context, stockSymbolID uint) (*entity.Article, error) {
	var article entity.Article
	result := r.db.WithContext(ctx).
		Where("stock_symbol_id = ?", stockSymbolID).
		Order("created_at desc").
		First(&article)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &article, nil
}

// FindPendingUnnotified returns pending-review articles the notifier has not
// stamped yet.
func (r *articleRepository) FindPendingUnnotified(ctx context.Context) ([]entity.Article, error) {
	var articles []entity.Article
	if err := r.db.WithContext(ctx).Preload("StockSymbol").
		Where("status = ? AND notified_at IS NULL", entity.ArticleStatusPendingReview).
		Order("created_at asc").
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *articleRepository) MarkNotified(ctx context.Context, ids []uint, notifiedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Article{}).
		Where("id IN ?", ids).
		Update("notified_at", notifiedAt).Error
}

// HasFreshDraft reports whether a draft for the symbol was composed after the
// given time, so the composer does not produce duplicates within one window.
func (r *articleRepository) HasFreshDraft(ctx context.Context, stockSymbolID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Article{}).
		Where("stock_symbol_id = ? AND created_at >= ?", stockSymbolID, since).
		Count(&count).Error
	return count > 0, err
}

// UpdateGuarded persists a review transition with a WHERE precondition on the
// previous status. Zero affected rows means another reviewer got there first.
func (r *articleRepository) UpdateGuarded(ctx context.Context, article *entity.Article, from entity.ArticleStatus) error {
	result := r.db.WithContext(ctx).Model(&entity.Article{}).
		Where("id = ? AND status = ?", article.ID, from).
		Updates(map[string]interface{}{
			"status":            article.Status,
			"motivo_reprovacao": article.RejectionReason,
			"reviewed_at":       article.ReviewedAt,
			"reviewed_by":       article.ReviewedBy,
			"published_at":      article.PublishedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrStatusConflict
	}
	return nil
}
