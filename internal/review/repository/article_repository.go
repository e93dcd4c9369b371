package repository

import (
	"context"

	"go-stock-newsroom/internal/entity"

	"gorm.io/gorm"
)

// ArticleRepository defines the article operations the review gate needs.
type ArticleRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Article, error)
	FindByStatus(ctx context.Context, status entity.ArticleStatus) ([]entity.Article, error)
	FindAll(ctx context.Context) ([]entity.Article, error)
	UpdateGuarded(ctx context.Context, article *entity.Article, from entity.ArticleStatus) error
}

// NewArticleRepository creates a new GORM-based article repository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
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
