package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifyArticleRepo struct {
	pending      []entity.Article
	markErr      error
	notifiedIDs  []uint
	notifiedAt   time.Time
}

func (f *fakeNotifyArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	return nil
}

func (f *fakeNotifyArticleRepo) FindByID(ctx context.Context, id uint) (*entity.Article, error) {
	return nil, nil
}

func (f *fakeNotifyArticleRepo) FindByStatus(ctx context.Context, status entity.ArticleStatus) ([]entity.Article, error) {
	return nil, nil
}

func (f *fakeNotifyArticleRepo) FindAll(ctx context.Context) ([]entity.Article, error) {
	return nil, nil
}

func (f *fakeNotifyArticleRepo) FindPendingUnnotified(ctx context.Context) ([]entity.Article, error) {
	return f.pending, nil
}

func (f *fakeNotifyArticleRepo) MarkNotified(ctx context.Context, ids []uint, notifiedAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.notifiedIDs = ids
	f.notifiedAt = notifiedAt
	return nil
}

func (f *fakeNotifyArticleRepo) FindLatestBySymbol(ctx context.Context, stockSymbolID uint) (*entity.Article, error) {
	return nil, nil
}

func (f *fakeNotifyArticleRepo) HasFreshDraft(ctx context.Context, stockSymbolID uint, since time.Time) (bool, error) {
	return false, nil
}

func (f *fakeNotifyArticleRepo) UpdateGuarded(ctx context.Context, article *entity.Article, from entity.ArticleStatus) error {
	return nil
}

type fakeNotifier struct {
	err   error
	sent  []string
	items []telegram.PendingReviewItem
}

func (f *fakeNotifier) SendMessage(text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeNotifier) SendPendingReviewDigest(items []telegram.PendingReviewItem) error {
	if f.err != nil {
		return f.err
	}
	f.items = items
	f.sent = append(f.sent, telegram.FormatPendingReviewDigest(items))
	return nil
}

func pendingArticles() []entity.Article {
	return []entity.Article{
		{
			ID:             1,
			Title:          "PETR4 registrou alta de 1.10%",
			Recommendation: "manter",
			Status:         entity.ArticleStatusPendingReview,
			StockSymbol:    entity.StockSymbol{Symbol: "PETR4"},
		},
		{
			ID:          2,
			Title:       "VALE3 fechou estável",
			Status:      entity.ArticleStatusPendingReview,
			StockSymbol: entity.StockSymbol{Symbol: "VALE3"},
		},
	}
}

func TestNotifyStageNothingPending(t *testing.T) {
	repo := &fakeNotifyArticleRepo{}
	notifier := &fakeNotifier{}
	s := NewNotifyStage(logger.NewNop(), repo, notifier)

	output, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.NoError(t, err)

	var result dto.NotifyStageResult
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Zero(t, result.Candidates)
	assert.Zero(t, result.Notified)
	assert.Empty(t, notifier.sent)
}

func TestNotifyStageSendsAndStamps(t *testing.T) {
	repo := &fakeNotifyArticleRepo{pending: pendingArticles()}
	notifier := &fakeNotifier{}
	s := NewNotifyStage(logger.NewNop(), repo, notifier)

	output, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "PETR4")
	assert.Contains(t, notifier.sent[0], "VALE3")
	require.Len(t, notifier.items, 2)
	assert.Equal(t, uint(1), notifier.items[0].ArticleID)
	assert.Equal(t, "PETR4", notifier.items[0].Symbol)
	assert.Equal(t, []uint{1, 2}, repo.notifiedIDs)
	assert.False(t, repo.notifiedAt.IsZero())

	var result dto.NotifyStageResult
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 2, result.Notified)
}

func TestNotifyStageDryRun(t *testing.T) {
	repo := &fakeNotifyArticleRepo{pending: pendingArticles()}
	notifier := &fakeNotifier{}
	s := NewNotifyStage(logger.NewNop(), repo, notifier)

	output, err := s.Execute(context.Background(), dto.StageRunRequest{DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, notifier.sent)
	assert.Empty(t, repo.notifiedIDs)

	var result dto.NotifyStageResult
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Candidates)
	assert.Zero(t, result.Notified)
}

func TestNotifyStageWithoutNotifier(t *testing.T) {
	repo := &fakeNotifyArticleRepo{pending: pendingArticles()}
	s := NewNotifyStage(logger.NewNop(), repo, nil)

	_, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.Error(t, err)

	stage, ok := dto.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, entity.StageNotifyPending, stage)
	assert.Empty(t, repo.notifiedIDs)
}

func TestNotifyStageSendFailureDoesNotStamp(t *testing.T) {
	repo := &fakeNotifyArticleRepo{pending: pendingArticles()}
	notifier := &fakeNotifier{err: fmt.Errorf("telegram unreachable")}
	s := NewNotifyStage(logger.NewNop(), repo, notifier)

	_, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.Error(t, err)
	assert.Empty(t, repo.notifiedIDs)
}

func TestNotifyStageStampFailureAfterSend(t *testing.T) {
	repo := &fakeNotifyArticleRepo{pending: pendingArticles(), markErr: fmt.Errorf("db gone")}
	notifier := &fakeNotifier{}
	s := NewNotifyStage(logger.NewNop(), repo, notifier)

	_, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.Error(t, err)
	// The digest still went out; re-sending next run is acceptable.
	assert.Len(t, notifier.sent, 1)
}
