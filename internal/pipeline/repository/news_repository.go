package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

// NewsRepository defines the interface for the external news provider.
type NewsRepository interface {
	Search(ctx context.Context, symbol, companyName string, maxResults int) ([]dto.NewsItem, error)
	IsConfigured() bool
}

type newsRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *http.Client
	parser     *gofeed.Parser
}

// NewNewsRepository creates a Google News RSS client.
func NewNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &newsRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.News.Timeout,
		},
		parser: gofeed.NewParser(),
	}
}

// IsConfigured reports whether a news source base URL is set. An unconfigured
// provider degrades the sentiment stage to a placeholder result, it never
// blocks the pipeline.
func (r *newsRepository) IsConfigured() bool {
	return r.cfg.News.BaseURL != ""
}

// Search fetches recent headlines for the symbol, newest first, bounded by
// maxResults and the configured max age.
func (r *newsRepository) Search(ctx context.Context, symbol, companyName string, maxResults int) ([]dto.NewsItem, error) {
	if !r.IsConfigured() {
		return nil, dto.ErrProviderNotConfigured
	}

	query := url.QueryEscape(fmt.Sprintf("%s %s", symbol, companyName))
	feedURL := fmt.Sprintf("%s/rss/search?q=%s&hl=pt-BR&gl=BR&ceid=BR:pt-419", r.cfg.News.BaseURL, query)

	r.log.DebugContext(ctx, "Fetching news feed", logger.StringField("url", feedURL))

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrSourceUnavailable, err)
	}

	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	cutoff := utils.TimeNowBRT().Add(-time.Duration(r.cfg.News.MaxAgeInDays*24) * time.Hour)

	var items []dto.NewsItem
	for _, feedItem := range feed.Items {
		if len(items) >= maxResults {
			break
		}
		if feedItem.PublishedParsed != nil && feedItem.PublishedParsed.Before(cutoff) {
			continue
		}

		item := dto.NewsItem{
			Title:       utils.CleanToValidUTF8(feedItem.Title),
			Description: utils.CleanToValidUTF8(feedItem.Description),
			Link:        feedItem.Link,
			PublishedAt: feedItem.PublishedParsed,
		}
		if parsed, err := url.Parse(feedItem.Link); err == nil {
			item.Source = parsed.Hostname()
		}

		if r.cfg.News.FetchFullContent {
			content, err := r.fetchReadableContent(ctx, feedItem.Link)
			if err != nil {
				r.log.DebugContext(ctx, "Failed to fetch article content, keeping headline only",
					logger.ErrorField(err), logger.StringField("link", feedItem.Link))
			} else {
				item.Content = content
			}
		}

		items = append(items, item)
	}

	return items, nil
}

// fetchReadableContent pulls the page and extracts its readable text.
func (r *newsRepository) fetchReadableContent(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch page, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse page content: %w", err)
	}

	htmlDoc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	content := strings.TrimSpace(htmlDoc.Text())
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\t", " ")
	return utils.CleanToValidUTF8(content), nil
}
