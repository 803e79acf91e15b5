package service

import (
	"context"
	"regexp"
	"strings"

	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
	"leaf-care-go/pkg/log"
)

const (
	previewMaxRunes = 100
	searchSize      = 10
)

// KnowledgeSearcher 是知识的全文索引，生产环境由 Elasticsearch 提供。
type KnowledgeSearcher interface {
	Index(ctx context.Context, doc model.KnowledgeDocument) error
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// KnowledgeService 提供养护知识的列表、详情与检索。
type KnowledgeService interface {
	List() []model.KnowledgePreview
	Get(id string) (*model.KnowledgeArticle, error)
	Search(ctx context.Context, query string) ([]model.KnowledgePreview, error)
	// IndexAll 将全部条目写入索引，未配置索引时什么都不做。
	IndexAll(ctx context.Context) error
}

type knowledgeService struct {
	repo     repository.KnowledgeRepository
	searcher KnowledgeSearcher
}

// NewKnowledgeService 创建知识服务。searcher 可为 nil，此时检索退化为子串匹配。
func NewKnowledgeService(repo repository.KnowledgeRepository, searcher KnowledgeSearcher) KnowledgeService {
	return &knowledgeService{repo: repo, searcher: searcher}
}

func (s *knowledgeService) List() []model.KnowledgePreview {
	return previews(s.repo.List())
}

func (s *knowledgeService) Get(id string) (*model.KnowledgeArticle, error) {
	a, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrKnowledgeNotFound
	}
	return &a, nil
}

func (s *knowledgeService) Search(ctx context.Context, query string) ([]model.KnowledgePreview, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(), nil
	}

	if s.searcher != nil {
		ids, err := s.searcher.Search(ctx, query, searchSize)
		if err == nil {
			var hits []model.KnowledgeArticle
			for _, id := range ids {
				if a, ok := s.repo.Get(id); ok {
					hits = append(hits, a)
				}
			}
			return previews(hits), nil
		}
		log.Warnf("知识检索失败，回退到本地匹配: %v", err)
	}

	q := strings.ToLower(query)
	var hits []model.KnowledgeArticle
	for _, a := range s.repo.List() {
		if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(PlainText(a.Content)), q) {
			hits = append(hits, a)
		}
	}
	return previews(hits), nil
}

func (s *knowledgeService) IndexAll(ctx context.Context) error {
	if s.searcher == nil {
		return nil
	}
	for _, a := range s.repo.List() {
		doc := model.KnowledgeDocument{ArticleID: a.ID, Title: a.Title, Text: PlainText(a.Content)}
		if err := s.searcher.Index(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// 预览截取的是原始 HTML 内容
func previews(articles []model.KnowledgeArticle) []model.KnowledgePreview {
	out := make([]model.KnowledgePreview, 0, len(articles))
	for _, a := range articles {
		out = append(out, model.KnowledgePreview{
			ID:      a.ID,
			Title:   a.Title,
			Preview: truncateRunes(a.Content, previewMaxRunes),
		})
	}
	return out
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// PlainText 去掉 HTML 标签并压缩空白。
func PlainText(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
