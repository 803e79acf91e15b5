package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
)

type fakeSearcher struct {
	ids     []string
	err     error
	indexed []model.KnowledgeDocument
}

func (f *fakeSearcher) Index(_ context.Context, doc model.KnowledgeDocument) error {
	f.indexed = append(f.indexed, doc)
	return nil
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]string, error) {
	return f.ids, f.err
}

func testArticles() repository.KnowledgeRepository {
	return repository.NewMemoryKnowledgeRepository(
		model.KnowledgeArticle{ID: "short", Title: "短文", Content: "<p>浇水</p>"},
		model.KnowledgeArticle{ID: "long", Title: "长文", Content: strings.Repeat("光", 120)},
	)
}

func TestKnowledgeListPreview(t *testing.T) {
	list := NewKnowledgeService(testArticles(), nil).List()
	require.Len(t, list, 2)
	assert.Equal(t, "<p>浇水</p>", list[0].Preview)
	assert.Equal(t, strings.Repeat("光", 100)+"...", list[1].Preview)
}

func TestKnowledgeGet(t *testing.T) {
	svc := NewKnowledgeService(repository.NewBuiltinKnowledgeRepository(), nil)
	a, err := svc.Get("绿萝养护技巧")
	require.NoError(t, err)
	assert.NotEmpty(t, a.Content)

	_, err = svc.Get("nope")
	assert.ErrorIs(t, err, ErrKnowledgeNotFound)
}

func TestKnowledgeSearchFallback(t *testing.T) {
	svc := NewKnowledgeService(testArticles(), nil)

	hits, err := svc.Search(context.Background(), "浇水")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "short", hits[0].ID)

	hits, err = svc.Search(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, hits, "markup is not searchable")

	all, err := svc.Search(context.Background(), " ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestKnowledgeSearchUsesIndex(t *testing.T) {
	searcher := &fakeSearcher{ids: []string{"long", "ghost"}}
	hits, err := NewKnowledgeService(testArticles(), searcher).Search(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "long", hits[0].ID)
}

func TestKnowledgeSearchIndexFailureFallsBack(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("es down")}
	hits, err := NewKnowledgeService(testArticles(), searcher).Search(context.Background(), "光")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "long", hits[0].ID)
}

func TestKnowledgeIndexAll(t *testing.T) {
	searcher := &fakeSearcher{}
	require.NoError(t, NewKnowledgeService(testArticles(), searcher).IndexAll(context.Background()))
	require.Len(t, searcher.indexed, 2)
	assert.Equal(t, "浇水", searcher.indexed[0].Text)

	assert.NoError(t, NewKnowledgeService(testArticles(), nil).IndexAll(context.Background()))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a b c", PlainText("<p>a</p>\n  <ul><li>b</li>\t<li>c</li></ul>"))
}
