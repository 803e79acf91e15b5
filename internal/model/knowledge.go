package model

// KnowledgeArticle 是一篇养护知识，Content 为 HTML 片段。
type KnowledgeArticle struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// KnowledgePreview 是知识列表中的条目。
type KnowledgePreview struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
}

// KnowledgeDocument 是写入 Elasticsearch 的文档结构。
type KnowledgeDocument struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}
