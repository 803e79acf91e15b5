// Package es 提供了与 Elasticsearch 交互的客户端功能，用于养护知识的全文检索。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"leaf-care-go/internal/config"
	"leaf-care-go/internal/model"
	"leaf-care-go/pkg/log"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端并确保知识索引存在。
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(context.Background(), client, esCfg.IndexName)
}

const knowledgeMapping = `{
	"mappings": {
		"properties": {
			"article_id": { "type": "keyword" },
			"title": { "type": "text" },
			"text": { "type": "text" }
		}
	}
}`

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(ctx context.Context, client *elasticsearch.Client, indexName string) error {
	res, err := client.Indices.Exists([]string{indexName}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(strings.NewReader(knowledgeMapping)),
		client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// KnowledgeIndex 是知识条目在 Elasticsearch 中的索引。
type KnowledgeIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewKnowledgeIndex(client *elasticsearch.Client, index string) *KnowledgeIndex {
	return &KnowledgeIndex{client: client, index: index}
}

// Index 写入或覆盖一篇知识，文档 ID 即条目 ID。
func (k *KnowledgeIndex) Index(ctx context.Context, doc model.KnowledgeDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      k.index,
		DocumentID: doc.ArticleID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, k.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引文档到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index document")
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source model.KnowledgeDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search 在标题与正文上做全文检索，按相关度返回条目 ID。
func (k *KnowledgeIndex) Search(ctx context.Context, query string, size int) ([]string, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "text"},
			},
		},
		"_source": []string{"article_id"},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := k.client.Search(
		k.client.Search.WithContext(ctx),
		k.client.Search.WithIndex(k.index),
		k.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.Source.ArticleID)
	}
	return ids, nil
}
