package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"leaf-care-go/internal/config"
	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
	"leaf-care-go/pkg/llm"
	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/metrics"
)

// PlantExpertPrompt 是默认的系统提示词。
const PlantExpertPrompt = `你是一个专业的植物养护专家，专注于室内植物、多肉植物、观叶植物的养护指导。请遵循以下原则：
1. 提供专业、准确的植物养护建议
2. 回答要具体、实用，避免笼统
3. 针对用户的具体问题给出针对性解决方案
4. 如果涉及病虫害，要说明识别方法和具体治疗步骤
5. 浇水建议要具体到频率、水量和注意事项
6. 光照建议要说明具体的光照时长和强度
7. 施肥建议要说明肥料类型、频率和用量
请用中文回答，语气亲切专业，像一位经验丰富的园艺师。如果用户的问题信息不足，请主动询问更多细节以便给出更精准的建议。`

const (
	defaultHistoryLimit = 6
	titleMaxRunes       = 20
)

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// Chat 发起一次阻塞式问答。conversationID 为空时创建新会话。
	Chat(ctx context.Context, userID uint, message, conversationID string) (*model.ChatReply, error)
	// StreamResponse 通过 ws 流式下发回复，返回所用的会话 ID。
	StreamResponse(ctx context.Context, userID uint, message, conversationID string, ws llm.MessageWriter, shouldStop func() bool) (string, error)
}

type chatService struct {
	llmClient        llm.Client
	conversationRepo repository.ConversationRepository
	cfg              config.LLMConfig
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(llmClient llm.Client, conversationRepo repository.ConversationRepository, cfg config.LLMConfig) ChatService {
	return &chatService{
		llmClient:        llmClient,
		conversationRepo: conversationRepo,
		cfg:              cfg,
	}
}

func (s *chatService) Chat(ctx context.Context, userID uint, message, conversationID string) (*model.ChatReply, error) {
	conv, messages, err := s.prepare(ctx, userID, message, conversationID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	completion, err := s.llmClient.Chat(ctx, messages, nil)
	if err != nil {
		metrics.RecordLLMCall(s.cfg.Model, llmStatus(err), time.Since(start).Seconds(), 0, 0)
		log.Errorf("调用大模型失败: conversation=%s, err=%v", conv.ID, err)
		return nil, err
	}
	metrics.RecordLLMCall(s.cfg.Model, "ok", time.Since(start).Seconds(),
		completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	if err := s.appendTurn(ctx, conv.ID, message, completion.Content); err != nil {
		return nil, err
	}

	return &model.ChatReply{
		Message:        completion.Content,
		ConversationID: conv.ID,
		Usage: model.ChatUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}, nil
}

func (s *chatService) StreamResponse(ctx context.Context, userID uint, message, conversationID string, ws llm.MessageWriter, shouldStop func() bool) (string, error) {
	conv, messages, err := s.prepare(ctx, userID, message, conversationID)
	if err != nil {
		return "", err
	}

	// 拦截 websocket writer，将原始分块包装为 JSON
	interceptor := &wsWriterInterceptor{conn: ws, shouldStop: shouldStop}

	start := time.Now()
	fullAnswer, err := s.llmClient.StreamChatMessages(ctx, messages, nil, interceptor)
	stopped := errors.Is(err, errStreamStopped)
	if err != nil && !stopped {
		metrics.RecordLLMCall(s.cfg.Model, llmStatus(err), time.Since(start).Seconds(), 0, 0)
		return conv.ID, err
	}
	metrics.RecordLLMCall(s.cfg.Model, "ok", time.Since(start).Seconds(), 0, 0)

	if stopped {
		log.Infof("流式响应已被用户停止: conversation=%s", conv.ID)
	} else {
		sendCompletion(ws, conv.ID)
	}
	// 停止时只保存已下发给客户端的部分
	if fullAnswer != "" {
		// 使用后台上下文，即使连接已断开也保存已生成的回答
		if err := s.appendTurn(context.Background(), conv.ID, message, fullAnswer); err != nil {
			log.Errorf("Failed to save conversation history: %v", err)
		}
	}
	return conv.ID, nil
}

// prepare 校验输入、取得会话并组装发往上游的消息。
func (s *chatService) prepare(ctx context.Context, userID uint, message, conversationID string) (*model.Conversation, []llm.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, nil, ErrEmptyMessage
	}
	if s.cfg.APIKey == "" {
		return nil, nil, ErrAPIKeyMissing
	}

	conv, err := s.openConversation(ctx, userID, conversationID, message)
	if err != nil {
		return nil, nil, err
	}

	limit := s.cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history := conv.Messages
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	system := s.cfg.Prompt.System
	if system == "" {
		system = PlantExpertPrompt
	}
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: model.RoleSystem, Content: system})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: model.RoleUserMsg, Content: message})
	return conv, messages, nil
}

// openConversation 返回调用者的会话；ID 为空或不存在时以该 ID 新建。
// 其他用户的会话视为不存在。
func (s *chatService) openConversation(ctx context.Context, userID uint, conversationID, firstMessage string) (*model.Conversation, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	conv, err := s.conversationRepo.Get(ctx, conversationID)
	if err == nil {
		if conv.UserID != userID {
			return nil, ErrConversationNotFound
		}
		return conv, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	conv = &model.Conversation{
		ID:        conversationID,
		UserID:    userID,
		Title:     truncateRunes(firstMessage, titleMaxRunes),
		CreatedAt: time.Now(),
	}
	if err := s.conversationRepo.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	metrics.ConversationsTotal.Inc()
	return conv, nil
}

func (s *chatService) appendTurn(ctx context.Context, conversationID, question, answer string) error {
	now := time.Now()
	err := s.conversationRepo.AppendMessages(ctx, conversationID,
		model.ChatMessage{Role: model.RoleUserMsg, Content: strings.TrimSpace(question), Timestamp: now},
		model.ChatMessage{Role: model.RoleAssistant, Content: answer, Timestamp: now},
	)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func llmStatus(err error) string {
	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		return "upstream"
	}
	return "network"
}

// errStreamStopped 由 interceptor 返回，用于中断上游读取。
var errStreamStopped = errors.New("stream stopped by client")

// wsWriterInterceptor 是对 websocket 连接的封装，将分块包装为 {"chunk":"..."}。
type wsWriterInterceptor struct {
	conn       llm.MessageWriter
	shouldStop func() bool
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		return errStreamStopped
	}
	b, _ := json.Marshal(map[string]string{"chunk": string(data)})
	return w.conn.WriteMessage(messageType, b)
}

// sendCompletion 发送完成通知 JSON
func sendCompletion(ws llm.MessageWriter, conversationID string) {
	notif := map[string]interface{}{
		"type":            "completion",
		"status":          "finished",
		"message":         "响应已完成",
		"conversation_id": conversationID,
		"timestamp":       time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(notif)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
