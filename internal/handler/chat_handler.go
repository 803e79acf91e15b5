package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/metrics"
)

// ChatHandler 处理阻塞式问答与 WebSocket 流式问答。
type ChatHandler struct {
	chatService service.ChatService
	upgrader    websocket.Upgrader
}

// NewChatHandler 创建一个新的 ChatHandler。
// 握手时的 Origin 按 allowedOrigins 校验，规则与 CORS 中间件一致。
func NewChatHandler(chatService service.ChatService, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
	}
}

// originAllowed 支持 "*"、精确匹配以及单个通配符（如 https://*.example.com）。
// 没有 Origin 头的请求来自非浏览器客户端，直接放行。
func originAllowed(origin string, allowed []string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	origin = strings.ToLower(origin)
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "*" || a == origin {
			return true
		}
		if prefix, suffix, found := strings.Cut(a, "*"); found &&
			len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// ChatRequest 同时支持 JSON 和表单提交。
type ChatRequest struct {
	Message        string `json:"message" form:"message"`
	ConversationID string `json:"conversation_id" form:"conversation_id"`
}

// Chat 转发一次问答到大模型并记录会话。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), currentUser(c).ID, req.Message, req.ConversationID)
	if err != nil {
		writeError(c, "Chat", err)
		return
	}
	ok(c, "success", gin.H{
		"success":         true,
		"message":         reply.Message,
		"conversation_id": reply.ConversationID,
		"usage":           reply.Usage,
	})
}

// wsInbound 是客户端发来的帧：提问或 {"type":"stop"}。
type wsInbound struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// lockedConn 串行化对连接的写入，gorilla 连接不支持并发写。
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *lockedConn) WriteMessage(messageType int, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteMessage(messageType, data)
}

func (l *lockedConn) writeJSON(v interface{}) {
	b, _ := json.Marshal(v)
	_ = l.WriteMessage(websocket.TextMessage, b)
}

// Handle 升级为 WebSocket，读取协程负责解析停止指令，主循环逐条处理提问。
func (h *ChatHandler) Handle(c *gin.Context) {
	user := currentUser(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	metrics.WebSocketConnectionsActive.Inc()
	defer metrics.WebSocketConnectionsActive.Dec()
	log.Infof("WebSocket 连接已建立，用户: %s", user.Username)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	ws := &lockedConn{conn: conn}
	var stopped atomic.Bool
	questions := make(chan wsInbound, 8)

	go func() {
		defer cancel()
		defer close(questions)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
				return
			}
			var in wsInbound
			if err := json.Unmarshal(data, &in); err != nil {
				// 纯文本帧按提问处理
				in = wsInbound{Message: string(data)}
			}
			if in.Type == "stop" {
				stopped.Store(true)
				ws.writeJSON(gin.H{
					"type":      "stop",
					"message":   "响应已停止",
					"timestamp": time.Now().UnixMilli(),
				})
				continue
			}
			select {
			case questions <- in:
			case <-ctx.Done():
				return
			}
		}
	}()

	for in := range questions {
		stopped.Store(false)
		_, err := h.chatService.StreamResponse(ctx, user.ID, in.Message, in.ConversationID, ws, stopped.Load)
		if err != nil {
			_, message := statusOf(err)
			log.Errorf("处理流式响应失败: %v", err)
			ws.writeJSON(gin.H{"error": message})
		}
	}
}
