package service

import "errors"

// 业务错误，由 handler 映射为 HTTP 状态码。
var (
	ErrUsernameExists       = errors.New("用户名已存在")
	ErrEmailExists          = errors.New("该邮箱已被注册")
	ErrInvalidCredentials   = errors.New("账号或密码错误")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrPlantNotFound        = errors.New("植物不存在或无权操作")
	ErrInvalidPlant         = errors.New("植物信息不合法")
	ErrConversationNotFound = errors.New("对话不存在")
	ErrKnowledgeNotFound    = errors.New("知识条目不存在")
	ErrEmptyMessage         = errors.New("消息内容不能为空")
	ErrAPIKeyMissing        = errors.New("DeepSeek API密钥未配置")
	ErrInvalidImage         = errors.New("请上传图片文件")
	ErrDigestNotFound       = errors.New("今日提醒摘要尚未生成")
)
