// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
	"leaf-care-go/pkg/hash"
	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/token"
)

// TokenPair 是登录和刷新接口返回的一对 token。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(username, email, password string) (*model.User, error)
	// Login 的 account 既可以是用户名也可以是邮箱。
	Login(account, password string) (*TokenPair, error)
	GetProfile(userID uint) (*model.User, error)
	Logout(ctx context.Context, tokenString string) error
	RefreshToken(refreshTokenString string) (*TokenPair, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	blacklist  repository.TokenBlacklist
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。blacklist 可为 nil，此时登出不做服务端失效。
func NewUserService(userRepo repository.UserRepository, blacklist repository.TokenBlacklist, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		jwtManager: jwtManager,
	}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	// 1. 检查用户名、邮箱是否已存在
	exists, err := s.userRepo.ExistsByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameExists
	}
	exists, err = s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	// 2. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		// 并发注册可能同时通过上面的检查，由唯一索引兜底
		if conflict := s.duplicateOf(username, email); conflict != nil {
			return nil, conflict
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Infof("新用户注册成功: id=%d, username=%s", newUser.ID, newUser.Username)
	return newUser, nil
}

// duplicateOf 返回已被占用的字段对应的错误，均未占用时返回 nil。
func (s *userService) duplicateOf(username, email string) error {
	if exists, err := s.userRepo.ExistsByUsername(username); err == nil && exists {
		return ErrUsernameExists
	}
	if exists, err := s.userRepo.ExistsByEmail(email); err == nil && exists {
		return ErrEmailExists
	}
	return nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(account, password string) (*TokenPair, error) {
	// 1. 先按用户名查找，再按邮箱查找
	user, err := s.userRepo.FindByUsername(account)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.userRepo.FindByEmail(account)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. 验证密码
	if !hash.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 access token 和 refresh token
	return s.issue(user)
}

func (s *userService) issue(user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

// GetProfile 根据用户 ID 获取用户详细信息。
func (s *userService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Logout 将 token 加入黑名单，剩余有效期作为黑名单过期时间。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	if s.blacklist == nil {
		return nil
	}
	return s.blacklist.Add(ctx, tokenString, time.Until(claims.ExpiresAt.Time))
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
func (s *userService) RefreshToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil || claims.Kind != token.KindRefresh {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.issue(user)
}
