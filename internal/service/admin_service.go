package service

import (
	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
)

// UserDetailResponse 定义了管理员视角下的用户详情。
type UserDetailResponse struct {
	UserID     uint            `json:"userId"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	PlantCount int             `json:"plantCount"`
	Status     int             `json:"status"` // 0: ADMIN, 1: USER
	CreatedAt  model.LocalTime `json:"createdAt"`
}

// UserListResponse 定义了分页用户列表的响应结构。
type UserListResponse struct {
	Content       []UserDetailResponse `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}

// AdminService 定义管理员操作。
type AdminService interface {
	ListUsers(page, size int) (*UserListResponse, error)
}

type adminService struct {
	userRepo  repository.UserRepository
	plantRepo repository.PlantRepository
}

func NewAdminService(userRepo repository.UserRepository, plantRepo repository.PlantRepository) AdminService {
	return &adminService{userRepo: userRepo, plantRepo: plantRepo}
}

// ListUsers 以分页的形式返回用户列表，page 从 1 开始。
func (s *adminService) ListUsers(page, size int) (*UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	offset := (page - 1) * size
	users, total, err := s.userRepo.FindWithPagination(offset, size)
	if err != nil {
		return nil, err
	}

	userResponses := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		status := 1
		if u.Role == model.RoleAdmin {
			status = 0
		}
		plants, err := s.plantRepo.ListByUser(u.ID)
		if err != nil {
			return nil, err
		}
		userResponses = append(userResponses, UserDetailResponse{
			UserID:     u.ID,
			Username:   u.Username,
			Email:      u.Email,
			Role:       u.Role,
			PlantCount: len(plants),
			Status:     status,
			CreatedAt:  model.LocalTime(u.CreatedAt),
		})
	}

	totalPages := 0
	if total > 0 {
		totalPages = (int(total) + size - 1) / size
	}

	return &UserListResponse{
		Content:       userResponses,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}, nil
}
