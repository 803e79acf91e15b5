// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"errors"

	"gorm.io/gorm"

	"leaf-care-go/internal/model"
)

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	Create(user *model.User) error
	FindByID(userID uint) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	Update(user *model.User) error
	FindAllIDs() ([]uint, error)
	FindWithPagination(offset, limit int) ([]model.User, int64, error)
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) active() *gorm.DB {
	return r.db.Model(&model.User{}).Where("is_deleted = ?", false)
}

// Create 在数据库中创建一个新的用户记录。
func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID 根据用户 ID 查找未删除的用户。未找到时返回 gorm.ErrRecordNotFound。
func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	if err := r.active().Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername 根据用户名查找用户。
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.active().Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户。
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.active().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// 唯一性检查包含已删除用户，因为唯一索引同样覆盖它们。
func (r *userRepository) ExistsByUsername(username string) (bool, error) {
	return r.exists("username = ?", username)
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	return r.exists("email = ?", email)
}

func (r *userRepository) exists(query string, arg interface{}) (bool, error) {
	var u model.User
	err := r.db.Select("id").Where(query, arg).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update 更新数据库中一个已存在的用户记录。
func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// FindAllIDs 返回所有未删除用户的 ID，供定时任务遍历。
func (r *userRepository) FindAllIDs() ([]uint, error) {
	var ids []uint
	err := r.active().Order("id").Pluck("id", &ids).Error
	return ids, err
}

// FindWithPagination 分页检索用户记录，返回当前页、总数和错误。
func (r *userRepository) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if err := r.active().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.active().Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
