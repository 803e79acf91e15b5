package repository

import (
	"time"

	"gorm.io/gorm"

	"leaf-care-go/internal/model"
)

// PlantRepository 定义植物数据的持久化操作。所有查询都限定属主且排除软删除记录。
type PlantRepository interface {
	Create(plant *model.Plant) error
	ListByUser(userID uint) ([]model.Plant, error)
	FindOwned(plantID, userID uint) (*model.Plant, error)
	Update(plant *model.Plant) error
	SoftDelete(plantID, userID uint) (bool, error)
	MarkWatered(plantID, userID uint, on time.Time) (bool, error)
	MarkFertilized(plantID, userID uint, on time.Time) (bool, error)
}

type plantRepository struct {
	db *gorm.DB
}

// NewPlantRepository 创建一个新的 PlantRepository 实例。
func NewPlantRepository(db *gorm.DB) PlantRepository {
	return &plantRepository{db: db}
}

func (r *plantRepository) owned(plantID, userID uint) *gorm.DB {
	return r.db.Model(&model.Plant{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", plantID, userID, false)
}

func (r *plantRepository) Create(plant *model.Plant) error {
	return r.db.Create(plant).Error
}

// ListByUser 按创建时间倒序返回用户的全部在养植物。
func (r *plantRepository) ListByUser(userID uint) ([]model.Plant, error) {
	var plants []model.Plant
	err := r.db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at DESC").Order("id DESC").
		Find(&plants).Error
	return plants, err
}

// FindOwned 查找属于该用户且未删除的植物，未找到返回 gorm.ErrRecordNotFound。
func (r *plantRepository) FindOwned(plantID, userID uint) (*model.Plant, error) {
	var plant model.Plant
	if err := r.owned(plantID, userID).First(&plant).Error; err != nil {
		return nil, err
	}
	return &plant, nil
}

func (r *plantRepository) Update(plant *model.Plant) error {
	return r.db.Save(plant).Error
}

// SoftDelete 将植物标记为已删除，返回是否命中记录。
func (r *plantRepository) SoftDelete(plantID, userID uint) (bool, error) {
	return r.updateColumn(plantID, userID, "is_deleted", true)
}

func (r *plantRepository) MarkWatered(plantID, userID uint, on time.Time) (bool, error) {
	return r.updateColumn(plantID, userID, "last_watered", on)
}

func (r *plantRepository) MarkFertilized(plantID, userID uint, on time.Time) (bool, error) {
	return r.updateColumn(plantID, userID, "last_fertilized", on)
}

func (r *plantRepository) updateColumn(plantID, userID uint, column string, value interface{}) (bool, error) {
	res := r.owned(plantID, userID).Update(column, value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
