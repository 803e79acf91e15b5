package model

import "time"

// Plant 对应 plants 表，记录用户的一株植物及其养护周期。
// WaterCycle / FertilizeCycle 为 0 时表示不提醒该操作。
type Plant struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	Nickname       string     `gorm:"type:varchar(50);not null" json:"nickname"`
	Species        string     `gorm:"type:varchar(100)" json:"species"`
	WaterCycle     int        `gorm:"not null" json:"water_cycle"`
	FertilizeCycle int        `gorm:"not null" json:"fertilize_cycle"`
	LastWatered    *time.Time `gorm:"type:date" json:"-"`
	LastFertilized *time.Time `gorm:"type:date" json:"-"`
	IsDeleted      bool       `gorm:"index;not null;default:false" json:"-"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plant) TableName() string {
	return "plants"
}

// PlantOut 是返回给前端的植物视图，日期统一格式化为 YYYY-MM-DD。
type PlantOut struct {
	ID             uint      `json:"id"`
	Nickname       string    `json:"nickname"`
	Species        string    `json:"species"`
	WaterCycle     int       `json:"water_cycle"`
	FertilizeCycle int       `json:"fertilize_cycle"`
	LastWatered    *string   `json:"last_watered"`
	LastFertilized *string   `json:"last_fertilized"`
	CreatedAt      LocalTime `json:"created_at"`
}

// ToOut 转换为对外视图。
func (p Plant) ToOut() PlantOut {
	return PlantOut{
		ID:             p.ID,
		Nickname:       p.Nickname,
		Species:        p.Species,
		WaterCycle:     p.WaterCycle,
		FertilizeCycle: p.FertilizeCycle,
		LastWatered:    FormatDatePtr(p.LastWatered),
		LastFertilized: FormatDatePtr(p.LastFertilized),
		CreatedAt:      LocalTime(p.CreatedAt),
	}
}

// PlantOperation 是打卡（浇水/施肥）的返回结构。
type PlantOperation struct {
	PlantID    uint   `json:"plant_id"`
	Operation  string `json:"operation"`
	OperatedAt string `json:"operated_at"`
}
