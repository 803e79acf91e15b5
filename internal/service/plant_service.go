package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
)

// 未指定周期时的默认值（天）。
const (
	DefaultWaterCycle     = 7
	DefaultFertilizeCycle = 30
)

// PlantInput 是创建与更新植物的入参。更新时为 nil 的字段保持不变。
// 日期格式为 YYYY-MM-DD，格式错误按"未记录"处理。
type PlantInput struct {
	Nickname       *string
	Species        *string
	WaterCycle     *int
	FertilizeCycle *int
	LastWatered    *string
	LastFertilized *string
}

// PlantService 定义植物档案的业务操作，所有操作都限定在当前用户的植物内。
type PlantService interface {
	Create(userID uint, in PlantInput) (*model.Plant, error)
	List(userID uint) ([]model.PlantOut, error)
	Get(userID, plantID uint) (*model.PlantOut, error)
	Update(userID, plantID uint, in PlantInput) (*model.PlantOut, error)
	Delete(userID, plantID uint) error
	Water(userID, plantID uint) (*model.PlantOperation, error)
	Fertilize(userID, plantID uint) (*model.PlantOperation, error)
}

type plantService struct {
	plantRepo repository.PlantRepository
	clock     Clock
}

func NewPlantService(plantRepo repository.PlantRepository, clock Clock) PlantService {
	return &plantService{plantRepo: plantRepo, clock: clock}
}

func (s *plantService) Create(userID uint, in PlantInput) (*model.Plant, error) {
	plant := &model.Plant{
		UserID:         userID,
		WaterCycle:     DefaultWaterCycle,
		FertilizeCycle: DefaultFertilizeCycle,
	}
	if err := applyPlantInput(plant, in); err != nil {
		return nil, err
	}
	if plant.Nickname == "" {
		return nil, fmt.Errorf("%w: 昵称不能为空", ErrInvalidPlant)
	}
	if err := s.plantRepo.Create(plant); err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}
	return plant, nil
}

func (s *plantService) List(userID uint) ([]model.PlantOut, error) {
	plants, err := s.plantRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.PlantOut, 0, len(plants))
	for _, p := range plants {
		out = append(out, p.ToOut())
	}
	return out, nil
}

func (s *plantService) find(userID, plantID uint) (*model.Plant, error) {
	plant, err := s.plantRepo.FindOwned(plantID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantNotFound
	}
	return plant, err
}

func (s *plantService) Get(userID, plantID uint) (*model.PlantOut, error) {
	plant, err := s.find(userID, plantID)
	if err != nil {
		return nil, err
	}
	out := plant.ToOut()
	return &out, nil
}

func (s *plantService) Update(userID, plantID uint, in PlantInput) (*model.PlantOut, error) {
	plant, err := s.find(userID, plantID)
	if err != nil {
		return nil, err
	}
	if err := applyPlantInput(plant, in); err != nil {
		return nil, err
	}
	if plant.Nickname == "" {
		return nil, fmt.Errorf("%w: 昵称不能为空", ErrInvalidPlant)
	}
	if err := s.plantRepo.Update(plant); err != nil {
		return nil, fmt.Errorf("update plant: %w", err)
	}
	out := plant.ToOut()
	return &out, nil
}

func (s *plantService) Delete(userID, plantID uint) error {
	ok, err := s.plantRepo.SoftDelete(plantID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPlantNotFound
	}
	return nil
}

func (s *plantService) Water(userID, plantID uint) (*model.PlantOperation, error) {
	return s.record(userID, plantID, model.ActionWater, s.plantRepo.MarkWatered)
}

func (s *plantService) Fertilize(userID, plantID uint) (*model.PlantOperation, error) {
	return s.record(userID, plantID, model.ActionFertilize, s.plantRepo.MarkFertilized)
}

func (s *plantService) record(userID, plantID uint, action string, mark func(plantID, userID uint, on time.Time) (bool, error)) (*model.PlantOperation, error) {
	today := dateOf(s.clock.Now())
	ok, err := mark(plantID, userID, today)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPlantNotFound
	}
	return &model.PlantOperation{
		PlantID:    plantID,
		Operation:  action,
		OperatedAt: today.Format(model.DateLayout),
	}, nil
}

func applyPlantInput(p *model.Plant, in PlantInput) error {
	if in.Nickname != nil {
		p.Nickname = strings.TrimSpace(*in.Nickname)
	}
	if in.Species != nil {
		p.Species = strings.TrimSpace(*in.Species)
	}
	if in.WaterCycle != nil {
		if *in.WaterCycle < 0 {
			return fmt.Errorf("%w: 浇水周期不能为负数", ErrInvalidPlant)
		}
		p.WaterCycle = *in.WaterCycle
	}
	if in.FertilizeCycle != nil {
		if *in.FertilizeCycle < 0 {
			return fmt.Errorf("%w: 施肥周期不能为负数", ErrInvalidPlant)
		}
		p.FertilizeCycle = *in.FertilizeCycle
	}
	if in.LastWatered != nil {
		p.LastWatered = model.ParseDate(*in.LastWatered)
	}
	if in.LastFertilized != nil {
		p.LastFertilized = model.ParseDate(*in.LastFertilized)
	}
	return nil
}

// dateOf 取 t 所在时区的日历日期，存为 UTC 零点。
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
