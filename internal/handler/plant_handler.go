package handler

import (
	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/log"
)

// PlantHandler 处理植物档案与养护打卡。
type PlantHandler struct {
	plantService service.PlantService
}

func NewPlantHandler(plantService service.PlantService) *PlantHandler {
	return &PlantHandler{plantService: plantService}
}

// PlantRequest 同时用于创建和更新，更新时缺省的字段保持不变。
type PlantRequest struct {
	Nickname       *string `json:"nickname"`
	Species        *string `json:"species"`
	WaterCycle     *int    `json:"water_cycle"`
	FertilizeCycle *int    `json:"fertilize_cycle"`
	LastWatered    *string `json:"last_watered"`
	LastFertilized *string `json:"last_fertilized"`
}

func (r PlantRequest) input() service.PlantInput {
	return service.PlantInput{
		Nickname:       r.Nickname,
		Species:        r.Species,
		WaterCycle:     r.WaterCycle,
		FertilizeCycle: r.FertilizeCycle,
		LastWatered:    r.LastWatered,
		LastFertilized: r.LastFertilized,
	}
}

// List 返回当前用户的全部植物，按创建时间倒序。
func (h *PlantHandler) List(c *gin.Context) {
	plants, err := h.plantService.List(currentUser(c).ID)
	if err != nil {
		writeError(c, "ListPlants", err)
		return
	}
	ok(c, "获取成功", plants)
}

func (h *PlantHandler) Create(c *gin.Context) {
	var req PlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreatePlant: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载")
		return
	}

	plant, err := h.plantService.Create(currentUser(c).ID, req.input())
	if err != nil {
		writeError(c, "CreatePlant", err)
		return
	}
	ok(c, "植物添加成功", gin.H{"plant_id": plant.ID, "nickname": plant.Nickname})
}

func (h *PlantHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	plant, err := h.plantService.Get(currentUser(c).ID, id)
	if err != nil {
		writeError(c, "GetPlant", err)
		return
	}
	ok(c, "获取成功", plant)
}

func (h *PlantHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req PlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	plant, err := h.plantService.Update(currentUser(c).ID, id, req.input())
	if err != nil {
		writeError(c, "UpdatePlant", err)
		return
	}
	ok(c, "更新成功", plant)
}

// Delete 软删除植物。
func (h *PlantHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.plantService.Delete(currentUser(c).ID, id); err != nil {
		writeError(c, "DeletePlant", err)
		return
	}
	ok(c, "删除成功", nil)
}

func (h *PlantHandler) Water(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	op, err := h.plantService.Water(currentUser(c).ID, id)
	if err != nil {
		writeError(c, "Water", err)
		return
	}
	ok(c, "浇水打卡成功", op)
}

func (h *PlantHandler) Fertilize(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	op, err := h.plantService.Fertilize(currentUser(c).ID, id)
	if err != nil {
		writeError(c, "Fertilize", err)
		return
	}
	ok(c, "施肥打卡成功", op)
}
