package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-care-go/internal/model"
)

func createPlant(t *testing.T, env *testEnv, bearer string, body gin.H) uint {
	t.Helper()
	w, resp := env.do(t, http.MethodPost, "/api/v1/plants", bearer, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "植物添加成功", resp.Message)
	var data struct {
		PlantID  uint   `json:"plant_id"`
		Nickname string `json:"nickname"`
	}
	decode(t, resp.Data, &data)
	return data.PlantID
}

func TestPlantLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")

	id := createPlant(t, env, alice, gin.H{
		"nickname": "小绿", "species": "绿萝", "last_watered": "2024-05-13", "last_fertilized": "bad-date",
	})

	w, resp := env.do(t, http.MethodGet, "/api/v1/get_plants", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var plants []model.PlantOut
	decode(t, resp.Data, &plants)
	require.Len(t, plants, 1)
	assert.Equal(t, 7, plants[0].WaterCycle)
	assert.Equal(t, 30, plants[0].FertilizeCycle)
	require.NotNil(t, plants[0].LastWatered)
	assert.Equal(t, "2024-05-13", *plants[0].LastWatered)
	assert.Nil(t, plants[0].LastFertilized)

	path := fmt.Sprintf("/api/v1/plants/%d", id)
	w, resp = env.do(t, http.MethodPut, path, alice, gin.H{"water_cycle": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.PlantOut
	decode(t, resp.Data, &updated)
	assert.Equal(t, 3, updated.WaterCycle)
	assert.Equal(t, "小绿", updated.Nickname)

	w, resp = env.do(t, http.MethodPost, path+"/water", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "浇水打卡成功", resp.Message)
	w, resp = env.do(t, http.MethodPost, path+"/fertilize", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "施肥打卡成功", resp.Message)

	w, resp = env.do(t, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.PlantOut
	decode(t, resp.Data, &got)
	require.NotNil(t, got.LastWatered)
	assert.Equal(t, "2024-05-20", *got.LastWatered)

	w, _ = env.do(t, http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = env.do(t, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = env.do(t, http.MethodPost, path+"/water", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlantsAreOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")

	id := createPlant(t, env, alice, gin.H{"nickname": "龟背竹"})
	path := fmt.Sprintf("/api/v1/plants/%d", id)

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, path},
		{http.MethodDelete, path},
		{http.MethodPost, path + "/water"},
		{http.MethodPost, path + "/fertilize"},
	} {
		w, _ := env.do(t, tc.method, tc.target, bob, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.target)
	}

	_, resp := env.do(t, http.MethodGet, "/api/v1/get_plants", bob, nil)
	var plants []model.PlantOut
	decode(t, resp.Data, &plants)
	assert.Empty(t, plants)
}

func TestPlantValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")

	w, _ := env.do(t, http.MethodPost, "/api/v1/plants", alice, gin.H{"nickname": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = env.do(t, http.MethodPost, "/api/v1/plants", alice, gin.H{"nickname": "a", "water_cycle": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, resp := env.do(t, http.MethodGet, "/api/v1/plants/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "无效的ID", resp.Message)

	w, _ = env.do(t, http.MethodGet, "/api/v1/get_plants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReminderEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	createPlant(t, env, alice, gin.H{"nickname": "小绿", "last_watered": "2024-05-13"})

	w, resp := env.do(t, http.MethodGet, "/api/v1/reminders", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list model.ReminderList
	decode(t, resp.Data, &list)
	require.Equal(t, 2, list.Total)
	// 从未施肥的提醒最紧急
	assert.Equal(t, model.ActionFertilize, list.Reminders[0].Type)
	assert.Equal(t, model.UrgencyHigh, list.Reminders[0].Urgency)
	assert.Equal(t, model.ActionWater, list.Reminders[1].Type)
	assert.Equal(t, 0, list.Reminders[1].DaysOverdue)

	w, _ = env.do(t, http.MethodGet, "/api/v1/reminders/digest", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReminderDigestFromCache(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	_, resp := env.do(t, http.MethodGet, "/api/v1/users/me", alice, nil)
	var me model.User
	decode(t, resp.Data, &me)

	require.NoError(t, env.digests.Save(context.Background(), model.ReminderDigest{
		UserID: me.ID, Date: "2024-05-20", Reminders: []model.ReminderItem{}, Total: 0,
	}))

	w, resp := env.do(t, http.MethodGet, "/api/v1/reminders/digest", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var digest model.ReminderDigest
	decode(t, resp.Data, &digest)
	assert.Equal(t, "2024-05-20", digest.Date)
	assert.Equal(t, me.ID, digest.UserID)
}
