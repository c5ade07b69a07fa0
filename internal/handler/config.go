package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Bernardxu123/unicom-calc/internal/middleware"
	"github.com/Bernardxu123/unicom-calc/internal/models"
	"github.com/Bernardxu123/unicom-calc/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxConfigBytes 单个快照的大小上限
const maxConfigBytes = 1 << 20

// ConfigHandler 负责云端快照的读写
type ConfigHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewConfigHandler(db *gorm.DB, encryptKey string) *ConfigHandler {
	return &ConfigHandler{DB: db, EncryptKey: encryptKey}
}

// loadConfig 返回用户最近一次上传的快照 JSON，没有时返回 gorm.ErrRecordNotFound
func (h *ConfigHandler) loadConfig(c *gin.Context, userID uint) (string, error) {
	var row models.UserConfig
	if err := h.DB.WithContext(c.Request.Context()).First(&row, "user_id = ?", userID).Error; err != nil {
		return "", err
	}
	return util.DecryptString(h.EncryptKey, row.ConfigJSON), nil
}

// Get 返回 {config_json: string|null}
func (h *ConfigHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}

	cfg, err := h.loadConfig(c, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Success(c, http.StatusOK, util.Response{"config_json": nil})
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询快照失败")
		return
	}
	util.Success(c, http.StatusOK, util.Response{"config_json": cfg})
}

// Save 覆盖保存用户快照（后写覆盖先写，不做合并）
func (h *ConfigHandler) Save(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxConfigBytes+1))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "读取请求失败")
		return
	}
	if len(body) > maxConfigBytes {
		util.Error(c, http.StatusRequestEntityTooLarge, util.CodeInvalidParam, "快照过大")
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid JSON")
		return
	}

	stored, err := util.EncryptString(h.EncryptKey, compact.String())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "加密失败")
		return
	}

	row := models.UserConfig{UserID: user.ID, ConfigJSON: stored, UpdatedAt: time.Now()}
	err = h.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"config_json", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to save config")
		return
	}

	util.Success(c, http.StatusOK, util.Response{"message": "Config saved"})
}
