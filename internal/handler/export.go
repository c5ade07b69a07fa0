package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
	"github.com/Bernardxu123/unicom-calc/internal/middleware"
	"github.com/Bernardxu123/unicom-calc/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExportHandler 把用户云端快照导出为账单表格
type ExportHandler struct {
	configs *ConfigHandler
}

func NewExportHandler(db *gorm.DB, encryptKey string) *ExportHandler {
	return &ExportHandler{configs: NewConfigHandler(db, encryptKey)}
}

// snapshot 读取并解析当前用户的快照；失败时已写好错误响应
func (h *ExportHandler) snapshot(c *gin.Context) (ledger.Snapshot, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return ledger.Snapshot{}, false
	}

	raw, err := h.configs.loadConfig(c, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no config saved")
		return ledger.Snapshot{}, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询快照失败")
		return ledger.Snapshot{}, false
	}

	snap, err := ledger.ImportData(ledger.Defaults(), []byte(raw))
	if err != nil {
		util.Error(c, http.StatusUnprocessableEntity, util.CodeInvalidParam, "stored config is not a ledger snapshot")
		return ledger.Snapshot{}, false
	}
	return snap, true
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

// CSV 导出账单为 CSV
func (h *ExportHandler) CSV(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := ledger.WriteCSV(&buf, snap); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "导出失败")
		return
	}
	attachment(c, ledger.ExportFileName(snap, "csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// XLSX 导出账单为 Excel
func (h *ExportHandler) XLSX(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := ledger.WriteXLSX(&buf, snap); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "导出失败")
		return
	}
	attachment(c, ledger.ExportFileName(snap, "xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
