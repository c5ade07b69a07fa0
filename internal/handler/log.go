package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Bernardxu123/unicom-calc/internal/middleware"
	"github.com/Bernardxu123/unicom-calc/internal/models"
	"github.com/Bernardxu123/unicom-calc/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责审计日志查询接口
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{
		DB:         db,
		EncryptKey: encryptKey,
	}
}

type logResp struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// pageParams 解析分页参数
func pageParams(c *gin.Context, defaultSize int) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size <= 0 || size > 100 {
		size = defaultSize
	}
	return page, size
}

// paginate 对内存中的结果分页
func paginate[T any](all []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(all) {
		return []T{}
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// ListLogs 列出当前用户的操作日志（分页 + 时间 + 关键字）
func (h *LogHandler) ListLogs(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}

	page, size := pageParams(c, 20)

	// 时间筛选：start / end（格式 YYYY-MM-DD）
	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{}).Where("user_id = ?", user.ID)
	if s := c.Query("start"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "开始日期格式错误")
			return
		}
		base = base.Where("created_at >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "结束日期格式错误")
			return
		}
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}

	var logs []models.AuditLog
	if err := base.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	// path / action 为密文，关键字只能解密后匹配
	q := strings.TrimSpace(c.Query("q"))
	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		path := util.DecryptString(h.EncryptKey, l.PathEnc)
		action := util.DecryptString(h.EncryptKey, l.ActionEnc)
		if q != "" && !strings.Contains(path, q) && !strings.Contains(action, q) {
			continue
		}
		items = append(items, logResp{
			ID:        l.ID,
			Action:    action,
			Path:      path,
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, http.StatusOK, util.Response{
		"items": paginate(items, page, size),
		"total": len(items),
		"page":  page,
		"size":  size,
	})
}

type syncHistoryResp struct {
	ID        uint      `json:"id"`
	Operation string    `json:"operation"`
	Status    int       `json:"status"`
	Score     *float64  `json:"score,omitempty"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

// syncOperation 根据请求判断同步操作类型
func syncOperation(method, path string) string {
	if method != http.MethodPost {
		return ""
	}
	switch path {
	case "/api/data/config":
		return "上传快照"
	case "/api/data/ranking":
		return "提交分数"
	}
	return ""
}

// ListSyncHistory 查询快照上传和分数提交的历史
func (h *LogHandler) ListSyncHistory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}

	page, size := pageParams(c, 50)

	var allLogs []models.AuditLog
	if err := h.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&allLogs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	items := make([]syncHistoryResp, 0)
	for i := range allLogs {
		l := &allLogs[i]
		path := util.DecryptString(h.EncryptKey, l.PathEnc)
		op := syncOperation(l.Method, path)
		if op == "" {
			continue
		}
		item := syncHistoryResp{
			ID:        l.ID,
			Operation: op,
			Status:    l.Status,
			IP:        l.IP,
			CreatedAt: l.CreatedAt,
		}

		// 从 action 中的 JSON 取出提交的分数
		if path == "/api/data/ranking" {
			action := util.DecryptString(h.EncryptKey, l.ActionEnc)
			if start := strings.Index(action, "{"); start >= 0 {
				var req struct {
					Score *float64 `json:"score"`
				}
				if json.Unmarshal([]byte(action[start:]), &req) == nil {
					item.Score = req.Score
				}
			}
		}
		items = append(items, item)
	}

	util.Success(c, http.StatusOK, util.Response{
		"items": paginate(items, page, size),
		"total": len(items),
		"page":  page,
		"size":  size,
	})
}
