package handler

import (
	"net/http"
	"time"

	"github.com/Bernardxu123/unicom-calc/internal/middleware"
	"github.com/Bernardxu123/unicom-calc/internal/models"
	"github.com/Bernardxu123/unicom-calc/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rankingLimit 排行榜返回条数
const rankingLimit = 5

type RankingHandler struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewRankingHandler(db *gorm.DB) *RankingHandler {
	return &RankingHandler{DB: db, Now: time.Now}
}

func (h *RankingHandler) currentMonth() string {
	return h.Now().UTC().Format("2006-01")
}

type rankingEntry struct {
	Username  string    `json:"username"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List 返回某月得分前 5 名，默认当前月份
func (h *RankingHandler) List(c *gin.Context) {
	month := c.DefaultQuery("month", h.currentMonth())
	if err := util.ValidateMonth(month); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid month")
		return
	}

	var rows []models.MonthlyScore
	if err := h.DB.WithContext(c.Request.Context()).
		Where("month_key = ?", month).
		Order("score DESC").
		Order("updated_at ASC").
		Limit(rankingLimit).
		Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询排行榜失败")
		return
	}

	list := make([]rankingEntry, 0, len(rows))
	for _, r := range rows {
		list = append(list, rankingEntry{Username: r.Username, Score: r.Score, UpdatedAt: r.UpdatedAt})
	}
	c.JSON(http.StatusOK, list)
}

type submitScoreReq struct {
	Score *float64 `json:"score"`
}

// bestScoreExpr 冲突时保留较高分；只有分数提高时才刷新 updated_at
var bestScoreExpr = clause.Set{
	{Column: clause.Column{Name: "score"}, Value: gorm.Expr("CASE WHEN excluded.score > monthly_scores.score THEN excluded.score ELSE monthly_scores.score END")},
	{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("CASE WHEN excluded.score > monthly_scores.score THEN excluded.updated_at ELSE monthly_scores.updated_at END")},
	{Column: clause.Column{Name: "username"}, Value: gorm.Expr("excluded.username")},
}

// keepBestScore 以单条 upsert 写入得分，返回该用户当月的最高分
func keepBestScore(tx *gorm.DB, user *models.User, month string, score float64) (float64, error) {
	row := models.MonthlyScore{UserID: user.ID, MonthKey: month, Username: user.Username, Score: score}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month_key"}},
		DoUpdates: bestScoreExpr,
	}).Create(&row).Error; err != nil {
		return 0, err
	}

	var stored models.MonthlyScore
	if err := tx.Where("user_id = ? AND month_key = ?", user.ID, month).First(&stored).Error; err != nil {
		return 0, err
	}
	return stored.Score, nil
}

// Submit 提交当前月份得分，同一用户同一月份只保留最高分
func (h *RankingHandler) Submit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}

	var req submitScoreReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Score == nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "score required")
		return
	}
	if err := util.ValidateScore(*req.Score); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	month := h.currentMonth()
	var best float64
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		best, err = keepBestScore(tx, user, month, *req.Score)
		return err
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to submit score")
		return
	}

	util.Success(c, http.StatusOK, util.Response{
		"message": "Score submitted",
		"month":   month,
		"score":   best,
	})
}
