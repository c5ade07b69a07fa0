package util

import (
	"path/filepath"
	"testing"

	"github.com/Bernardxu123/unicom-calc/internal/config"
	"github.com/Bernardxu123/unicom-calc/internal/database"
	"github.com/Bernardxu123/unicom-calc/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestIntegration_UserPasswordFlow 集成测试：用户密码完整流程
func TestIntegration_UserPasswordFlow(t *testing.T) {
	db := setupTestDB(t)

	password := "secret1"
	user := createTestUser(t, db, "alice", password)

	var dbUser models.User
	if err := db.Where("username = ?", "alice").First(&dbUser).Error; err != nil {
		t.Fatalf("Query user failed: %v", err)
	}
	if dbUser.ID != user.ID {
		t.Errorf("user id mismatch: %d vs %d", dbUser.ID, user.ID)
	}

	if !CheckPassword(password, dbUser.PasswordHash) {
		t.Error("CheckPassword failed: should return true for correct password")
	}
	if CheckPassword("WrongPassword", dbUser.PasswordHash) {
		t.Error("CheckPassword failed: should return false for wrong password")
	}
}

// TestIntegration_ConfigEncryption 集成测试：云端快照加密存储
func TestIntegration_ConfigEncryption(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "bob", "secret1")

	snapshot := `{"cards":[],"currentDate":"2025-01","customPresets":[],"globalVipPrice":16.25}`
	key := "server-encryption-key"

	enc, err := EncryptString(key, snapshot)
	if err != nil {
		t.Fatalf("EncryptString failed: %v", err)
	}
	if err := db.Create(&models.UserConfig{UserID: user.ID, ConfigJSON: enc}).Error; err != nil {
		t.Fatalf("Create config failed: %v", err)
	}

	var row models.UserConfig
	if err := db.First(&row, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("Query config failed: %v", err)
	}
	if row.ConfigJSON == snapshot {
		t.Error("快照不应明文落库")
	}
	if got := DecryptString(key, row.ConfigJSON); got != snapshot {
		t.Errorf("解密后的快照不一致: %s", got)
	}
	if got := DecryptString("other-key", row.ConfigJSON); got == snapshot {
		t.Error("错误密钥不应解出明文")
	}
}

// TestIntegration_AuditLogEncryption 集成测试：审计日志加密
func TestIntegration_AuditLogEncryption(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "carol", "secret1")

	key := "audit-key"
	path, _ := EncryptString(key, "/api/data/config")
	action, _ := EncryptString(key, `POST /api/data/config {"cards":[]}`)

	entry := models.AuditLog{UserID: &user.ID, PathEnc: path, Method: "POST", ActionEnc: action, Status: 200}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("Create audit log failed: %v", err)
	}

	var dbLog models.AuditLog
	if err := db.First(&dbLog, entry.ID).Error; err != nil {
		t.Fatalf("Query audit log failed: %v", err)
	}
	if DecryptString(key, dbLog.PathEnc) != "/api/data/config" {
		t.Error("审计路径解密失败")
	}
}

// ==================== 辅助函数 ====================

// setupTestDB 初始化测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test_crypto_integration.db"),
	}

	db, err := database.Init(cfg)
	if err != nil {
		t.Fatalf("Init test database failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// createTestUser 创建测试用户
func createTestUser(t *testing.T, db *gorm.DB, username, password string) models.User {
	t.Helper()
	hashedPwd, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: hashedPwd,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Create user failed: %v", err)
	}
	return user
}
