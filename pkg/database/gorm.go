// Package database 负责初始化关系型数据库与 Redis 连接。
package database

import (
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leaf-care-go/internal/config"
	"leaf-care-go/internal/model"
	"leaf-care-go/pkg/log"
)

var DB *gorm.DB

// Open 根据配置的驱动打开数据库并执行迁移。driver 为 sqlite 时使用本地文件。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLite.Path)
	case "mysql", "":
		dsn, err := mysqlDSN(cfg.MySQL.DSN)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

// mysqlDSN 固定 parseTime 与 loc=UTC。
// 日期字段以 UTC 零点写入，按本地时区解析会落到前一天。
func mysqlDSN(raw string) (string, error) {
	c, err := mysqldriver.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	c.ParseTime = true
	c.Loc = time.UTC
	return c.FormatDSN(), nil
}

// Migrate 创建或更新业务表。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Plant{})
}

// InitDB 初始化全局 DB 并配置连接池，失败时直接退出。
func InitDB(cfg config.DatabaseConfig) {
	var err error
	DB, err = Open(cfg)
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Infof("database connected successfully, driver: %s", DB.Dialector.Name())
}
