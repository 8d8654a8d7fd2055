package gormplugin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"katydid-common-validator/pkg/validator"
	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/gormplugin"
)

type Product struct {
	ID    uint   `gorm:"primaryKey"`
	Code  string `validate:"required,min=3"`
	Price int    `validate:"gte=0"`
}

// openDryRun 使用 DryRun 模式，只生成 SQL 不连接数据库
func openDryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=katydid dbname=katydid sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(gormplugin.New(validator.New())))
	return db
}

func TestPlugin_Name(t *testing.T) {
	assert.Equal(t, "katydid:validator", gormplugin.New(nil).Name())
}

func TestPlugin_Create(t *testing.T) {
	db := openDryRun(t)

	err := db.Create(&Product{Code: "SKU-1", Price: 10}).Error
	assert.NoError(t, err)

	err = db.Create(&Product{Code: "X", Price: -1}).Error
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Count())
}

func TestPlugin_CreateBatch(t *testing.T) {
	db := openDryRun(t)

	products := []Product{{Code: "SKU-1"}, {Code: ""}}
	err := db.Create(&products).Error
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "field 'Code' is required", verr.Results()[0].Message)
}

func TestPlugin_Update(t *testing.T) {
	db := openDryRun(t)

	err := db.Save(&Product{ID: 1, Code: "SKU-1"}).Error
	assert.NoError(t, err)

	err = db.Save(&Product{ID: 1, Code: "AB"}).Error
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)

	err = db.Model(&Product{ID: 1}).Updates(map[string]any{"code": "Z"}).Error
	assert.NoError(t, err, "map 更新没有可验证的模型")
}
