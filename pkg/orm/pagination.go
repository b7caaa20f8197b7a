package orm

import "gorm.io/gorm"

// MaxPageSize 单页上限，防止一次拉全表
const MaxPageSize = 200

// ApplyPagination page 从 1 开始；page/limit <= 0 时不分页
func ApplyPagination(db *gorm.DB, page, limit int) *gorm.DB {
	if page <= 0 || limit <= 0 {
		return db
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return db.Offset((page - 1) * limit).Limit(limit)
}
