package repositories

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination - параметры страницы (page с 1)
type Pagination struct {
	Page     int
	PageSize int
}

func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// paginate - gorm scope для Limit/Offset
func paginate(p Pagination) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit())
	}
}

// likePattern строит шаблон для LOWER(col) LIKE ? (одинаково на postgres и mysql)
func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(q)
	return "%" + q + "%"
}

// jsonText приводит JSON колонку к тексту в синтаксисе текущего диалекта
func jsonText(db *gorm.DB, column string) string {
	if db.Dialector != nil && db.Dialector.Name() == "mysql" {
		return "LOWER(CAST(" + column + " AS CHAR))"
	}
	return "LOWER(CAST(" + column + " AS TEXT))"
}

// jsonContains - условие "JSON массив строк содержит value" без учета регистра
func jsonContains(db *gorm.DB, column, value string) (string, string) {
	return jsonText(db, column) + " LIKE ?", `%"` + strings.ToLower(strings.TrimSpace(value)) + `"%`
}

// jsonEmpty - массив не задан или пустой
func jsonEmpty(db *gorm.DB, column string) string {
	text := jsonText(db, column)
	return "(" + column + " IS NULL OR " + text + " IN ('null', '[]'))"
}
