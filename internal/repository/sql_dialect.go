package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// buildKeywordLikeCondition 构建跨列的大小写不敏感 LIKE 条件，并返回参数数量。
func buildKeywordLikeCondition(db *gorm.DB, columns []string) (string, int) {
	return buildKeywordLikeConditionByDialect(dbDialectName(db), columns)
}

func buildKeywordLikeConditionByDialect(dialect string, columns []string) (string, int) {
	parts := make([]string, 0, len(columns))
	argCount := 0

	for _, column := range columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(dialect)) {
		case "postgres", "postgresql":
			parts = append(parts, fmt.Sprintf("%s ILIKE ?", trimmed))
		default:
			// sqlite 的 LIKE 只对 ASCII 不敏感，统一 LOWER 两侧保证行为一致
			parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ?", trimmed))
		}
		argCount++
	}

	return strings.Join(parts, " OR "), argCount
}

// keywordLikeArg 根据方言生成 LIKE 参数。
func keywordLikeArg(dialect, keyword string) string {
	like := "%" + keyword + "%"
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return like
	default:
		return strings.ToLower(like)
	}
}

// repeatLikeArgs 生成重复的 LIKE 参数列表。
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}
