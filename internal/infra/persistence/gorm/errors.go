package gormpersistence

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// isDuplicateEntry 判断是否为 MySQL 唯一约束冲突 (错误码 1062)。
// 各仓库把它映射为 repository.ErrDuplicateEntry。
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
