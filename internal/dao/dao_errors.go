package dao

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/haierkeys/site-text-service/pkg/writequeue"

	"gorm.io/gorm"
)

// IsUnavailable reports whether err means storage cannot serve the request right now
// (connection failures, closed pools, lock contention, write queue back pressure, cancelled calls)
// IsUnavailable 判断错误是否表示存储暂时不可用（连接失败、连接池关闭、锁竞争、写队列拥塞、调用被取消）
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if writequeue.IsQueueError(err) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, gorm.ErrInvalidDB) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if IsUniqueViolation(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"database is locked",
		"database table is locked",
		"sqlite_busy",
		"sql: database is closed",
		"connection refused",
		"bad connection",
		"too many connections",
		"no such host",
		"server has gone away",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsUniqueViolation reports a duplicate key error from any supported driver
// IsUniqueViolation 判断是否为唯一键冲突（兼容各驱动）
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
