package oss

import (
	"fmt"
	"path"
	"time"
)

// CopyObjectKey 为复制出的对象生成目标 key：
// "<目录>/COPY_<毫秒时间戳>_<用户名>_<原文件名>"。
// 保留源 key 的目录前缀（没有则为空），时间戳保证并发复制同一源时 key 不冲突。
func CopyObjectKey(sourceKey, username string) string {
	return copyObjectKeyAt(sourceKey, username, time.Now())
}

func copyObjectKeyAt(sourceKey, username string, now time.Time) string {
	dir := path.Dir(sourceKey)
	filename := path.Base(sourceKey)

	name := fmt.Sprintf("COPY_%d_%s_%s", now.UnixMilli(), username, filename)
	if dir == "." || dir == "/" {
		return name
	}
	return dir + "/" + name
}
