package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// FakeObjectStore 内存对象存储，测试复制引擎用。
// 可按目标 key 前缀注入复制失败。
type FakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// 目标 key 含任一前缀时 Copy 返回错误
	failCopyPrefixes []string
	// 删除记录，断言回滚清理用
	deletedKeys []string
}

func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{
		objects: make(map[string][]byte),
	}
}

// Put 预置对象
func (f *FakeObjectStore) Put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

// FailCopyTo 注入失败：目标 key 含 prefix 的 Copy 调用将报错
func (f *FakeObjectStore) FailCopyTo(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCopyPrefixes = append(f.failCopyPrefixes, prefix)
}

func (f *FakeObjectStore) Copy(sourceKey, targetKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, prefix := range f.failCopyPrefixes {
		if strings.Contains(targetKey, prefix) {
			return fmt.Errorf("injected copy failure: %s", targetKey)
		}
	}

	data, ok := f.objects[sourceKey]
	if !ok {
		return fmt.Errorf("object not found: %s", sourceKey)
	}
	f.objects[targetKey] = append([]byte(nil), data...)
	return nil
}

func (f *FakeObjectStore) Delete(objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, objectKey)
	f.deletedKeys = append(f.deletedKeys, objectKey)
	return nil
}

func (f *FakeObjectStore) ExtractObjectKey(url string) string {
	idx := strings.Index(url, ".aliyuncs.com/")
	if idx < 0 {
		return url
	}
	return url[idx+len(".aliyuncs.com/"):]
}

func (f *FakeObjectStore) GetURL(objectKey string) string {
	return "https://bucket.oss-cn-hangzhou.aliyuncs.com/" + objectKey
}

// Exists 对象是否存在
func (f *FakeObjectStore) Exists(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// Keys 全部对象 key
func (f *FakeObjectStore) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

// DeletedKeys 已删除的 key 列表
func (f *FakeObjectStore) DeletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletedKeys...)
}
