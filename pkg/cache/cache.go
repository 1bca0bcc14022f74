package cache

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrClosed 缓存已关闭
var ErrClosed = errors.New("cache: closed")

// Cache 通用 TTL 缓存接口
type Cache[V any] interface {
	Get(key string) (V, bool, error)
	Set(key string, value V, ttl time.Duration) error
	Delete(key string) error
	DeletePrefix(prefix string) (int, error)
	Close() error
}

// BadgerCache 基于内存模式 Badger 的 TTL 缓存，值以 JSON 编码
// 内存模式不落盘，进程退出即丢失
type BadgerCache[V any] struct {
	db         *badger.DB
	prefix     string
	defaultTTL time.Duration
}

// 缓存只保存少量小条目，默认的 64MB memtable 和 256MB block cache 过大
const (
	memTableSize   = 1 << 20
	blockCacheSize = 1 << 20
	indexCacheSize = 512 << 10
	valueThreshold = 1 << 10
)

// NewBadgerCache 创建新的内存缓存
func NewBadgerCache[V any](prefix string, defaultTTL time.Duration) (*BadgerCache[V], error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithMemTableSize(memTableSize).
		WithNumMemtables(1).
		WithNumCompactors(2).
		WithBlockCacheSize(blockCacheSize).
		WithIndexCacheSize(indexCacheSize).
		WithValueThreshold(valueThreshold).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache[V]{
		db:         db,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}, nil
}

func (c *BadgerCache[V]) key(key string) ([]byte, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return nil, errors.New("cache: key is empty")
	}
	return []byte(c.prefix + k), nil
}

// Get 获取缓存值，过期或不存在时返回 false
func (c *BadgerCache[V]) Get(key string) (V, bool, error) {
	var zero V
	if c == nil || c.db == nil {
		return zero, false, ErrClosed
	}
	k, err := c.key(key)
	if err != nil {
		return zero, false, err
	}

	var out V
	found := false
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}
	return out, true, nil
}

// Set 设置缓存值，ttl 为 0 时使用默认 TTL
func (c *BadgerCache[V]) Set(key string, value V, ttl time.Duration) error {
	if c == nil || c.db == nil {
		return ErrClosed
	}
	k, err := c.key(key)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(k, v)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete 删除缓存项
func (c *BadgerCache[V]) Delete(key string) error {
	if c == nil || c.db == nil {
		return ErrClosed
	}
	k, err := c.key(key)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
}

// DeletePrefix 删除以 prefix 开头的全部缓存项，返回删除数量
func (c *BadgerCache[V]) DeletePrefix(prefix string) (int, error) {
	if c == nil || c.db == nil {
		return 0, ErrClosed
	}
	p, err := c.key(prefix)
	if err != nil {
		return 0, err
	}

	var keys [][]byte
	err = c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: p})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Close 关闭缓存
func (c *BadgerCache[V]) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
