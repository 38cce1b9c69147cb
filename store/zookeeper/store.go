// Package zookeeper implements the store contract on top of ZooKeeper.
// Creating a persistent znode is the atomic insert-if-absent (zk returns
// ErrNodeExists when the lock is held), and the znode's creation time in its
// Stat is the server-assigned acquisition timestamp.
package zookeeper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

// DefaultBasePath is the parent znode under which lock records are created.
const DefaultBasePath = "/storelock"

// Option configures a Store during construction.
type Option func(*Store)

// WithBasePath overrides the parent znode path. It must start with "/".
func WithBasePath(path string) Option {
	return func(s *Store) {
		if strings.HasPrefix(path, "/") {
			s.basePath = strings.TrimRight(path, "/")
		}
	}
}

// WithACL overrides the ACL applied to created znodes.
func WithACL(acl []zk.ACL) Option {
	return func(s *Store) {
		if len(acl) > 0 {
			s.acl = acl
		}
	}
}

// Store is a ZooKeeper-backed atomic key store.
type Store struct {
	conn     *zk.Conn
	basePath string
	acl      []zk.ACL
}

// New returns a Store using the given connection. The connection remains
// owned by the caller.
func New(conn *zk.Conn, opts ...Option) *Store {
	s := &Store{
		conn:     conn,
		basePath: DefaultBasePath,
		acl:      zk.WorldACL(zk.PermAll),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nodePath maps a lock key to a single child znode under basePath. Keys are
// escaped so that slashes and other path-significant characters cannot break
// out of the namespace.
func (s *Store) nodePath(key string) string {
	return s.basePath + "/" + url.QueryEscape(key)
}

// InsertIfAbsent implements store.Store. Records are persistent znodes, not
// ephemeral ones: the lock must survive the creator's session so that
// staleness judgement stays with the lock manager.
func (s *Store) InsertIfAbsent(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	created, err := s.create(key)
	if errors.Is(err, zk.ErrNoNode) {
		// Parent path missing on first use.
		if err := s.ensureBasePath(); err != nil {
			return false, fmt.Errorf("zookeeper create parent %q: %w", s.basePath, err)
		}
		created, err = s.create(key)
	}
	if err != nil {
		return false, fmt.Errorf("zookeeper insert %q: %w", key, err)
	}
	return created, nil
}

func (s *Store) create(key string) (bool, error) {
	_, err := s.conn.Create(s.nodePath(key), nil, 0, s.acl)
	if errors.Is(err, zk.ErrNodeExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ensureBasePath creates every segment of basePath, tolerating segments that
// already exist.
func (s *Store) ensureBasePath() error {
	pth := ""
	for _, part := range strings.Split(s.basePath, "/") {
		if part == "" {
			continue
		}
		pth += "/" + part
		_, err := s.conn.Create(pth, nil, 0, s.acl)
		if err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return err
		}
	}
	return nil
}

// Get implements store.Store. The record's acquisition time is the znode's
// creation time as stamped by the ZooKeeper server.
func (s *Store) Get(ctx context.Context, key string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	exists, stat, err := s.conn.Exists(s.nodePath(key))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("zookeeper get %q: %w", key, err)
	}
	if !exists {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(stat.Ctime), true, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.conn.Delete(s.nodePath(key), -1)
	if errors.Is(err, zk.ErrNoNode) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("zookeeper delete %q: %w", key, err)
	}
	return nil
}
