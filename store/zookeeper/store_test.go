package zookeeper

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-zookeeper/zk"

	"github.com/storelock/storelock/testutil"
)

func TestNodePathEscapesKeys(t *testing.T) {
	s := New(nil)

	tests := []struct {
		key  string
		want string
	}{
		{"order_42", "/storelock/order_42"},
		{"orders/42", "/storelock/orders%2F42"},
		{"tenant a:42", "/storelock/tenant+a%3A42"},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, tt.want, s.nodePath(tt.key))
	}
}

func TestBasePathOption(t *testing.T) {
	s := New(nil, WithBasePath("/locks/orders/"))
	testutil.AssertEqual(t, "/locks/orders/order_42", s.nodePath("order_42"))

	// A path without a leading slash is ignored.
	s = New(nil, WithBasePath("locks"))
	testutil.AssertEqual(t, DefaultBasePath+"/order_42", s.nodePath("order_42"))
}

// setupIntegration connects to the ensemble named by STORELOCK_ZK_SERVERS
// (comma separated). Tests are skipped when the variable is unset so the
// suite stays runnable without infrastructure.
func setupIntegration(t *testing.T) *Store {
	t.Helper()

	servers := os.Getenv("STORELOCK_ZK_SERVERS")
	if servers == "" {
		t.Skip("STORELOCK_ZK_SERVERS not set; skipping zookeeper integration test")
	}

	conn, _, err := zk.Connect(strings.Split(servers, ","), 5*time.Second)
	testutil.RequireNoError(t, err)
	t.Cleanup(conn.Close)

	s := New(conn, WithBasePath("/storelock_test"))
	t.Cleanup(func() {
		children, _, err := conn.Children("/storelock_test")
		if err != nil {
			return
		}
		for _, child := range children {
			_ = conn.Delete("/storelock_test/"+child, -1)
		}
	})
	return s
}

func TestIntegrationInsertIfAbsent(t *testing.T) {
	s := setupIntegration(t)
	ctx := context.Background()

	created, err := s.InsertIfAbsent(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, created, "first insert should create the znode and any missing parents")

	created, err = s.InsertIfAbsent(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, created, "existing znode must reject the second insert")
}

func TestIntegrationGetUsesZnodeCtime(t *testing.T) {
	s := setupIntegration(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, ok)

	before := time.Now().Add(-time.Minute)
	_, err = s.InsertIfAbsent(ctx, "order_42")
	testutil.RequireNoError(t, err)

	acquiredAt, ok, err := s.Get(ctx, "order_42")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, ok)
	testutil.AssertTrue(t, acquiredAt.After(before),
		"acquired_at %v should come from the znode's creation stamp", acquiredAt)
}

func TestIntegrationDeleteIsIdempotent(t *testing.T) {
	s := setupIntegration(t)
	ctx := context.Background()

	_, err := s.InsertIfAbsent(ctx, "order_42")
	testutil.RequireNoError(t, err)

	testutil.AssertNoError(t, s.Delete(ctx, "order_42"))
	testutil.AssertNoError(t, s.Delete(ctx, "order_42"), "deleting an absent znode must be a no-op")
}
