package eventqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_MonotonicIDs(t *testing.T) {
	q := New(4)
	a := q.Ping("a")
	b := q.Ping("b")
	require.Less(t, a.ID, b.ID)
	require.NotEqual(t, a.CorrelationID, b.CorrelationID)
}

func Test_TryPush_ReportsFullQueue(t *testing.T) {
	q := New(1)
	require.True(t, q.TryPush(q.Ping("first")))
	require.False(t, q.TryPush(q.Ping("second")), "second push should observe a full queue")
}

func Test_Push_BlocksUntilRoom(t *testing.T) {
	q := New(1)
	require.NoError(t, q.Push(context.Background(), q.Ping("first")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Push(ctx, q.Ping("second"))
	require.Error(t, err)
}

func Test_PrComment_RequiresRepo(t *testing.T) {
	q := New(1)
	_, err := q.PrComment("", 1, 2, "!qline go", "webhook")
	require.Error(t, err)

	ev, err := q.PrComment("acme/widgets", 1, 2, "!qline go", "webhook")
	require.NoError(t, err)
	require.Equal(t, KindPrComment, ev.Kind)
	require.Equal(t, "acme/widgets", ev.Repo)
}
