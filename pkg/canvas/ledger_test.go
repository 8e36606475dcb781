package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelLedger_InsertIfAbsent(t *testing.T) {
	l := NewPixelLedger()
	first := PixelRecord{Owner: "alice", Price: 10, Message: "first"}

	t.Run("inserts into empty slot", func(t *testing.T) {
		require.NoError(t, l.InsertIfAbsent(3, first))
		assert.Equal(t, 1, l.Len())
	})

	t.Run("rejects occupied slot without mutation", func(t *testing.T) {
		err := l.InsertIfAbsent(3, PixelRecord{Owner: "bob", Price: 99})
		assert.True(t, IsAlreadyExists(err))

		got, err := l.Get(3)
		require.NoError(t, err)
		assert.Equal(t, first, *got)
		assert.Equal(t, 1, l.Len())
	})
}

func TestPixelLedger_Get(t *testing.T) {
	l := NewPixelLedger()

	_, err := l.Get(0)
	assert.True(t, IsNotFound(err))

	require.NoError(t, l.InsertIfAbsent(0, PixelRecord{Owner: "alice"}))
	got, err := l.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
}
