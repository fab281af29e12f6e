package conversation

import (
	"testing"

	"DateServer/model"

	"github.com/stretchr/testify/assert"
)

func ids(msgs []model.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestRoomKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "123_456", RoomKey("456", "123"))
	assert.Equal(t, RoomKey("x", "y"), RoomKey("y", "x"))
	// 字符串序而非数值序
	assert.Equal(t, "10_9", RoomKey("9", "10"))
}

func TestMergeFiltersDedupesAndSorts(t *testing.T) {
	aLog := []model.Message{
		msg("a1", "a", "b", 3),
		msg("a2", "a", "c", 1),
		msg("dup", "a", "b", 5),
	}
	bLog := []model.Message{
		msg("b1", "b", "a", 1),
		msg("b2", "b", "c", 0),
		msg("dup", "a", "b", 5),
		msg("b3", "b", "a", 4),
	}

	got := Merge("a", "b", aLog, bLog)

	assert.Equal(t, []string{"b1", "a1", "b3", "dup"}, ids(got))
}

func TestMergeStableOnEqualTimestamps(t *testing.T) {
	aLog := []model.Message{msg("x", "a", "b", 1)}
	bLog := []model.Message{msg("y", "b", "a", 1)}

	assert.Equal(t, []string{"x", "y"}, ids(Merge("a", "b", aLog, bLog)))
	assert.Equal(t, []string{"y", "x"}, ids(Merge("a", "b", bLog, aLog)))
}

func TestMergeEmpty(t *testing.T) {
	got := Merge("a", "b", nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
