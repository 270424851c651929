package depart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Load()
	require.NoError(t, err)
	return idx
}

func TestStationSearchByName(t *testing.T) {
	idx := loadIndex(t)

	got := idx.Search("station", "新宿")
	require.NotEmpty(t, got)
	assert.Contains(t, got, "新宿")

	// Substring match pulls in compounds too.
	got = idx.Search("station", "大")
	assert.Contains(t, got, "大崎")
}

func TestStationSearchByKana(t *testing.T) {
	idx := loadIndex(t)

	got := idx.Search("station", "しぶや")
	require.Len(t, got, 1)
	assert.Equal(t, "渋谷", got[0])
}

func TestStationSearchCapsAtTen(t *testing.T) {
	idx := loadIndex(t)

	// A single-kana needle matches broadly.
	got := idx.Search("station", "ん")
	assert.LessOrEqual(t, len(got), 10)
}

func TestPostalSearchByPrefix(t *testing.T) {
	idx := loadIndex(t)

	got := idx.Search("postal", "600")
	require.Len(t, got, 1)
	assert.Equal(t, "600-8216 京都府京都市下京区東塩小路町", got[0])

	got = idx.Search("postal", "1")
	assert.NotEmpty(t, got)
	for _, line := range got {
		assert.Regexp(t, `^1`, line)
	}
}

func TestSearchEmptyKeyword(t *testing.T) {
	idx := loadIndex(t)
	assert.Empty(t, idx.Search("station", ""))
	assert.Empty(t, idx.Search("postal", "   "))
}

func TestSearchNoMatch(t *testing.T) {
	idx := loadIndex(t)
	assert.Empty(t, idx.Search("station", "存在しない駅"))
	assert.Empty(t, idx.Search("postal", "999-9999"))
}
