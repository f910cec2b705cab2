package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/voicefont/errs"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.Strings())
}

func TestTracker_Track_Success(t *testing.T) {
	tracker := NewTracker()

	// Track first string
	idx, added, err := tracker.Track("aa_phone", 0x1234567890abcdef)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, uint32(0), idx)
	require.Equal(t, 1, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Equal(t, []string{"aa_phone"}, tracker.Strings())

	// Track second string
	idx, added, err = tracker.Track("ae_phone", 0xfedcba0987654321)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, uint32(1), idx)
	require.Equal(t, 2, tracker.Count())
	require.Equal(t, []string{"aa_phone", "ae_phone"}, tracker.Strings())
}

func TestTracker_Track_Duplicate(t *testing.T) {
	tracker := NewTracker()

	idx, added, err := tracker.Track("aa_phone", 0x1234567890abcdef)
	require.NoError(t, err)
	require.True(t, added)

	// Tracking the same string again returns the existing index, no error
	idx2, added2, err := tracker.Track("aa_phone", 0x1234567890abcdef)
	require.NoError(t, err)
	require.False(t, added2)
	require.Equal(t, idx, idx2)
	require.Equal(t, 1, tracker.Count())
	require.False(t, tracker.HasCollision())
}

func TestTracker_Track_Collision(t *testing.T) {
	tracker := NewTracker()

	_, _, err := tracker.Track("aa_phone", 0x1234567890abcdef)
	require.NoError(t, err)
	require.False(t, tracker.HasCollision())

	// Different string, same hash: the hash index cannot hold both
	_, _, err = tracker.Track("ae_phone", 0x1234567890abcdef)
	require.ErrorIs(t, err, errs.ErrStringCollision)
	require.True(t, tracker.HasCollision())
	require.Equal(t, 1, tracker.Count()) // colliding string not interned
	require.Equal(t, []string{"aa_phone"}, tracker.Strings())
}

func TestTracker_Lookup(t *testing.T) {
	tracker := NewTracker()

	_, _, err := tracker.Track("aa_phone", 0x0001)
	require.NoError(t, err)
	_, _, err = tracker.Track("ae_phone", 0x0002)
	require.NoError(t, err)

	idx, ok := tracker.Lookup("ae_phone", 0x0002)
	require.True(t, ok)
	require.Equal(t, uint32(1), idx)

	// Unknown string
	_, ok = tracker.Lookup("eh_phone", 0x0003)
	require.False(t, ok)

	// Hash hit but different string is not a match
	_, ok = tracker.Lookup("zz_phone", 0x0001)
	require.False(t, ok)
}

func TestTracker_Strings_PreservesOrder(t *testing.T) {
	tracker := NewTracker()

	entries := []struct {
		s    string
		hash uint64
	}{
		{"sil", 0x0001},
		{"aa", 0x0002},
		{"ae", 0x0003},
		{"ah", 0x0004},
	}

	for _, e := range entries {
		_, _, err := tracker.Track(e.s, e.hash)
		require.NoError(t, err)
	}

	strs := tracker.Strings()
	require.Equal(t, 4, len(strs))
	require.Equal(t, "sil", strs[0])
	require.Equal(t, "aa", strs[1])
	require.Equal(t, "ae", strs[2])
	require.Equal(t, "ah", strs[3])
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()

	_, _, _ = tracker.Track("aa", 0x1234567890abcdef)
	_, _, _ = tracker.Track("ae", 0xfedcba0987654321)
	require.Equal(t, 2, tracker.Count())

	tracker.Reset()

	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.Strings())

	// Indexes restart from zero after reset
	idx, added, err := tracker.Track("ah", 0x1111111111111111)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, uint32(0), idx)
}

func TestTracker_Reset_PreservesCapacity(t *testing.T) {
	tracker := NewTracker()

	// Track many strings to allocate capacity
	for i := 0; i < 100; i++ {
		_, _, _ = tracker.Track(string(rune('a'+i%26))+"_entry", uint64(i+1))
	}

	initialCap := cap(tracker.list)

	// Reset should preserve capacity
	tracker.Reset()

	require.Equal(t, 0, len(tracker.list))
	require.GreaterOrEqual(t, cap(tracker.list), initialCap)
}

func TestTracker_HasCollision_Persists(t *testing.T) {
	tracker := NewTracker()

	_, _, _ = tracker.Track("aa", 0x1234567890abcdef)
	require.False(t, tracker.HasCollision())

	// Trigger collision
	_, _, err := tracker.Track("ae", 0x1234567890abcdef)
	require.Error(t, err)
	require.True(t, tracker.HasCollision())

	// Collision flag persists across further tracking
	_, _, err = tracker.Track("ah", 0xfedcba0987654321)
	require.NoError(t, err)
	require.True(t, tracker.HasCollision())
}
