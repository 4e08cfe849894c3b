package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/capmon/internal/domain"
)

func snap(path string, size int64, mtime time.Time) domain.FileSnapshot {
	return domain.FileSnapshot{Path: path, Size: size, ModTime: mtime}
}

func TestTracker_NewFileInitializesPrevScanToCurrent(t *testing.T) {
	tracker := NewTracker()
	mtime := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	removed := tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 100, mtime)}, 5*time.Second)

	assert.Empty(t, removed)
	require.Equal(t, 1, tracker.Len())

	st := tracker.States()["/data/APP1-t1.pcap"]
	require.NotNil(t, st)
	assert.Equal(t, int64(100), st.Size)
	assert.Equal(t, int64(100), st.PrevScanSize)
	assert.True(t, st.ModTime.Equal(mtime))
	assert.True(t, st.PrevScanModTime.Equal(mtime))
	assert.Equal(t, 5*time.Second, st.FirstSeenMono)
	assert.False(t, st.Active(), "a file's first cycle must never count as active")
}

func TestTracker_RetainedFileRollsCurrentIntoPrevScan(t *testing.T) {
	tracker := NewTracker()
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(30 * time.Second)

	tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 100, t1)}, time.Second)
	tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 250, t2)}, 31*time.Second)

	st := tracker.States()["/data/APP1-t1.pcap"]
	require.NotNil(t, st)
	assert.Equal(t, int64(250), st.Size)
	assert.Equal(t, int64(100), st.PrevScanSize)
	assert.True(t, st.ModTime.Equal(t2))
	assert.True(t, st.PrevScanModTime.Equal(t1))
	assert.Equal(t, time.Second, st.FirstSeenMono, "FirstSeenMono must be preserved")
	assert.True(t, st.Active())
}

func TestTracker_UnchangedFileBecomesInactive(t *testing.T) {
	tracker := NewTracker()
	mtime := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 100, mtime)}, time.Second)
	tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 200, mtime.Add(time.Second))}, 2*time.Second)
	tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 200, mtime.Add(time.Second))}, 3*time.Second)

	st := tracker.States()["/data/APP1-t1.pcap"]
	require.NotNil(t, st)
	assert.False(t, st.Active(), "no change between last two cycles")
}

func TestTracker_MissingFileIsRemovedAndReported(t *testing.T) {
	tracker := NewTracker()
	mtime := time.Now()

	tracker.Merge([]domain.FileSnapshot{
		snap("/data/APP1-t1.pcap", 100, mtime),
		snap("/data/APP2-t1.pcap", 100, mtime),
	}, time.Second)

	removed := tracker.Merge([]domain.FileSnapshot{
		snap("/data/APP2-t1.pcap", 100, mtime),
	}, 2*time.Second)

	assert.Equal(t, []string{"/data/APP1-t1.pcap"}, removed)
	assert.Equal(t, 1, tracker.Len())
	assert.NotContains(t, tracker.States(), "/data/APP1-t1.pcap")
}

func TestTracker_ReappearingFileIsBrandNew(t *testing.T) {
	tracker := NewTracker()
	mtime := time.Now()

	tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 100, mtime)}, time.Second)
	removed := tracker.Merge(nil, 2*time.Second)
	require.Equal(t, []string{"/data/APP1-t1.pcap"}, removed)

	// Same path reappears: no memory of the earlier record.
	tracker.Merge([]domain.FileSnapshot{snap("/data/APP1-t1.pcap", 500, mtime)}, 10*time.Second)

	st := tracker.States()["/data/APP1-t1.pcap"]
	require.NotNil(t, st)
	assert.Equal(t, 10*time.Second, st.FirstSeenMono)
	assert.Equal(t, int64(500), st.PrevScanSize)
	assert.False(t, st.Active())
}

func TestTracker_RemovedPathsAreSorted(t *testing.T) {
	tracker := NewTracker()
	mtime := time.Now()

	tracker.Merge([]domain.FileSnapshot{
		snap("/data/C-1.pcap", 1, mtime),
		snap("/data/A-1.pcap", 1, mtime),
		snap("/data/B-1.pcap", 1, mtime),
	}, time.Second)

	removed := tracker.Merge(nil, 2*time.Second)
	assert.Equal(t, []string{"/data/A-1.pcap", "/data/B-1.pcap", "/data/C-1.pcap"}, removed)
}
