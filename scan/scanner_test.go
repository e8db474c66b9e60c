package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-flume/flume"
	"github.com/go-flume/flume/aggregate"
	"github.com/go-flume/flume/errors"
	"github.com/go-flume/flume/shard"
)

// captureDecoder records every line offered to it, counting each as a
// bucket record so totals flow into the Partial
type captureDecoder struct {
	lines []string
}

func (d *captureDecoder) Decode(line []byte) (flume.Record, error) {
	if strings.HasPrefix(string(line), "bad") {
		return flume.Record{}, errors.MalformedRecordError{}
	}
	d.lines = append(d.lines, string(line))
	return flume.Record{BucketKey: string(line), Metric: 1, HasBucket: true}, nil
}

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	require.Nil(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

// scanAll scans a file across numWorkers shards and returns the total count
// plus every line seen, sorted
func scanAll(t *testing.T, path string, numWorkers int, maxSegment int) (int64, []string) {
	t.Helper()
	info, err := os.Stat(path)
	require.Nil(t, err)
	shards, err := shard.Plan(info.Size(), numWorkers)
	require.Nil(t, err)
	var total int64
	var lines []string
	for _, sh := range shards {
		dec := &captureDecoder{}
		scanner, err := CreateScanner(path, dec, maxSegment)
		require.Nil(t, err)
		count, err := scanner.ScanShard(sh, aggregate.CreatePartial())
		require.Nil(t, err)
		require.Equal(t, int64(len(dec.lines)), count)
		total += count
		lines = append(lines, dec.lines...)
	}
	sort.Strings(lines)
	return total, lines
}

func TestScanSingleShard(t *testing.T) {
	path := writeTempFile(t, "a\nbb\nccc\n")
	count, lines := scanAll(t, path, 1, 1024)
	require.Equal(t, int64(3), count)
	require.Equal(t, []string{"a", "bb", "ccc"}, lines)
}

func TestScanSkipsEmptyAndMalformedRecords(t *testing.T) {
	path := writeTempFile(t, "a\n\n   \nbad record\nbb\n")
	count, lines := scanAll(t, path, 1, 1024)
	require.Equal(t, int64(2), count)
	require.Equal(t, []string{"a", "bb"}, lines)
}

func TestScanPartitionInvariance(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 211; i++ {
		fmt.Fprintf(&b, "record-%03d-%s\n", i, strings.Repeat("x", i%17))
	}
	path := writeTempFile(t, b.String())

	baseCount, baseLines := scanAll(t, path, 1, 1024)
	require.Equal(t, int64(211), baseCount)
	for _, workers := range []int{2, 3, 5, 8, 13} {
		for _, segment := range []int{7, 64, 1 << 20} {
			count, lines := scanAll(t, path, workers, segment)
			require.Equal(t, baseCount, count, "W=%d B=%d must not drop or double-count", workers, segment)
			require.Equal(t, baseLines, lines, "W=%d B=%d must see the same records", workers, segment)
		}
	}
}

func TestScanRecordSplitAtShardBoundary(t *testing.T) {
	// a single record cut in half by the W=2 shard boundary must be
	// counted exactly once, by the shard containing its first byte
	path := writeTempFile(t, "aaaaaaaaaa\n")
	info, err := os.Stat(path)
	require.Nil(t, err)
	shards, err := shard.Plan(info.Size(), 2)
	require.Nil(t, err)

	first := &captureDecoder{}
	scanner, err := CreateScanner(path, first, 1024)
	require.Nil(t, err)
	count0, err := scanner.ScanShard(shards[0], aggregate.CreatePartial())
	require.Nil(t, err)
	require.Equal(t, int64(1), count0)
	require.Equal(t, []string{"aaaaaaaaaa"}, first.lines)

	second := &captureDecoder{}
	scanner, err = CreateScanner(path, second, 1024)
	require.Nil(t, err)
	count1, err := scanner.ScanShard(shards[1], aggregate.CreatePartial())
	require.Nil(t, err)
	require.Equal(t, int64(0), count1)
	require.Empty(t, second.lines)
}

func TestScanRecordStartingAtShardBoundary(t *testing.T) {
	// "aaaa\nbbbb\n" splits at byte 5, exactly where the second record
	// starts; it belongs to the second shard
	path := writeTempFile(t, "aaaa\nbbbb\n")
	info, err := os.Stat(path)
	require.Nil(t, err)
	shards, err := shard.Plan(info.Size(), 2)
	require.Nil(t, err)
	require.Equal(t, int64(5), shards[1].Start)

	first := &captureDecoder{}
	scanner, err := CreateScanner(path, first, 1024)
	require.Nil(t, err)
	_, err = scanner.ScanShard(shards[0], aggregate.CreatePartial())
	require.Nil(t, err)
	require.Equal(t, []string{"aaaa"}, first.lines)

	second := &captureDecoder{}
	scanner, err = CreateScanner(path, second, 1024)
	require.Nil(t, err)
	_, err = scanner.ScanShard(shards[1], aggregate.CreatePartial())
	require.Nil(t, err)
	require.Equal(t, []string{"bbbb"}, second.lines)
}

func TestScanSegmentCapSmallerThanRecord(t *testing.T) {
	path := writeTempFile(t, "aaaaaaaaaaaaaaaaaaaa\nbbbbbbbbbbbbbbbbbbbb\n")
	count, lines := scanAll(t, path, 1, 3)
	require.Equal(t, int64(2), count)
	require.Len(t, lines, 2)
}

func TestScanMissingTrailingSeparator(t *testing.T) {
	path := writeTempFile(t, "aaa\nbbb")
	for _, workers := range []int{1, 2, 3} {
		count, lines := scanAll(t, path, workers, 1024)
		require.Equal(t, int64(2), count)
		require.Equal(t, []string{"aaa", "bbb"}, lines)
	}
}

func TestScanEmptyFile(t *testing.T) {
	path := writeTempFile(t, "")
	count, lines := scanAll(t, path, 3, 1024)
	require.Equal(t, int64(0), count)
	require.Empty(t, lines)
}

func TestScanShardBeyondFile(t *testing.T) {
	path := writeTempFile(t, "abc\n")
	dec := &captureDecoder{}
	scanner, err := CreateScanner(path, dec, 1024)
	require.Nil(t, err)
	count, err := scanner.ScanShard(shard.Shard{Worker: 0, Start: 100, End: 200}, aggregate.CreatePartial())
	require.Nil(t, err)
	require.Equal(t, int64(0), count)
}

func TestCreateScannerRejectsBadSegmentSize(t *testing.T) {
	_, err := CreateScanner("whatever", &captureDecoder{}, 0)
	require.Equal(t, errors.SegmentSizeError{Size: 0}, err)
}

func TestScanMissingFileIsFatal(t *testing.T) {
	scanner, err := CreateScanner(filepath.Join(t.TempDir(), "nope"), &captureDecoder{}, 1024)
	require.Nil(t, err)
	_, err = scanner.ScanShard(shard.Shard{Worker: 0, Start: 0, End: 10}, aggregate.CreatePartial())
	require.NotNil(t, err)
}
