package integration_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-flume/flume/cluster"
	"github.com/go-flume/flume/decode"
	"github.com/go-flume/flume/topk"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func entryValues(entries []topk.Entry) []float64 {
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values
}

func writeDataFile(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.ndjson")
	require.Nil(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestRunTwoRecordScenario(t *testing.T) {
	path := writeDataFile(t, []string{
		`{"time": "2023-01-01T10:15:00Z", "id": "1", "name": "alice", "metric": 0.5}`,
		`{"time": "2023-01-01T10:45:00Z", "id": "2", "name": "bob", "metric": -0.2}`,
	})
	decoder := decode.CreateDecoder(&decode.Conf{
		TimePath:        "time",
		EntityIDPath:    "id",
		EntityLabelPath: "name",
		MetricPath:      "metric",
	})
	res, err := cluster.RunLocal(context.Background(), &cluster.NodeOptions{
		DataPath:   path,
		NumWorkers: 2,
		TopK:       1,
		Decoder:    decoder,
	}, 0)
	require.Nil(t, err)
	require.NotNil(t, res)

	require.EqualValues(t, 2, res.Records)
	require.Len(t, res.Buckets, 1)
	require.InDelta(t, 0.3, res.Buckets["2023-01-01 10"], 1e-9)
	require.Len(t, res.Entities, 2)
	require.InDelta(t, 0.5, res.Entities["1"].Sum, 1e-9)
	require.Equal(t, "alice", res.Entities["1"].Label)
	require.InDelta(t, -0.2, res.Entities["2"].Sum, 1e-9)
	require.Equal(t, "bob", res.Entities["2"].Label)

	require.Len(t, res.TopBuckets, 1)
	require.Equal(t, "2023-01-01 10", res.TopBuckets[0].Key)
	require.Len(t, res.TopEntities, 1)
	require.Equal(t, "1", res.TopEntities[0].Key)
	require.Equal(t, "alice", res.TopEntities[0].Label)
	require.Len(t, res.BottomEntities, 1)
	require.Equal(t, "2", res.BottomEntities[0].Key)
}

func TestRunWorkerCountInvariance(t *testing.T) {
	var lines []string
	for i := 0; i < 500; i++ {
		lines = append(lines, fmt.Sprintf(
			`{"created_at": "2023-04-0%dT%02d:30:00Z", "account": {"id": "%d", "username": "user%d"}, "sentiment": %0.2f}`,
			i%5+1, i%24, i%37, i%37, float64(i%11)-5.0))
	}
	path := writeDataFile(t, lines)

	base, err := cluster.RunLocal(context.Background(), &cluster.NodeOptions{
		DataPath:   path,
		NumWorkers: 1,
	}, 0)
	require.Nil(t, err)
	require.EqualValues(t, 500, base.Records)

	for _, workers := range []int{2, 3, 4, 7} {
		res, err := cluster.RunLocal(context.Background(), &cluster.NodeOptions{
			DataPath:   path,
			NumWorkers: workers,
			// force several segments per shard
			MaxSegmentBytes: 256,
		}, 2)
		require.Nil(t, err)
		require.NotNil(t, res)
		require.Equal(t, base.Records, res.Records, "W=%d", workers)
		require.Equal(t, workers, res.NumWorkers)
		require.Len(t, res.Buckets, len(base.Buckets))
		for key, sum := range base.Buckets {
			require.InDelta(t, sum, res.Buckets[key], 1e-9, "bucket %s at W=%d", key, workers)
		}
		require.Len(t, res.Entities, len(base.Entities))
		for key, entry := range base.Entities {
			require.InDelta(t, entry.Sum, res.Entities[key].Sum, 1e-9, "entity %s at W=%d", key, workers)
			require.Equal(t, entry.Label, res.Entities[key].Label)
		}
		// tied values may be kept in any order, so compare values only
		require.Equal(t, entryValues(base.TopBuckets), entryValues(res.TopBuckets))
		require.Equal(t, entryValues(base.BottomBuckets), entryValues(res.BottomBuckets))
	}
}

func TestRunSkipsMalformedRecords(t *testing.T) {
	path := writeDataFile(t, []string{
		`{"created_at": "2023-01-01T10:00:00Z", "account": {"id": "1", "username": "a"}, "sentiment": 1.0}`,
		`not json at all`,
		`{"created_at": "garbage", "account": {"id": "2", "username": "b"}, "sentiment": 1.0}`,
		`{"created_at": "2023-01-01T11:00:00Z", "account": {"id": "2", "username": "b"}}`,
		`{"created_at": "2023-01-01T12:00:00Z", "account": {"id": "3", "username": "c"}, "sentiment": 2.0}`,
	})
	res, err := cluster.RunLocal(context.Background(), &cluster.NodeOptions{
		DataPath:   path,
		NumWorkers: 2,
	}, 0)
	require.Nil(t, err)
	// the unparseable line is dropped; decoded records count even when a
	// missing field keeps them out of one or both tables
	require.EqualValues(t, 4, res.Records)
	require.Len(t, res.Buckets, 2)
	require.Len(t, res.Entities, 3)
	require.InDelta(t, 1.0, res.Entities["2"].Sum, 1e-9)
}

func TestRunEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ndjson")
	require.Nil(t, os.WriteFile(path, nil, 0644))
	res, err := cluster.RunLocal(context.Background(), &cluster.NodeOptions{
		DataPath:   path,
		NumWorkers: 4,
	}, 0)
	require.Nil(t, err)
	require.NotNil(t, res)
	require.EqualValues(t, 0, res.Records)
	require.Empty(t, res.Buckets)
	require.Empty(t, res.Entities)
	require.Empty(t, res.TopBuckets)
	require.Empty(t, res.TopEntities)
}

func TestRunMissingFile(t *testing.T) {
	_, err := cluster.RunLocal(context.Background(), &cluster.NodeOptions{
		DataPath:   filepath.Join(t.TempDir(), "missing.ndjson"),
		NumWorkers: 2,
	}, 0)
	require.NotNil(t, err)
}

func TestRunNonZeroMergePoint(t *testing.T) {
	path := writeDataFile(t, []string{
		`{"created_at": "2023-01-01T10:00:00Z", "account": {"id": "1", "username": "a"}, "sentiment": 1.5}`,
	})
	res, err := cluster.RunLocal(context.Background(), &cluster.NodeOptions{
		DataPath:   path,
		NumWorkers: 3,
		MergePoint: 2,
	}, 0)
	require.Nil(t, err)
	require.NotNil(t, res)
	require.EqualValues(t, 1, res.Records)
	require.InDelta(t, 1.5, res.Buckets["2023-01-01 10"], 1e-9)
}
