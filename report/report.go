// Package report renders a run's top-K results for people: a console view
// plus one text file per list in the output directory. The engine itself
// never formats anything; it hands a Result to this layer and is done.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/go-flume/flume/cluster"
	"github.com/go-flume/flume/topk"
)

const separator = "=================================================="

// file names, one per rendered list
const (
	topBucketsFile     = "happiest_hours.txt"
	bottomBucketsFile  = "saddest_hours.txt"
	topEntitiesFile    = "happiest_users.txt"
	bottomEntitiesFile = "saddest_users.txt"
)

// A Writer renders Results to a console sink and an output directory
type Writer struct {
	out          io.Writer
	outputDir    string
	bucketFormat string
}

// CreateWriter returns a Writer printing to out and writing one file per
// list into outputDir. bucketFormat is the time layout bucket keys were
// produced with, used to render them as hour ranges; pass "" for the
// default hour truncation.
func CreateWriter(out io.Writer, outputDir string, bucketFormat string) *Writer {
	if out == nil {
		out = os.Stdout
	}
	if len(bucketFormat) == 0 {
		bucketFormat = "2006-01-02 15"
	}
	return &Writer{out: out, outputDir: outputDir, bucketFormat: bucketFormat}
}

// Write renders all four lists plus run totals. Every list is rendered even
// if writing an earlier file failed; failures are combined into one error.
func (w *Writer) Write(res *cluster.Result) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("unable to create output directory %s: %w", w.outputDir, err)
	}
	var errs *multierror.Error
	errs = multierror.Append(errs, w.writeList("Top Happiest Hours", topBucketsFile, w.bucketLines(res.TopBuckets)))
	errs = multierror.Append(errs, w.writeList("Top Saddest Hours", bottomBucketsFile, w.bucketLines(res.BottomBuckets)))
	errs = multierror.Append(errs, w.writeList("Top Happiest Users", topEntitiesFile, w.entityLines(res.TopEntities)))
	errs = multierror.Append(errs, w.writeList("Top Saddest Users", bottomEntitiesFile, w.entityLines(res.BottomEntities)))
	fmt.Fprintf(w.out, "Total records processed: %d across %d workers\n", res.Records, res.NumWorkers)
	fmt.Fprintf(w.out, "Run completed in %.2f seconds\n", res.Stats.TotalTime.Seconds())
	return errs.ErrorOrNil()
}

// writeList prints one titled list to the console and mirrors it to a file
func (w *Writer) writeList(title string, filename string, lines []string) error {
	fmt.Fprintln(w.out, separator)
	fmt.Fprintln(w.out, title)
	fmt.Fprintln(w.out, separator)
	for _, line := range lines {
		fmt.Fprintln(w.out, line)
	}
	fmt.Fprintln(w.out)

	path := filepath.Join(w.outputDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to open %s for writing: %w", path, err)
	}
	defer f.Close()
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(separator + "\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	if _, err = f.WriteString(b.String()); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}

func (w *Writer) bucketLines(entries []topk.Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%d. %s with sentiment %s", i+1, w.formatBucketRange(e.Key), formatValue(e.Value))
	}
	return lines
}

func (w *Writer) entityLines(entries []topk.Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%d. %s (ID: %s) with total sentiment %s", i+1, e.Label, e.Key, formatValue(e.Value))
	}
	return lines
}

// formatBucketRange renders an hour bucket key as the hour range it covers,
// e.g. "2023-01-01 10:00 to 2023-01-01 11:00". Keys which do not parse with
// the bucket layout are rendered as-is.
func (w *Writer) formatBucketRange(key string) string {
	start, err := time.Parse(w.bucketFormat, key)
	if err != nil {
		return key
	}
	end := start.Add(time.Hour)
	return fmt.Sprintf("%s to %s", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}

// formatValue prefixes non-negative sums with "+"
func formatValue(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%g", v)
	}
	return fmt.Sprintf("%g", v)
}
