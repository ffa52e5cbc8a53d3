package usearch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/grailbio/amplicon/usearch"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
)

type call struct {
	name string
	args []string
}

// recorder is a Runner that records calls and fails the call with index
// failAt, if non-negative.
type recorder struct {
	calls  []call
	failAt int
}

func (r *recorder) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, call{name, args})
	if len(r.calls)-1 == r.failAt {
		return &usearch.ExitError{Cmdline: usearch.Cmdline(name, args...), Status: 2, Err: fmt.Errorf("boom")}
	}
	return nil
}

func TestNewOutputs(t *testing.T) {
	out := usearch.NewOutputs("/data/out/reads_renamed.fasta")
	expect.EQ(t, out, usearch.Outputs{
		Uniques:   "/data/out/reads_renamed_unqiues.fasta",
		Centroids: "/data/out/reads_renamed_centroids.fasta",
		OTUTable:  "/data/out/reads_renamed_otuTable.txt",
		Blast6:    "/data/out/reads_renamed_blast6out.txt",
	})
}

func TestCluster(t *testing.T) {
	r := &recorder{failAt: -1}
	opts := usearch.DefaultOpts
	opts.Threads = 8
	out, err := usearch.Cluster(context.Background(), r, "/o/r_renamed.fasta", opts)
	expect.NoError(t, err)
	expect.EQ(t, out, usearch.NewOutputs("/o/r_renamed.fasta"))
	expect.EQ(t, r.calls, []call{
		{"usearch", []string{
			"-derep_prefix", "/o/r_renamed.fasta",
			"-fastaout", "/o/r_renamed_unqiues.fasta",
			"-sizeout",
			"-threads", "8"}},
		{"usearch", []string{
			"-cluster_fast", "/o/r_renamed_unqiues.fasta",
			"-centroids", "/o/r_renamed_centroids.fasta",
			"-sort", "size",
			"-id", "0.96",
			"-threads", "8"}},
		{"usearch", []string{
			"-usearch_global", "/o/r_renamed.fasta",
			"-db", "/o/r_renamed_centroids.fasta",
			"-strand", "both",
			"-id", "0.96",
			"-otutabout", "/o/r_renamed_otuTable.txt",
			"-blast6out", "/o/r_renamed_blast6out.txt",
			"-threads", "8"}},
	})
}

func TestClusterCustomExec(t *testing.T) {
	r := &recorder{failAt: -1}
	opts := usearch.Opts{Exec: "/opt/bin/usearch11", PercentID: 0.5, Threads: 1}
	_, err := usearch.Cluster(context.Background(), r, "x.fa", opts)
	expect.NoError(t, err)
	expect.EQ(t, len(r.calls), 3)
	for _, c := range r.calls {
		expect.EQ(t, c.name, "/opt/bin/usearch11")
	}
	expect.EQ(t, r.calls[1].args[7], "0.5")
}

func TestClusterStopsOnFailure(t *testing.T) {
	for failAt := 0; failAt < 3; failAt++ {
		r := &recorder{failAt: failAt}
		_, err := usearch.Cluster(context.Background(), r, "x.fa", usearch.DefaultOpts)
		expect.NotNil(t, err)
		expect.EQ(t, len(r.calls), failAt+1, "no step may run after a failure")
		status, ok := usearch.ExitStatus(err)
		expect.True(t, ok)
		expect.EQ(t, status, 2)
	}
}

func TestClusterInvalidOpts(t *testing.T) {
	for _, opts := range []usearch.Opts{
		{Exec: "", PercentID: 0.9, Threads: 1},
		{Exec: "usearch", PercentID: 0, Threads: 1},
		{Exec: "usearch", PercentID: 1.5, Threads: 1},
		{Exec: "usearch", PercentID: 0.9, Threads: 0},
	} {
		r := &recorder{failAt: -1}
		_, err := usearch.Cluster(context.Background(), r, "x.fa", opts)
		expect.True(t, errors.Is(errors.Invalid, err), "opts: %+v", opts)
		expect.EQ(t, len(r.calls), 0)
	}
}

func TestExitStatusOther(t *testing.T) {
	_, ok := usearch.ExitStatus(fmt.Errorf("plain"))
	expect.False(t, ok)
	_, ok = usearch.ExitStatus(nil)
	expect.False(t, ok)
}
