package otu_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/amplicon/otu"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binarizeString(in string) (string, int, error) {
	var out bytes.Buffer
	n, err := otu.BinarizeTable(&out, strings.NewReader(in))
	return out.String(), n, err
}

func TestBinarizeTable(t *testing.T) {
	const in = "#OTU ID\tS1\tS2\tS3\n" +
		"OTU1\t3\t0\t5\n" +
		"OTU2\t0\t0\t0\n" +
		"Otu3;size=9\t1\t12\t0\n"
	got, n, err := binarizeString(in)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "#OTU ID\tS1\tS2\tS3\n"+
		"OTU1\t1\t0\t1\n"+
		"OTU2\t0\t0\t0\n"+
		"Otu3;size=9\t1\t1\t0\n", got)
}

func TestBinarizeTableHeaderVerbatim(t *testing.T) {
	const header = "#OTU ID\t sample 1 \tS2  "
	got, n, err := binarizeString(header + "\r\nOTU1\t7\t0\r\n")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, header+"\r\nOTU1\t1\t0\n", got)
}

func TestBinarizeTableWhitespaceColumns(t *testing.T) {
	got, n, err := binarizeString("OTU S1 S2 S3\nOTU1 3 0 5\nOTU2  0  1   0\n")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "OTU S1 S2 S3\nOTU1\t1\t0\t1\nOTU2\t0\t1\t0\n", got)
}

func TestBinarizeTableHeaderWithoutNewline(t *testing.T) {
	got, n, err := binarizeString("#OTU ID\tS1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "#OTU ID\tS1", got)
}

func TestBinarizeTableHeaderOnly(t *testing.T) {
	got, n, err := binarizeString("#OTU ID\tS1\n")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "#OTU ID\tS1\n", got)
}

func TestBinarizeTableErrors(t *testing.T) {
	tests := []struct {
		in, err string
	}{
		{"", "abundance table is empty"},
		{"#OTU ID\tS1\tS2\nOTU1\t1\n", "line 2: found 2 columns, header has 3"},
		{"#OTU ID\tS1\nOTU1\t1\nOTU2\t1\t2\n", "line 3: found 3 columns, header has 2"},
		{"#OTU ID\tS1\nOTU1\tx\n", `line 2: bad count "x"`},
		{"#OTU ID\tS1\nOTU1\t1.5\n", `line 2: bad count "1.5"`},
		{"#OTU ID\tS1\nOTU1\t-1\n", "line 2: negative count -1"},
		{"OTU S1 S2\nOTU1 4\n", "line 2: found 2 columns, header has 3"},
	}
	for _, tt := range tests {
		_, _, err := binarizeString(tt.in)
		require.Error(t, err, tt.in)
		assert.True(t, errors.Is(errors.Invalid, err), tt.in)
		assert.Contains(t, err.Error(), tt.err)
	}
}

func TestBinarize(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	tablePath := filepath.Join(tempDir, "reads_renamed_otuTable.txt")
	require.NoError(t, ioutil.WriteFile(tablePath, []byte("#OTU ID\tA\tB\nOTU1\t3\t0\n"), 0644))
	outPath, err := otu.Binarize(ctx, tablePath, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "reads_renamed_otuTable_binary.txt"), outPath)
	data, err := ioutil.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "#OTU ID\tA\tB\nOTU1\t1\t0\n", string(data))
}
