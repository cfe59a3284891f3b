package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jpfielding/dicomuid/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(context.Background(), "test-sha")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "test-sha\n", out)
}

func TestRootPrintsTree(t *testing.T) {
	out, err := run(t, "")
	require.NoError(t, err)
	for _, sub := range []string{"generate", "encode", "derive", "serve", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestGenerate_Text(t *testing.T) {
	out, err := run(t, "", "generate", "-n", "16")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 16)
	seen := make(map[string]struct{})
	for _, l := range lines {
		assert.Regexp(t, `^2\.25\.[0-9]{1,39}$`, l)
		seen[l] = struct{}{}
	}
	assert.Len(t, seen, 16)
}

func TestGenerate_JSON(t *testing.T) {
	out, err := run(t, "", "generate", "-n", "3", "-f", "json")
	require.NoError(t, err)

	var recs []Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 3)
	for _, r := range recs {
		u, err := uuid.Parse(r.UUID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), u.Version())
		assert.Equal(t, uid.Encode(u), r.UID)
	}
}

func TestGenerate_BadArgs(t *testing.T) {
	_, err := run(t, "", "generate", "-n", "0")
	assert.ErrorContains(t, err, "count must be positive")

	_, err = run(t, "", "generate", "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestEncode_Args(t *testing.T) {
	out, err := run(t, "", "encode",
		"00000000-0000-0000-0000-000000000000",
		"f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	require.NoError(t, err)
	assert.Equal(t, "2.25.0\n2.25.327546287173619387833863140454723165688\n", out)
}

func TestEncode_Stdin(t *testing.T) {
	stdin := "ffffffff-ffff-ffff-ffff-ffffffffffff\n\n00000000-0000-0000-0000-000000000000\n"
	out, err := run(t, stdin, "encode", "-f", "yaml")
	require.NoError(t, err)

	var recs []Record
	require.NoError(t, yaml.Unmarshal([]byte(out), &recs))
	assert.Equal(t, []Record{
		{UUID: "ffffffff-ffff-ffff-ffff-ffffffffffff", UID: "2.25.340282366920938463463374607431768211455"},
		{UUID: "00000000-0000-0000-0000-000000000000", UID: "2.25.0"},
	}, recs)
}

func TestEncode_Invalid(t *testing.T) {
	_, err := run(t, "", "encode", "not-a-uuid")
	assert.ErrorContains(t, err, `invalid uuid "not-a-uuid"`)
}

func TestDerive(t *testing.T) {
	out, err := run(t, "", "derive", "study-1", "study-2", "study-1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, uid.FromName(uid.NamespaceUID, []byte("study-1")), lines[0])
	assert.Equal(t, lines[0], lines[2])
	assert.NotEqual(t, lines[0], lines[1])

	out, err = run(t, "", "derive", "--namespace", uuid.NameSpaceURL.String(), "study-1")
	require.NoError(t, err)
	assert.Equal(t, uid.FromName(uuid.NameSpaceURL, []byte("study-1"))+"\n", out)

	_, err = run(t, "", "derive", "--namespace", "bogus", "x")
	assert.ErrorContains(t, err, "invalid namespace")

	_, err = run(t, "", "derive")
	assert.Error(t, err)
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uidctl.log")
	_, err := run(t, "", "--log-level", "debug", "--log-file", path, "generate", "-n", "2")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "generating uids")
	assert.Contains(t, string(raw), "count=2")
}
