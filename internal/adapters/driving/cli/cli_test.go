package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags clears the package-level flag values between executions;
// cobra only overwrites flags that appear on the command line.
func resetFlags() {
	flagVerbose = false
	flagConfig = ""
	flagOutput = ""
	flagRecursive = false
	flagBatchSize = 0
	flagWorkers = 0
	flagReportOnly = false
	flagNoCheckpoint = false
	flagErrorHandling = ""
}

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "hydroprep version test-version-1.0.0")
}

func TestFormatsCmd(t *testing.T) {
	out, err := execute(t, "formats")
	require.NoError(t, err)
	for _, format := range []string{".pdf", ".txt", ".json", ".csv", ".md"} {
		assert.Contains(t, out, format)
	}
}

func TestProcessCmd_RequiresInput(t *testing.T) {
	_, err := execute(t, "process")
	assert.Error(t, err)
}

func TestProcessCmd_MissingInput(t *testing.T) {
	_, err := execute(t, "process", filepath.Join(t.TempDir(), "absent.txt"),
		"--no-checkpoint")
	assert.Error(t, err)
}

func TestProcessCmd_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(input,
		[]byte("水库防洪调度方案需要结合流域降雨预报和河道水位监测资料。"), 0o644))
	output := filepath.Join(dir, "out", "dataset.json")

	out, err := execute(t, "process", input, "-o", output, "--no-checkpoint")
	require.NoError(t, err)
	assert.Contains(t, out, "Processing completed")
	assert.FileExists(t, output)
}

func TestProcessCmd_ReportOnly(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(input,
		[]byte("汛期洪水预报调度会商制度与水库群联合调度。"), 0o644))

	out, err := execute(t, "process", input, "--report-only", "--no-checkpoint")
	require.NoError(t, err)
	assert.Contains(t, out, "skill_statistics")
	assert.Contains(t, out, "cleaner")
}

func TestProcessCmd_UnknownErrorHandling(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(input, []byte("水文资料整编。"), 0o644))

	_, err := execute(t, "process", input, "--error-handling", "panic", "--no-checkpoint")
	assert.Error(t, err)
}
