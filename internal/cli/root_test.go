package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/infra/config"
	"github.com/xiaowang-jiji/taskbot/internal/infra/crypto"
	"github.com/xiaowang-jiji/taskbot/internal/infra/jsonstore"
	"github.com/xiaowang-jiji/taskbot/internal/tui"
)

// testCLI runs commands against a config file in a temp directory.
type testCLI struct {
	dir        string
	configPath string
	globalDir  string
	storePath  string
}

func newTestCLI(t *testing.T, extra string) *testCLI {
	t.Helper()
	for _, name := range []string{
		config.EnvPort, config.EnvChannelSecret, config.EnvChannelAccessToken,
		config.EnvOpenAIKey, config.EnvDatabaseURL, config.EnvSyncKey,
	} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	tc := &testCLI{
		dir:        dir,
		configPath: filepath.Join(dir, "taskbot.toml"),
		globalDir:  filepath.Join(dir, "global"),
		storePath:  filepath.Join(dir, "store.json"),
	}
	content := fmt.Sprintf("[store]\ndriver = \"json\"\npath = %q\n\n[log]\ndir = %q\n%s", tc.storePath, dir, extra)
	require.NoError(t, os.WriteFile(tc.configPath, []byte(content), 0o600))
	return tc
}

func (tc *testCLI) run(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	root := newRootCommand("test-version", tc.globalDir)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", tc.configPath}, args...))
	err = root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestRoot_Version(t *testing.T) {
	tc := newTestCLI(t, "")

	out, _, err := tc.run(context.Background(), "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "test-version")
}

func TestRoot_MissingExplicitConfig(t *testing.T) {
	tc := newTestCLI(t, "")
	tc.configPath = filepath.Join(tc.dir, "missing.toml")

	_, _, err := tc.run(context.Background(), "config", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRoot_PrintsWarnings(t *testing.T) {
	tc := newTestCLI(t, "\n[bogus]\nkey = 1\n")

	_, stderr, err := tc.run(context.Background(), "config", "show")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: unknown section: bogus")
}

func TestConfigShow(t *testing.T) {
	// Setup
	tc := newTestCLI(t, "\n[line]\nchannel_secret = \"top-secret\"\n")

	// Execute
	out, _, err := tc.run(context.Background(), "config", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, filepath.Join(tc.globalDir, domain.ConfigFileName)+" (not found)")
	assert.Contains(t, out, "- "+tc.configPath+"\n")
	assert.Contains(t, out, "[Effective Config]")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "top-secret")
}

func TestConfigTemplate(t *testing.T) {
	tc := newTestCLI(t, "")
	// A broken config file must not matter
	require.NoError(t, os.WriteFile(tc.configPath, []byte("not = [toml"), 0o600))

	out, _, err := tc.run(context.Background(), "config", "template")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfigTemplate(), out)
}

func TestConfigInit(t *testing.T) {
	// Setup
	tc := newTestCLI(t, "")
	tc.configPath = filepath.Join(tc.dir, "new.toml")

	// Execute
	out, _, err := tc.run(context.Background(), "config", "init")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Created config file: "+tc.configPath)
	content, err := os.ReadFile(tc.configPath)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfigTemplate(), string(content))

	// A second init refuses to overwrite
	_, _, err = tc.run(context.Background(), "config", "init")
	require.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestConfigInit_Global(t *testing.T) {
	tc := newTestCLI(t, "")

	_, _, err := tc.run(context.Background(), "config", "init", "--global")

	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(tc.globalDir, domain.ConfigFileName))
	assert.NoError(t, err)
}

func TestTagsImport(t *testing.T) {
	// Setup
	tc := newTestCLI(t, "")
	tagPath := filepath.Join(tc.dir, "tags.yaml")
	require.NoError(t, os.WriteFile(tagPath, []byte(`
users:
  U1:
    - name: 健身
    - name: 讀書
  U2:
    - name: 旅行
`), 0o600))

	// Execute
	out, _, err := tc.run(context.Background(), "tags", "import", tagPath, "--user", "U1")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 tags for 1 users")

	store := jsonstore.New(tc.storePath)
	tags, err := store.QueryTags(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "健身", tags[0].Name)

	other, err := store.QueryTags(context.Background(), "U2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTagsImport_MissingFile(t *testing.T) {
	tc := newTestCLI(t, "")

	_, _, err := tc.run(context.Background(), "tags", "import", filepath.Join(tc.dir, "nope.yaml"))

	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	// Setup
	tc := newTestCLI(t, "")
	store := jsonstore.New(tc.storePath)
	now := time.Date(2025, 9, 11, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertMessage(context.Background(), domain.MessageRecord{UserID: "U1", Text: "buy milk", Kind: domain.MessageKindTask, CreatedAt: now}))
	require.NoError(t, store.UpsertMessage(context.Background(), domain.MessageRecord{UserID: "U1", Text: "why?", Kind: domain.MessageKindQuestion, CreatedAt: now.Add(time.Minute)}))

	// Execute
	out, _, err := tc.run(context.Background(), "records", "U1", "--limit", "1")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "TIME")
	assert.Contains(t, out, "why?")
	assert.NotContains(t, out, "buy milk")
}

func TestRecords_Empty(t *testing.T) {
	tc := newTestCLI(t, "")

	out, _, err := tc.run(context.Background(), "records", "U9")

	require.NoError(t, err)
	assert.Contains(t, out, "No records.")
}

func TestRecords_NoStore(t *testing.T) {
	tc := newTestCLI(t, "")
	require.NoError(t, os.WriteFile(tc.configPath, []byte("[store]\ndriver = \"none\"\n"), 0o600))

	_, _, err := tc.run(context.Background(), "records", "U1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no store configured")
}

func TestTicket(t *testing.T) {
	// Setup
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tc := newTestCLI(t, fmt.Sprintf("\n[sync]\nkey = %q\n\n[links]\nrecords_url = \"https://example.com/records\"\n", key))

	// Execute
	out, _, err := tc.run(context.Background(), "ticket", "U1")

	// Assert
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	ticketer, err := crypto.NewTicketer(key, 0, nil)
	require.NoError(t, err)
	userID, err := ticketer.Verify(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "U1", userID)
	assert.True(t, strings.HasPrefix(lines[1], "records: https://example.com/records?ticket="))
}

func TestChat(t *testing.T) {
	// Setup
	originalFunc := runChatFunc
	defer func() {
		runChatFunc = originalFunc
	}()

	var gotUser string
	var gotDispatch tui.Dispatcher
	runChatFunc = func(_ context.Context, dispatch tui.Dispatcher, userID string, _ io.Reader, _ io.Writer) error {
		gotUser, gotDispatch = userID, dispatch
		return nil
	}
	tc := newTestCLI(t, "")

	// Execute
	_, _, err := tc.run(context.Background(), "chat", "--user", "U7")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "U7", gotUser)
	assert.NotNil(t, gotDispatch)
}

func TestChat_DefaultUser(t *testing.T) {
	originalFunc := runChatFunc
	defer func() {
		runChatFunc = originalFunc
	}()

	var gotUser string
	runChatFunc = func(_ context.Context, _ tui.Dispatcher, userID string, _ io.Reader, _ io.Writer) error {
		gotUser = userID
		return nil
	}
	tc := newTestCLI(t, "")

	_, _, err := tc.run(context.Background(), "chat")

	require.NoError(t, err)
	assert.Equal(t, DefaultChatUser, gotUser)
}

func TestServe_StopsOnCancel(t *testing.T) {
	// Setup
	tc := newTestCLI(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(200*time.Millisecond, cancel)
	defer timer.Stop()

	// Execute
	out, _, err := tc.run(ctx, "serve", "--addr", "127.0.0.1:0")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Listening on 127.0.0.1:")
}

func TestServe_ListenError(t *testing.T) {
	tc := newTestCLI(t, "")

	_, _, err := tc.run(context.Background(), "serve", "--addr", "not-an-address")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}
