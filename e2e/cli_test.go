package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/petbattle/internal/api"
	"github.com/mcoot/petbattle/internal/collaborators/httpclient"
	"github.com/mcoot/petbattle/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	t          *testing.T
	binaryPath string
	serverURL  string
	tokenDir   string

	// claimed records the actors runAs has claimed an address for
	claimed map[string]bool
}

const testSecret = "e2e-secret"

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "petbattle-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/petbattle")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		t:          t,
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenDir:   t.TempDir(),
		claimed:    make(map[string]bool),
	}
}

// run runs the CLI with the shared default token file
func (r *cliRunner) run(args ...string) (string, error) {
	return r.runWithTokenFile(filepath.Join(r.tokenDir, "token"), args...)
}

func (r *cliRunner) runWithTokenFile(tokenFile string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "PETBATTLE_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runAs runs the CLI with a session for actor, claiming the address first
// if this runner has not yet
func (r *cliRunner) runAs(actor string, args ...string) (string, error) {
	tokenFile := filepath.Join(r.tokenDir, actor+".token")
	if !r.claimed[actor] {
		output, err := r.runWithTokenFile(tokenFile, "account", "claim", actor, "--secret", testSecret)
		require.NoError(r.t, err, "claim %s: %s", actor, output)
		r.claimed[actor] = true
	}
	return r.runWithTokenFile(tokenFile, args...)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	// Collaborators are served by the same server's dev network
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{
		ProgramID:  "battle",
		StoreID:    "store",
		Logger:     logger,
		Directory:  httpclient.Directory{BaseURL: serverURL + "/devnet/actors"},
		Devnet:     true,
		RandomSeed: "e2e",
		AuthConfig: factory.TestAuthConfig(),
	})
	require.NoError(t, err)
	require.NoError(t, app.Start(context.Background()))

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.Auth,
		Dispatcher:  app.Dispatcher,
		Storage:     app.Storage,
		Devnet:      app.Devnet,
	})

	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.ShutdownTimeout = 5 * time.Second
	server := api.NewServer(router, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	// Wait for server to be ready
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			cancel()
			if err := <-done; err != nil {
				t.Logf("server error: %v", err)
			}
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type playerResponse struct {
	Owner    string `json:"owner"`
	EntityID string `json:"entity_id"`
	Energy   uint16 `json:"energy"`
	Power    uint16 `json:"power"`
	Facing   string `json:"facing"`
}

type battleResponse struct {
	ProgramID   string           `json:"program_id"`
	State       string           `json:"state"`
	Players     []playerResponse `json:"players"`
	CurrentTurn int              `json:"current_turn"`
	Steps       int              `json:"steps"`
}

type eventResponse struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id"`
}

type notificationsResponse struct {
	Actor         string `json:"actor"`
	Notifications []struct {
		Sender string `json:"sender"`
		Kind   string `json:"kind"`
	} `json:"notifications"`
}

type healthResponse struct {
	Status    string `json:"status"`
	ProgramID string `json:"program_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	Actor        string `json:"actor"`
	SessionToken string `json:"session_token"`
}

func parse[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// setupPets creates two entities on the dev network and registers them
func setupPets(t *testing.T, cli *cliRunner) {
	t.Helper()

	output, err := cli.run("devnet", "entity", "pet-1", "--owner", "alice", "--attr", "1")
	require.NoError(t, err, "output: %s", output)
	output, err = cli.run("devnet", "entity", "pet-2", "--owner", "bob")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.runAs("alice", "register", "pet-1")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "registered", parse[eventResponse](t, output).Kind)

	output, err = cli.runAs("bob", "register", "pet-2")
	require.NoError(t, err, "output: %s", output)
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := parse[healthResponse](t, output)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "battle", resp.ProgramID)

	output, err = cli.run("health", "--wait", "2s")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "ok", parse[healthResponse](t, output).Status)
}

func TestCLI_HealthWaitGivesUp(t *testing.T) {
	// Nothing listens on the reserved discard port
	cli := newCLIRunner(t, "http://127.0.0.1:9")

	output, err := cli.run("health", "--wait", "500ms")
	assert.Error(t, err)
	assert.Contains(t, output, "server not healthy after 500ms")
}

func TestCLI_DevnetCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("devnet", "entity", "pet-1", "--owner", "alice", "--attr", "2", "--attr", "3")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("devnet", "owner", "pet-1")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, `"owner": "alice"`)

	output, err = cli.run("devnet", "attributes", "store", "pet-1")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, `"attributes"`)
}

func TestCLI_BattleFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	setupPets(t, cli)

	output, err := cli.run("state")
	require.NoError(t, err, "output: %s", output)
	battle := parse[battleResponse](t, output)
	require.Equal(t, "moves", battle.State)
	require.Len(t, battle.Players, 2)
	assert.Equal(t, "alice", battle.Players[0].Owner)
	assert.Equal(t, "bob", battle.Players[1].Owner)

	// The seeded draw decides who opens; whoever it is makes a move
	mover := battle.Players[battle.CurrentTurn].Owner
	output, err = cli.runAs(mover, "move", "left", "defend")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "move_made", parse[eventResponse](t, output).Kind)

	output, err = cli.run("notifications", mover)
	require.NoError(t, err, "output: %s", output)
	notes := parse[notificationsResponse](t, output)
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, "successfully_defended", notes.Notifications[0].Kind)
	assert.Equal(t, "battle", notes.Notifications[0].Sender)

	output, err = cli.run("state")
	require.NoError(t, err)
	assert.Equal(t, 1, parse[battleResponse](t, output).Steps)
}

func TestCLI_AccountSession(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("account", "claim", "alice", "--secret", testSecret)
	require.NoError(t, err, "output: %s", output)
	claimed := parse[sessionResponse](t, output)
	assert.Equal(t, "alice", claimed.Actor)
	assert.NotEmpty(t, claimed.SessionToken)

	output, err = cli.run("devnet", "entity", "pet-1", "--owner", "alice")
	require.NoError(t, err, "output: %s", output)

	// The saved session is used
	output, err = cli.run("register", "pet-1")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "pet-1", parse[eventResponse](t, output).EntityID)

	output, err = cli.run("notifications")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "alice", parse[notificationsResponse](t, output).Actor)

	output, err = cli.run("account", "logout")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Logged out", parse[messageResponse](t, output).Message)

	output, err = cli.run("account", "whoami")
	assert.Error(t, err)
	assert.Contains(t, output, "not logged in")

	output, err = cli.run("account", "login", "alice", "--secret", "wrong-secret")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")

	output, err = cli.run("account", "login", "alice", "--secret", testSecret)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("account", "whoami")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "alice", parse[sessionResponse](t, output).Actor)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Battle requests need a session
	output, err := cli.run("reset")
	assert.Error(t, err)
	assert.Contains(t, output, "not logged in")

	// A made-up token is refused by the server
	output, err = cli.run("--token", "sess_made-up", "reset")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_SESSION")

	// Wrong state
	output, err = cli.runAs("alice", "reset")
	assert.Error(t, err)
	assert.Contains(t, output, "WRONG_STATE")

	// Only the program refreshes info
	output, err = cli.runAs("alice", "update-info")
	assert.Error(t, err)
	assert.Contains(t, output, "NOT_SELF")

	// The program's own address cannot be claimed
	output, err = cli.run("account", "claim", "battle", "--secret", testSecret)
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	// Entities unknown to the dev network cannot register
	output, err = cli.runAs("alice", "register", "ghost")
	assert.Error(t, err)
	assert.Contains(t, output, "COLLABORATOR_UNAVAILABLE")
}
