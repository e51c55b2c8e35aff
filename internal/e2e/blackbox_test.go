package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"querygguf/pkg/types"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

type cliEnv struct {
	bin  string
	home string
	root string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	home := t.TempDir()
	return cliEnv{bin: buildBinary(t), home: home, root: filepath.Join(home, "qg")}
}

func (e cliEnv) command(args ...string) *exec.Cmd {
	cmd := exec.Command(e.bin, args...)
	cmd.Env = append(os.Environ(), "HOME="+e.home, "QUERYGGUF_ROOT="+e.root, "QUERYGGUF_LOG_LEVEL=warn")
	cmd.Stdin = strings.NewReader("")
	return cmd
}

func (e cliEnv) run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := e.command(args...)
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	if ee, ok := err.(*exec.ExitError); ok {
		return out.String(), errOut.String(), ee.ExitCode()
	}
	if err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	return out.String(), errOut.String(), 0
}

// setup imports a settings file and appends one mode by hand.
func (e cliEnv) setup(t *testing.T) {
	t.Helper()
	modelsDir, _ := createTempModelsDir(t, "alpha.gguf")
	src := filepath.Join(e.home, "settings.json")
	body := fmt.Sprintf(`{"llama_cli_path":"/opt/llama/llama-cli","gguf_model_directories":[%q]}`, modelsDir)
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if _, stderr, code := e.run(t, "setup", "--from", src); code != 0 {
		t.Fatalf("setup exit %d: %s", code, stderr)
	}
	f, err := os.OpenFile(filepath.Join(e.root, "query_gguf_config.toml"), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	defer f.Close()
	fmt.Fprintf(f, "mode_1 = \"%s|temp=0.7|Alpha|test mode\"\ndefault_mode = 1\n", filepath.Join(modelsDir, "alpha.gguf"))
}

func TestBlackbox_SetupListShow(t *testing.T) {
	e := newCLIEnv(t)
	e.setup(t)

	out, stderr, code := e.run(t, "list", "--json")
	if code != 0 {
		t.Fatalf("list exit %d: %s", code, stderr)
	}
	var resp types.ModesResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("list json: %v out=%s", err, out)
	}
	if len(resp.Modes) != 1 || resp.Modes[0].Name != "Alpha" || !resp.Modes[0].Default {
		t.Fatalf("unexpected modes: %+v", resp.Modes)
	}
	if !strings.HasSuffix(resp.Modes[0].PromptPath, filepath.Join("prompts", "blankprompt.txt")) {
		t.Fatalf("blank prompt not used: %s", resp.Modes[0].PromptPath)
	}

	out, _, code = e.run(t, "show", "1")
	if code != 0 || !strings.Contains(out, "--temp 0.7") {
		t.Fatalf("show exit %d out=%s", code, out)
	}

	out, _, _ = e.run(t, "config", "path")
	if strings.TrimSpace(out) != filepath.Join(e.root, "query_gguf_config.toml") {
		t.Fatalf("config path=%q", out)
	}
}

func TestBlackbox_UnknownModeExit1(t *testing.T) {
	e := newCLIEnv(t)
	e.setup(t)
	_, stderr, code := e.run(t, "5")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "Error: mode not found: 5") {
		t.Fatalf("stderr=%q", stderr)
	}
}

func TestBlackbox_Serve(t *testing.T) {
	e := newCLIEnv(t)
	e.setup(t)
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := e.command("serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill(); _ = cmd.Wait() })

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}

	resp, body := httpGet(t, base+"/modes/1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/modes/1 %d %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var v types.ModeView
	if err := json.Unmarshal(body, &v); err != nil || v.Name != "Alpha" {
		t.Fatalf("mode json: %v body=%s", err, string(body))
	}
}
