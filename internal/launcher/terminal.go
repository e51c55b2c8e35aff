package launcher

import (
	"fmt"
	"strings"
)

const closePrompt = `read -p "Press Enter to close..."`

// Terminal is one way of opening a new terminal window running a command.
type Terminal struct {
	Name    string
	Program string
	Args    func(command string) []string
}

// Terminals returns the strategies for goos in the order they are tried.
func Terminals(goos string) []Terminal {
	switch goos {
	case "windows":
		return []Terminal{{
			Name:    "cmd",
			Program: "cmd",
			Args: func(c string) []string {
				return []string{"/C", "start", "cmd", "/K", c}
			},
		}}
	case "darwin":
		return []Terminal{{
			Name:    "Terminal.app",
			Program: "osascript",
			Args: func(c string) []string {
				return []string{"-e", fmt.Sprintf(`tell application "Terminal" to do script "%s"`, appleScriptEscape(c))}
			},
		}}
	case "linux", "freebsd", "openbsd", "netbsd":
		var out []Terminal
		for _, name := range []string{"xterm", "gnome-terminal", "konsole", "xfce4-terminal"} {
			out = append(out, linuxTerminal(name))
		}
		return out
	default:
		return nil
	}
}

func linuxTerminal(name string) Terminal {
	t := Terminal{Name: name, Program: name}
	if name == "gnome-terminal" {
		t.Args = func(c string) []string {
			return []string{"--", "bash", "-c", c + ";" + closePrompt}
		}
		return t
	}
	t.Args = func(c string) []string {
		return []string{"-e", fmt.Sprintf("bash -c '%s;%s'", c, closePrompt)}
	}
	return t
}

func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
