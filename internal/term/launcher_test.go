package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]Terminal{
		"tmux":      Tmux,
		"Terminal":  AppleTerminal,
		"iTerm":     ITerm2,
		"iterm2":    ITerm2,
		"code":      VSCode,
		"gnome":     GnomeTerminal,
		"konsole":   Konsole,
		"kitty":     Kitty,
		"alacritty": Alacritty,
	}
	for input, want := range cases {
		got, ok := Parse(input)
		assert.True(t, ok, "Parse(%q)", input)
		assert.Equal(t, want, got)
	}

	_, ok := Parse("xterm-nonsense")
	assert.False(t, ok)
}

func TestDetect_InsideTmux(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1234,0")

	terminal, ok := Detect()
	assert.True(t, ok)
	assert.Equal(t, Tmux, terminal)
}

func TestSessionName(t *testing.T) {
	assert.Equal(t, "demo-swift-falcon", SessionName("demo", "swift-falcon"))
}

func TestManualCommand_QuotesPath(t *testing.T) {
	assert.Equal(t, "cd '/tmp/my project'", ManualCommand("/tmp/my project"))
}
