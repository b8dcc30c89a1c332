package desktop

import "testing"

func TestEnvironmentFromVars(t *testing.T) {
	tests := []struct {
		name     string
		desktop  string
		session  string
		expected Environment
	}{
		{"gnome via xdg", "ubuntu:GNOME", "", GNOME},
		{"kde via xdg", "KDE", "", KDE},
		{"xfce via xdg", "XFCE", "", XFCE},
		{"cinnamon via xdg", "X-Cinnamon", "", Cinnamon},
		{"mate via xdg", "MATE", "", MATE},
		{"lxde via xdg", "LXDE", "", LXDE},
		{"xdg wins over session", "KDE", "gnome", KDE},
		{"gnome via session", "", "gnome-xorg", GNOME},
		{"i3 via session only", "", "i3", I3},
		{"cinnamon via session", "", "cinnamon", Cinnamon},
		{"nothing set", "", "", Unknown},
		{"unrecognized values", "Sway", "sway", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := environmentFromVars(tt.desktop, tt.session); got != tt.expected {
				t.Fatalf("environmentFromVars(%q, %q) = %v, want %v", tt.desktop, tt.session, got, tt.expected)
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	if GNOME.String() != "gnome" {
		t.Fatalf("expected gnome, got %q", GNOME.String())
	}
	if Environment(99).String() != "unknown" {
		t.Fatalf("expected unknown for out-of-range value, got %q", Environment(99).String())
	}
}
