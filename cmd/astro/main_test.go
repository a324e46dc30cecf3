package main

import (
	"os"
	"testing"
)

func Test_ColorEnabled(t *testing.T) {
	t.Setenv("ASTRO_COLOR", "1")
	t.Setenv("NO_COLOR", "1")
	if !colorEnabled() {
		t.Error("ASTRO_COLOR=1 must enable color even under NO_COLOR")
	}

	t.Setenv("ASTRO_COLOR", "0")
	os.Unsetenv("NO_COLOR")
	if colorEnabled() {
		t.Error("ASTRO_COLOR=0 must disable color")
	}

	os.Unsetenv("ASTRO_COLOR")
	t.Setenv("NO_COLOR", "1")
	if colorEnabled() {
		t.Error("NO_COLOR must disable color when ASTRO_COLOR is unset")
	}

	os.Unsetenv("ASTRO_COLOR")
	os.Unsetenv("NO_COLOR")
	if !colorEnabled() {
		t.Error("color should default on with neither variable set")
	}
}
