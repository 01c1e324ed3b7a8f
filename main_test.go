package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		done <- true
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func callMain() (int, string) {
	exitCode := -1
	oldExit := exit
	defer func() { exit = oldExit }()
	exit = func(code int) {
		exitCode = code
		panic("exit")
	}

	output := captureOutput(func() {
		defer func() {
			if r := recover(); r != nil {
				if r != "exit" {
					panic(r)
				}
			}
		}()
		RealMain()
	})

	if exitCode == -1 {
		exitCode = 0
	}
	return exitCode, output
}

func TestRealMain(t *testing.T) {
	// Save original args
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	t.Setenv("BADGER_PATH", filepath.Join(t.TempDir(), "badger"))
	t.Setenv("JWT_SECRET", "")

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           []string{"postboard"},
			expectedExit:   1,
			expectedOutput: "Usage: postboard <command>",
		},
		{
			name:           "help command",
			args:           []string{"postboard", "help"},
			expectedExit:   0,
			expectedOutput: "Usage: postboard <command> [options]",
		},
		{
			name:           "version command",
			args:           []string{"postboard", "version"},
			expectedExit:   0,
			expectedOutput: "postboard version " + CliVersion,
		},
		{
			name:           "unknown command",
			args:           []string{"postboard", "unknown"},
			expectedExit:   1,
			expectedOutput: "Unknown command: unknown",
		},
		{
			name:           "db help",
			args:           []string{"postboard", "db", "help"},
			expectedExit:   0,
			expectedOutput: "Usage: postboard db <command>",
		},
		{
			name:           "db init",
			args:           []string{"postboard", "db", "init"},
			expectedExit:   0,
			expectedOutput: "Database initialized successfully",
		},
		{
			name:         "serve without secret",
			args:         []string{"postboard", "serve"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			exitCode, output := callMain()

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestPrintHelp(t *testing.T) {
	output := captureOutput(func() {
		printHelp()
	})

	// Verify help text contains all commands
	assert.Contains(t, output, "Usage: postboard")
	assert.Contains(t, output, "help")
	assert.Contains(t, output, "version")
	assert.Contains(t, output, "serve")
	assert.Contains(t, output, "db <command>")
	assert.Contains(t, output, "restore <file>")
}
