package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/alnah/go-mdman/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Formatter formatterInfo `json:"formatter"`
	Env       envInfo       `json:"environment"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// formatterInfo holds troff formatter detection results.
// A formatter is not required to generate pages, only to preview them.
type formatterInfo struct {
	Found   bool   `json:"found"`
	Name    string `json:"name,omitempty"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS              string `json:"os"`
	Arch            string `json:"arch"`
	SourceDateEpoch string `json:"source_date_epoch,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkFormatter(result)
	checkEnvironment(result, env)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// formatterCandidates are probed in preference order.
var formatterCandidates = []string{"groff", "nroff", "mandoc"}

// checkFormatter detects an installed troff formatter.
func checkFormatter(result *doctorResult) {
	for _, name := range formatterCandidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		result.Formatter.Found = true
		result.Formatter.Name = name
		result.Formatter.Path = path

		// Version probing is best-effort; mandoc has no version flag.
		out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path from LookPath
		if err == nil {
			if line, _, _ := strings.Cut(string(out), "\n"); line != "" {
				result.Formatter.Version = strings.TrimSpace(line)
			}
		}
		return
	}

	result.Warnings = append(result.Warnings,
		"no troff formatter found"+hints.ForNoFormatter())
}

// checkEnvironment inspects variables that change conversion output.
func checkEnvironment(result *doctorResult, env *Environment) {
	if v, ok := env.LookupEnv("SOURCE_DATE_EPOCH"); ok {
		result.Env.SourceDateEpoch = v
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("SOURCE_DATE_EPOCH is set but not a unix timestamp: %q", v))
		}
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	// Check temp directory is writable
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mdman-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdman doctor")
	fmt.Fprintln(w)

	// Formatter section
	fmt.Fprintln(w, "Troff formatter")
	if r.Formatter.Found {
		fmt.Fprintf(w, "  [OK] Found %s at %s\n", r.Formatter.Name, r.Formatter.Path)
		if r.Formatter.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Formatter.Version)
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.SourceDateEpoch != "" {
		fmt.Fprintf(w, "  [OK] SOURCE_DATE_EPOCH: %s\n", r.Env.SourceDateEpoch)
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
