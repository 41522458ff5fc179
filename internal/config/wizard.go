package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// detectSiteDir looks for a conventional static site directory in the
// current directory, for the watch prompt's default.
func detectSiteDir() string {
	for _, dir := range []string{"site", "public", "www", "dist"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to vibestudio! Let's configure your studio.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (pages, published snapshots, history)",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Public base URL.
	basePrompt := promptui.Prompt{
		Label:   "Public base URL for published links (blank = request host)",
		Default: "",
	}
	if cfg.Server.BaseURL, err = basePrompt.Run(); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	// 4. Document patterns.
	patternPrompt := promptui.Prompt{
		Label:   "Document patterns (comma-separated globs)",
		Default: strings.Join(cfg.Documents.Patterns, ","),
	}
	patternStr, err := patternPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("document patterns: %w", err)
	}
	if patterns := splitAndTrim(patternStr); len(patterns) > 0 {
		cfg.Documents.Patterns = patterns
	}

	// 5. Watch directory.
	watchPrompt := promptui.Prompt{
		Label:   "Project directory to watch (blank to disable)",
		Default: detectSiteDir(),
	}
	if cfg.Watch.Dir, err = watchPrompt.Run(); err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}

	// 6. Log level.
	levels := []string{"info", "debug", "warn", "error"}
	levelPrompt := promptui.Select{
		Label: "Log level",
		Items: levels,
	}
	idx, _, err := levelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Log.Level = levels[idx]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
