package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to pdfeditor! Let's configure your server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Listen address.
	addrPrompt := promptui.Prompt{
		Label:   "Listen address",
		Default: cfg.Addr,
	}
	addr, err := addrPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}
	cfg.Addr = addr

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (uploads, work folders, database)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 3. Upload limit.
	limitPrompt := promptui.Prompt{
		Label:   "Maximum upload size (MB)",
		Default: strconv.Itoa(cfg.MaxUploadMB),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("enter a positive number")
			}
			return nil
		},
	}
	limit, err := limitPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("upload limit: %w", err)
	}
	cfg.MaxUploadMB, _ = strconv.Atoi(limit)

	// 4. Library storage.
	storagePrompt := promptui.Select{
		Label: "Where should saved files go?",
		Items: []string{
			"local - a directory on this machine",
			"s3    - an S3 compatible bucket",
		},
	}
	storageIdx, _, err := storagePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("storage selection: %w", err)
	}
	if storageIdx == 1 {
		cfg.Storage.Backend = StorageS3
		cfg.Storage.Dir = ""
		if err := promptS3(&cfg.Storage); err != nil {
			return nil, err
		}
	}

	// 5. Log format.
	formatPrompt := promptui.Select{
		Label: "Log format",
		Items: []string{"text", "json"},
	}
	_, format, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}
	cfg.Log.Format = format

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func promptS3(sc *StorageConfig) error {
	fields := []struct {
		label    string
		dst      *string
		required bool
	}{
		{"Bucket", &sc.Bucket, true},
		{"Region (blank for the SDK default)", &sc.Region, false},
		{"Endpoint (blank for AWS)", &sc.Endpoint, false},
		{"Key prefix", &sc.Prefix, false},
	}
	for _, f := range fields {
		p := promptui.Prompt{Label: f.label}
		if f.required {
			p.Validate = func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("required")
				}
				return nil
			}
		}
		v, err := p.Run()
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(f.label), err)
		}
		*f.dst = strings.TrimSpace(v)
	}
	return nil
}

// SplitAndTrim splits a comma-separated string and trims whitespace,
// dropping empty entries.
func SplitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
