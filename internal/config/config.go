package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"locmerge/internal/locres"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the optional project file looked up in the working directory.
const ProjectFileName = "locmerge.yaml"

// Config holds every path and switch for one pipeline run. Values come from
// the environment (optionally via .env) and are then overridden by the
// project file, if one exists.
type Config struct {
	// OriginalRoot is the content tree of the shipped game.
	OriginalRoot string `yaml:"original_root"`
	// EnhancedRoot is the content tree with re-authored source text.
	EnhancedRoot string `yaml:"enhanced_root"`
	// OriginalLoc is the original-language localization snapshot.
	OriginalLoc string `yaml:"original_loc"`
	// TranslatedLoc is the translated-language localization snapshot.
	TranslatedLoc string `yaml:"translated_loc"`
	// ReservedName is skipped when matching content files.
	ReservedName string `yaml:"reserved_name"`

	WorkFile  string `yaml:"work_file"`
	OutputDir string `yaml:"output_dir"`
	ModName   string `yaml:"mod_name"`

	// SourceResource is the localization resource that gets patched.
	SourceResource string `yaml:"source_resource"`
	// ResourceRelPath locates the patched resource inside the mod tree.
	ResourceRelPath string `yaml:"resource_rel_path"`
	Codec           string `yaml:"codec"`
	ConverterExe    string `yaml:"converter_exe"`

	PakDir        string `yaml:"pak_dir"`
	PakExe        string `yaml:"pak_exe"`
	PakLauncher   string `yaml:"pak_launcher"`
	PakMountDepth int    `yaml:"pak_mount_depth"`

	HistoryFile string `yaml:"history_file"`
	DatabaseURL string `yaml:"database_url"`

	// ScanWorkers bounds concurrent table loading during the corpus scan.
	ScanWorkers int `yaml:"scan_workers"`

	LogLevel string `yaml:"log_level"`
}

// Load builds the configuration. projectFile may be empty, in which case
// ProjectFileName is used if it exists.
func Load(projectFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		OriginalRoot:    getEnv("ORIGINAL_ROOT", filepath.Join("data", "Sandfall-ori")),
		EnhancedRoot:    getEnv("ENHANCED_ROOT", filepath.Join("data", "Sandfall-enhanced")),
		OriginalLoc:     getEnv("ORIGINAL_LOC", filepath.Join("data", "Sandfall-ori", "Content", "Localization", "Game", "zh-Hans", "Game.json")),
		TranslatedLoc:   getEnv("TRANSLATED_LOC", filepath.Join("data", "Sandfall-mod", "Content", "Localization", "Game", "zh-Hans", "Game.json")),
		ReservedName:    getEnv("RESERVED_NAME", "Game.json"),
		WorkFile:        getEnv("WORK_FILE", filepath.Join("output", "localisation_work_file.json")),
		OutputDir:       getEnv("OUTPUT_DIR", "output"),
		ModName:         getEnv("MOD_NAME", "EnhancedDescriptions_zhHans-tmxk_P"),
		SourceResource:  getEnv("SOURCE_RESOURCE", filepath.Join("data", "Sandfall-ori", "Content", "Localization", "Game", "zh-Hans", "Game.locres")),
		ResourceRelPath: getEnv("RESOURCE_REL_PATH", filepath.Join("Sandfall", "Content", "Localization", "Game", "zh-Hans", "Game.locres")),
		Codec:           getEnv("LOCRES_CODEC", locres.CodecConverter),
		ConverterExe:    getEnv("LOCRES_CONVERTER", "UnrealLocres"),
		PakDir:          getEnv("UNREALPAK_DIR", "UnrealPak"),
		PakExe:          getEnv("UNREALPAK_EXE", "UnrealPak.exe"),
		PakLauncher:     getEnv("UNREALPAK_LAUNCHER", ""),
		PakMountDepth:   getEnvInt("UNREALPAK_MOUNT_DEPTH", 3),
		HistoryFile:     getEnv("HISTORY_FILE", filepath.Join("output", "review_history.jsonl")),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ScanWorkers:     getEnvInt("SCAN_WORKERS", 8),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	explicit := projectFile != ""
	if !explicit {
		projectFile = ProjectFileName
	}
	if err := cfg.applyProjectFile(projectFile, explicit); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProjectFile overlays non-zero values from a YAML project file.
// A missing default file is fine; a missing explicit file is not.
func (c *Config) applyProjectFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read project file: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.merge(&override)

	log.Debug().Str("path", path).Msg("Loaded project file")
	return nil
}

func (c *Config) merge(o *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.OriginalRoot, o.OriginalRoot)
	set(&c.EnhancedRoot, o.EnhancedRoot)
	set(&c.OriginalLoc, o.OriginalLoc)
	set(&c.TranslatedLoc, o.TranslatedLoc)
	set(&c.ReservedName, o.ReservedName)
	set(&c.WorkFile, o.WorkFile)
	set(&c.OutputDir, o.OutputDir)
	set(&c.ModName, o.ModName)
	set(&c.SourceResource, o.SourceResource)
	set(&c.ResourceRelPath, o.ResourceRelPath)
	set(&c.Codec, o.Codec)
	set(&c.ConverterExe, o.ConverterExe)
	set(&c.PakDir, o.PakDir)
	set(&c.PakExe, o.PakExe)
	set(&c.PakLauncher, o.PakLauncher)
	set(&c.HistoryFile, o.HistoryFile)
	set(&c.DatabaseURL, o.DatabaseURL)
	set(&c.LogLevel, o.LogLevel)
	if o.PakMountDepth > 0 {
		c.PakMountDepth = o.PakMountDepth
	}
	if o.ScanWorkers > 0 {
		c.ScanWorkers = o.ScanWorkers
	}
}

// Validate checks that the required paths are set and the codec is known.
func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"original_root", c.OriginalRoot},
		{"enhanced_root", c.EnhancedRoot},
		{"original_loc", c.OriginalLoc},
		{"translated_loc", c.TranslatedLoc},
		{"work_file", c.WorkFile},
		{"output_dir", c.OutputDir},
		{"mod_name", c.ModName},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("config: %s is empty", r.name)
		}
	}

	switch c.Codec {
	case locres.CodecConverter, locres.CodecJSON:
	default:
		return fmt.Errorf("config: unknown codec %q", c.Codec)
	}

	if c.PakMountDepth < 0 {
		return fmt.Errorf("config: pak_mount_depth must not be negative")
	}
	if c.ScanWorkers < 0 {
		return fmt.Errorf("config: scan_workers must not be negative")
	}
	return nil
}

// ModBase is the directory tree that gets packaged.
func (c *Config) ModBase() string {
	return filepath.Join(c.OutputDir, c.ModName)
}

// OutputResource is where the patched resource is written.
func (c *Config) OutputResource() string {
	return filepath.Join(c.ModBase(), c.ResourceRelPath)
}

// PakOutput is the archive produced by the packaging step.
func (c *Config) PakOutput() string {
	return filepath.Join(c.OutputDir, c.ModName+".pak")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
