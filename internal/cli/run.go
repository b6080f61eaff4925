package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"locmerge/internal/config"
	"locmerge/internal/diff"
	"locmerge/internal/history"
	"locmerge/internal/locres"
	"locmerge/internal/pak"
	"locmerge/internal/patch"
	"locmerge/internal/review"
	"locmerge/internal/stringtable"
	"locmerge/internal/textutil"
	"locmerge/internal/workfile"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// runDiff handles the `diff` command.
func runDiff(ctx context.Context, cfg *config.Config, keepExisting bool) error {
	changes, err := collect(ctx, cfg)
	if err != nil {
		return err
	}

	original, err := locres.LoadSnapshot(cfg.OriginalLoc)
	if err != nil {
		return err
	}
	translated, err := locres.LoadSnapshot(cfg.TranslatedLoc)
	if err != nil {
		return err
	}

	wf := workfile.Enrich(changes, original, translated)

	if err := checkExisting(cfg.WorkFile, changes, keepExisting); err != nil {
		return err
	}
	if err := workfile.Save(cfg.WorkFile, wf); err != nil {
		return err
	}

	log.Info().
		Int("entries", len(wf)).
		Str("path", cfg.WorkFile).
		Msg("Found entries for localisation")
	return nil
}

func collect(ctx context.Context, cfg *config.Config) (map[string]stringtable.Change, error) {
	scanner := diff.NewScanner(cfg.OriginalRoot, cfg.EnhancedRoot, cfg.ReservedName)
	if cfg.ScanWorkers > 0 {
		scanner.Workers = cfg.ScanWorkers
	}
	changes, _, err := scanner.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect differences: %w", err)
	}
	return changes, nil
}

// checkExisting warns about reviewed work that regenerating would discard.
func checkExisting(path string, changes map[string]stringtable.Change, keepExisting bool) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if keepExisting {
		return fmt.Errorf("work file %s already exists", path)
	}

	existing, err := workfile.Load(path)
	if err != nil {
		log.Warn().Err(err).Msg("Existing work file is unreadable, overwriting")
		return nil
	}

	report := workfile.Compare(existing, changes)
	if len(report.Edited) > 0 {
		log.Warn().
			Int("edited", len(report.Edited)).
			Str("path", path).
			Msg("Overwriting work file with reviewed translations")
	}
	return nil
}

// runStatus handles the `status` command.
func runStatus(ctx context.Context, cfg *config.Config, out io.Writer) error {
	wf, err := workfile.Load(cfg.WorkFile)
	if err != nil {
		return err
	}

	changes, err := collect(ctx, cfg)
	if err != nil {
		return err
	}

	report := workfile.Compare(wf, changes)

	fmt.Fprintf(out, "Work file:  %s (%d entries)\n", cfg.WorkFile, len(wf))
	fmt.Fprintf(out, "Reviewed:   %d\n", len(report.Edited))

	printIDs := func(label string, c *color.Color, ids []string) {
		fmt.Fprintf(out, "%s %d\n", c.Sprintf("%-11s", label+":"), len(ids))
		for _, id := range ids {
			fmt.Fprintf(out, "  %s\n", id)
		}
	}
	printIDs("Added", color.New(color.FgGreen), report.Added)
	printIDs("Removed", color.New(color.FgRed), report.Removed)
	printIDs("Changed", color.New(color.FgYellow), report.Changed)

	if report.Stale() {
		fmt.Fprintln(out, color.YellowString("Work file is stale; regenerating it discards reviewed translations."))
	} else {
		fmt.Fprintln(out, color.GreenString("Work file is up to date."))
	}
	return nil
}

type replaceOptions struct {
	Search      string
	Replacement string
	AutoApprove bool
	In          io.Reader
	Out         io.Writer
}

// runReplace handles the `replace` command.
func runReplace(ctx context.Context, cfg *config.Config, opts replaceOptions) error {
	log.Info().Str("old", opts.Search).Str("new", opts.Replacement).Msg("Replacing")

	wf, err := workfile.Load(cfg.WorkFile)
	if err != nil {
		return err
	}

	console := review.NewConsole(opts.In, opts.Out, opts.Search, opts.Replacement)
	var approver review.Approver = console
	if opts.AutoApprove {
		approver = review.AutoApprover{}
	}

	outcome, err := review.Replace(wf, opts.Search, opts.Replacement, approver)
	if err != nil {
		return err
	}
	if len(outcome.Records) == 0 {
		fmt.Fprintln(opts.Out, color.GreenString("No changes to be made"))
		return nil
	}

	if !opts.AutoApprove {
		show, err := console.Confirm("Show overview?")
		if err != nil {
			return err
		}
		if show {
			console.Overview(outcome.Records)
		}

		save, err := console.Confirm("Continue to save?")
		if err != nil {
			return err
		}
		if !save {
			fmt.Fprintln(opts.Out, color.RedString("Aborted"))
			return nil
		}
	}

	changed := outcome.Apply(wf)
	if err := workfile.Save(cfg.WorkFile, wf); err != nil {
		return err
	}
	log.Info().
		Int("proposed", len(outcome.Records)).
		Int("changed", changed).
		Msg("Replacements saved")

	for _, r := range outcome.Records {
		log.Debug().
			Str("id", r.ID).
			Str("decision", string(r.Decision)).
			Str("after", textutil.Truncate(r.After, 40)).
			Msg("Review decision")
	}

	store, err := history.Open(ctx, cfg.DatabaseURL, cfg.HistoryFile)
	if err != nil {
		log.Warn().Err(err).Msg("Review history unavailable, decisions not recorded")
		return nil
	}
	defer store.Close()

	if err := store.Append(ctx, history.Entries(cfg.WorkFile, outcome.Records, time.Now())); err != nil {
		log.Warn().Err(err).Msg("Failed to record review decisions")
	}
	return nil
}

// runPatch handles the `patch` command.
func runPatch(ctx context.Context, cfg *config.Config, skipPak bool) error {
	codec, err := locres.NewCodec(cfg.Codec, cfg.ConverterExe)
	if err != nil {
		return err
	}

	res, err := codec.Read(ctx, cfg.SourceResource)
	if err != nil {
		return fmt.Errorf("read resource %s: %w", cfg.SourceResource, err)
	}

	wf, err := workfile.Load(cfg.WorkFile)
	if err != nil {
		return err
	}

	result := patch.Apply(wf, res)

	out := cfg.OutputResource()
	if err := codec.Write(ctx, res, out); err != nil {
		return fmt.Errorf("write resource %s: %w", out, err)
	}
	log.Info().
		Int("replaced", result.Replaced).
		Int("skipped", result.Skipped).
		Int("placeholder_drift", len(result.PlaceholderDrift)).
		Str("path", out).
		Msg("Replaced values")

	if skipPak {
		return nil
	}

	packager := &pak.Packager{
		Dir:        cfg.PakDir,
		Exe:        cfg.PakExe,
		Launcher:   cfg.PakLauncher,
		MountDepth: cfg.PakMountDepth,
	}
	if err := packager.Build(ctx, cfg.ModBase(), cfg.PakOutput()); err != nil {
		return fmt.Errorf("package mod: %w", err)
	}
	return nil
}
