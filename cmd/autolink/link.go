// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/invowk/autolink/internal/autolink"
	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/issue"
	"github.com/invowk/autolink/internal/options"
	"github.com/invowk/autolink/internal/platform"
)

var errDuplicateModules = errors.New("duplicate native modules")

type (
	// linkFlagValues holds the flags shared by the autolinking commands.
	linkFlagValues struct {
		platform string
		exclude  []string
		json     bool
	}

	// generateFlagValues adds the generate-package-list flags.
	generateFlagValues struct {
		linkFlagValues
		target      string
		namespace   string
		watch       bool
		clearScreen bool
	}

	// resolveOutput is the JSON shape printed by resolve --json.
	resolveOutput struct {
		Modules []platform.ModuleDescriptor `json:"modules"`
	}
)

func (f *linkFlagValues) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.platform, "platform", "p", "", "target platform: ios or android (default from config)")
	cmd.Flags().StringSliceVarP(&f.exclude, "exclude", "x", nil, "package names to skip (repeatable)")
}

func (f *linkFlagValues) provided(s *session, searchPaths []string) options.Provided {
	return options.Provided{
		Platform:    s.platformOrDefault(f.platform),
		SearchPaths: searchPaths,
		Exclude:     f.exclude,
	}
}

func newSearchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &linkFlagValues{}
	cmd := &cobra.Command{
		Use:   "search [search-paths...]",
		Short: "List the native modules found in the search paths",
		Long: `List the native modules found in the search paths.

Without arguments the search paths are taken from the expo.autolinking
section of package.json, or default to the node_modules directories next
to every enclosing package.json.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), app, rootFlags, flags, args)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.json, "json", false, "print results as JSON")
	return cmd
}

func newVerifyCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &linkFlagValues{}
	cmd := &cobra.Command{
		Use:   "verify [search-paths...]",
		Short: "Report native modules installed at more than one location",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), app, rootFlags, flags, args)
		},
	}
	flags.register(cmd)
	return cmd
}

func newResolveCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &linkFlagValues{}
	cmd := &cobra.Command{
		Use:   "resolve [search-paths...]",
		Short: "Resolve the native modules for a platform",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), app, rootFlags, flags, args)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.json, "json", false, "print module descriptors as JSON")
	return cmd
}

func newGeneratePackageListCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &generateFlagValues{}
	cmd := &cobra.Command{
		Use:   "generate-package-list [search-paths...]",
		Short: "Generate the platform package list",
		Long: `Generate the platform package list.

On iOS the list is a Swift provider file; on Android it is a Java
package list class in the --namespace package. With --watch the list is
regenerated whenever a module config or package.json in the search
paths changes.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), rootFlags)
			if err != nil {
				return app.fail(nil, err)
			}
			if flags.watch {
				return runWatchMode(cmd.Context(), app, s, flags, args)
			}
			return runGenerate(cmd.Context(), app, s, flags, args)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "path of the generated file")
	cmd.Flags().StringVarP(&flags.namespace, "namespace", "n", "", "Java package of the generated Android class")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "regenerate on module changes")
	cmd.Flags().BoolVar(&flags.clearScreen, "clear-screen", false, "clear the terminal before each regeneration in watch mode")
	return cmd
}

func (f *generateFlagValues) provided(s *session, searchPaths []string) options.Provided {
	p := f.linkFlagValues.provided(s, searchPaths)
	p.Target = f.target
	p.Namespace = f.namespace
	return p
}

// findModules merges options and runs discovery, rendering discovery
// diagnostics as it goes.
func (a *App) findModules(ctx context.Context, s *session, provided options.Provided) (options.GenerateOptions, *discovery.SearchResults, error) {
	opts, err := s.engine.MergeLinkingOptions(ctx, provided, s.cwd)
	if err != nil {
		return opts, nil, err
	}
	results, diags, err := s.engine.FindModules(ctx, opts.SearchOptions)
	if err != nil {
		return opts, nil, err
	}
	a.Diagnostics.Render(ctx, diags, a.stderr)
	return opts, results, nil
}

func runSearch(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *linkFlagValues, args []string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(nil, err)
	}

	_, results, err := app.findModules(ctx, s, flags.provided(s, args))
	if err != nil {
		return app.fail(s, err)
	}

	if flags.json {
		return writeJSON(app.stdout, results)
	}
	renderSearchResults(app.stdout, results)
	return nil
}

func runVerify(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *linkFlagValues, args []string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(nil, err)
	}

	_, results, err := app.findModules(ctx, s, flags.provided(s, args))
	if err != nil {
		return app.fail(s, err)
	}

	count, diags := s.engine.VerifySearchResults(results)
	renderVerifyReport(app.stdout, results, count)
	if s.verbose {
		if count > 0 {
			renderServiceError(app.stderr, newServiceError(errDuplicateModules, issue.DuplicateModulesId, ""), string(s.cfg.UI.ColorScheme))
		}
		var other []discovery.Diagnostic
		for _, d := range diags {
			if d.Code != discovery.CodeDuplicateModule {
				other = append(other, d)
			}
		}
		app.Diagnostics.Render(ctx, other, app.stderr)
	}
	return nil
}

func runResolve(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *linkFlagValues, args []string) error {
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(nil, err)
	}

	opts, results, err := app.findModules(ctx, s, flags.provided(s, args))
	if err != nil {
		return app.fail(s, err)
	}

	descriptors, diags, err := s.engine.ResolveModules(ctx, results, opts.ResolveOptions)
	if err != nil {
		return app.fail(s, err)
	}
	app.Diagnostics.Render(ctx, diags, app.stderr)

	if flags.json {
		if descriptors == nil {
			descriptors = []platform.ModuleDescriptor{}
		}
		return writeJSON(app.stdout, resolveOutput{Modules: descriptors})
	}
	renderDescriptors(app.stdout, descriptors)
	return nil
}

func runGenerate(ctx context.Context, app *App, s *session, flags *generateFlagValues, args []string) error {
	res, err := s.engine.Link(ctx, flags.provided(s, args), s.cwd)
	if err != nil {
		return app.fail(s, err)
	}
	app.Diagnostics.Render(ctx, res.Diagnostics, app.stderr)
	renderLinkResult(app.stdout, res)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func renderSearchResults(w io.Writer, results *discovery.SearchResults) {
	if results.Len() == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No native modules found."))
		return
	}

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Found %d native module(s):", results.Len())))
	for _, name := range results.Names() {
		primary, _ := results.Get(name)
		fmt.Fprintf(w, "  %s %s\n", packageStyle.Render(string(name)), CmdStyle.Render(primary.Version))
		fmt.Fprintf(w, "    %s\n", pathStyle.Render(primary.Path))
		for _, dup := range primary.Duplicates {
			fmt.Fprintf(w, "    %s %s %s\n", WarningStyle.Render("duplicate:"), pathStyle.Render(dup.Path), CmdStyle.Render(dup.Version))
		}
	}
}

func renderVerifyReport(w io.Writer, results *discovery.SearchResults, count int) {
	if count == 0 {
		fmt.Fprintf(w, "%s No duplicate native modules found.\n", SuccessStyle.Render("✓"))
		return
	}

	fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("Found %d package(s) installed at more than one location:", count)))
	for _, name := range results.Names() {
		primary, _ := results.Get(name)
		if !primary.HasDuplicates() {
			continue
		}
		body := packageStyle.Render(string(name)) + "\n" +
			fmt.Sprintf("%s %s %s", SuccessStyle.Render("used"), pathStyle.Render(primary.Path), CmdStyle.Render(primary.Version))
		for _, dup := range primary.Duplicates {
			body += "\n" + fmt.Sprintf("%s %s %s", VerboseStyle.Render("also"), pathStyle.Render(dup.Path), CmdStyle.Render(dup.Version))
		}
		fmt.Fprintln(w, duplicateCardStyle.Render(body))
	}
	fmt.Fprintln(w, SubtitleStyle.Render("Only the first revision is linked. Deduplicate your dependencies to avoid version mismatches."))
}

func renderDescriptors(w io.Writer, descriptors []platform.ModuleDescriptor) {
	if len(descriptors) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No modules to link."))
		return
	}

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Resolved %d module(s):", len(descriptors))))
	for _, d := range descriptors {
		fmt.Fprintf(w, "  %s %s\n", packageStyle.Render(string(d.PackageName())), CmdStyle.Render(d.PackageVersion()))
	}
}

func renderLinkResult(w io.Writer, res autolink.LinkResult) {
	if res.Generated.Target == "" {
		fmt.Fprintf(w, "%s Nothing generated for %s.\n", WarningStyle.Render("!"), res.Options.Platform)
		return
	}
	fmt.Fprintf(w, "%s Linked %d module(s) into %s\n",
		SuccessStyle.Render("✓"), res.Generated.Modules, pathStyle.Render(res.Generated.Target))
	if res.Duplicates > 0 {
		fmt.Fprintf(w, "%s %d package(s) are installed more than once; run %s for details.\n",
			WarningStyle.Render("!"), res.Duplicates, CmdStyle.Render("autolink verify"))
	}
}
