// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	ManifestParseErrorId Id = iota + 1
	ModuleConfigParseErrorId
	UnsupportedPlatformId
	ModuleResolveFailedId
	GenerateFailedId
	ConfigLoadFailedId
	DuplicateModulesId
	PermissionDeniedId
)

type (
	// Id identifies a catalog issue.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// Issue is a catalog entry with longer, rendered guidance.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue for a terminal using the glamour style at
// stylePath ("dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse package.json!

A package.json could not be read as JSON, or its ` + "`expo.autolinking`" + ` section
has the wrong shape.

## Things you can try:
- Validate the file with a JSON linter
- Make sure ` + "`searchPaths`" + ` and ` + "`exclude`" + ` are lists of strings
- Make sure ` + "`flags`" + ` and the per-platform sections are objects

## Example:
~~~json
{
  "expo": {
    "autolinking": {
      "exclude": ["expo-camera"],
      "ios": { "flags": { "inhibit_warnings": true } }
    }
  }
}
~~~`,
	}

	moduleConfigParseErrorIssue = &Issue{
		id: ModuleConfigParseErrorId,
		mdMsg: `
# Failed to parse a module config!

A package declares a native module with ` + "`expo-module.config.json`" + ` (or the
legacy ` + "`unimodule.json`" + `) but the file is not valid.

## Things you can try:
- Reinstall the package; the file ships with it
- Check that ` + "`platforms`" + ` is a list of platform names:
~~~json
{ "platforms": ["ios", "android"] }
~~~`,
	}

	unsupportedPlatformIssue = &Issue{
		id: UnsupportedPlatformId,
		mdMsg: `
# Platform not supported!

There is no resolver registered for the requested platform.

## Things you can try:
- Use one of the supported platforms:
~~~
$ autolink resolve --platform ios
$ autolink resolve --platform android
~~~
- Set ` + "`default_platform`" + ` in your autolink config`,
	}

	moduleResolveFailedIssue = &Issue{
		id: ModuleResolveFailedId,
		mdMsg: `
# Failed to resolve a module!

The platform resolver could not inspect one of the discovered packages.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see which package failed
- Reinstall the failing package
- Keep going with the remaining packages:
~~~cue
resolve: failure_policy: "isolate"
~~~`,
	}

	generateFailedIssue = &Issue{
		id: GenerateFailedId,
		mdMsg: `
# Failed to generate the package list!

The resolved modules could not be written to the target file.

## Things you can try:
- Check that ` + "`--target`" + ` points to a writable file path, not a directory
- On Android, pass a Java package name with ` + "`--namespace`" + ``,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the autolink config!

The config file could not be parsed or holds invalid values.

## Things you can try:
- Check the CUE syntax of the file
- Show the effective configuration:
~~~
$ autolink config show
~~~`,
	}

	duplicateModulesIssue = &Issue{
		id: DuplicateModulesId,
		mdMsg: `
# Multiple copies of a module were found!

The same package is installed at more than one location. Only the first one
found is linked; the others are ignored.

## Things you can try:
- Deduplicate your dependencies:
~~~
$ npm dedupe
~~~
- Exclude the package in one workspace with ` + "`expo.autolinking.exclude`" + ``,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A search path or the generation target is not accessible.

## Things you can try:
- Check file and directory permissions
- Run autolink from a directory you own`,
	}

	issues = map[Id]*Issue{
		manifestParseErrorIssue.Id():     manifestParseErrorIssue,
		moduleConfigParseErrorIssue.Id(): moduleConfigParseErrorIssue,
		unsupportedPlatformIssue.Id():    unsupportedPlatformIssue,
		moduleResolveFailedIssue.Id():    moduleResolveFailedIssue,
		generateFailedIssue.Id():         generateFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		duplicateModulesIssue.Id():       duplicateModulesIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
	}
)

// Values returns every catalog issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int {
		return int(a.id - b.id)
	})
	return values
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
