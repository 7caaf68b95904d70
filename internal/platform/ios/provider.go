// SPDX-License-Identifier: MPL-2.0

package ios

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/invowk/autolink/internal/platform"
)

// ProviderFileName is the conventional name of the generated provider.
const ProviderFileName = "ExpoModulesProvider.swift"

type providerData struct {
	Imports                []string
	ModulesClassNames      []string
	AppDelegateSubscribers []string
}

var providerTemplate = template.Must(template.New("provider").Parse(`/**
 * Automatically generated by autolink. DO NOT EDIT.
 *
 * This class provides the native modules written in Swift.
 */

import ExpoModulesCore
{{- range .Imports}}
import {{.}}
{{- end}}

@objc(ExpoModulesProvider)
public class ExpoModulesProvider: ModulesProvider {
  public override func getModuleClasses() -> [AnyModule.Type] {
    return [
{{- range $i, $c := .ModulesClassNames}}{{if $i}},{{end}}
      {{$c}}.self
{{- end}}
    ]
  }

  public override func getAppDelegateSubscribers() -> [ExpoAppDelegateSubscriber.Type] {
    return [
{{- range $i, $c := .AppDelegateSubscribers}}{{if $i}},{{end}}
      {{$c}}.self
{{- end}}
    ]
  }
}
`))

// renderProvider imports only pods that contribute Swift classes.
func renderProvider(descriptors []platform.ModuleDescriptor) ([]byte, error) {
	var data providerData
	for _, d := range descriptors {
		m, ok := d.(*ModuleDescriptor)
		if !ok {
			return nil, fmt.Errorf("unexpected descriptor %T for %s", d, d.PackageName())
		}
		if len(m.ModulesClassNames) == 0 && len(m.AppDelegateSubscribers) == 0 {
			continue
		}
		data.Imports = append(data.Imports, m.PodName)
		data.ModulesClassNames = append(data.ModulesClassNames, m.ModulesClassNames...)
		data.AppDelegateSubscribers = append(data.AppDelegateSubscribers, m.AppDelegateSubscribers...)
	}

	var buf bytes.Buffer
	if err := providerTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", ProviderFileName, err)
	}
	return buf.Bytes(), nil
}
