// SPDX-License-Identifier: MPL-2.0

package android

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"text/template"

	"github.com/invowk/autolink/internal/platform"
)

// PackageListFileName is the conventional name of the generated list.
const PackageListFileName = "ExpoModulesPackageList.java"

// ErrInvalidNamespace is returned when the namespace is not a Java package name.
var ErrInvalidNamespace = errors.New("invalid java namespace")

var javaPackageName = regexp.MustCompile(`^[A-Za-z_][\w]*(\.[A-Za-z_][\w]*)*$`)

type packageListData struct {
	Namespace string
	Packages  []string
	Modules   []string
}

var packageListTemplate = template.Must(template.New("package_list").Parse(`package {{.Namespace}};

// Automatically generated by autolink. DO NOT EDIT.

import java.util.Arrays;
import java.util.List;
import expo.modules.core.interfaces.Package;
import expo.modules.kotlin.modules.Module;
import expo.modules.kotlin.ModulesProvider;

public class ExpoModulesPackageList implements ModulesProvider {
  private static class LazyHolder {
    static final List<Package> packagesList = Arrays.<Package>asList(
{{- range $i, $p := .Packages}}{{if $i}},{{end}}
      new {{$p}}()
{{- end}}
    );

    static final List<Class<? extends Module>> modulesList = Arrays.<Class<? extends Module>>asList(
{{- range $i, $m := .Modules}}{{if $i}},{{end}}
      {{$m}}.class
{{- end}}
    );
  }

  public static List<Package> getPackageList() {
    return LazyHolder.packagesList;
  }

  @Override
  public List<Class<? extends Module>> getModulesList() {
    return LazyHolder.modulesList;
  }
}
`))

func renderPackageList(descriptors []platform.ModuleDescriptor, namespace string) ([]byte, error) {
	if !javaPackageName.MatchString(namespace) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}

	data := packageListData{Namespace: namespace}
	for _, d := range descriptors {
		m, ok := d.(*ModuleDescriptor)
		if !ok {
			return nil, fmt.Errorf("unexpected descriptor %T for %s", d, d.PackageName())
		}
		data.Packages = append(data.Packages, m.Packages...)
		data.Modules = append(data.Modules, m.ModulesClassNames...)
	}

	var buf bytes.Buffer
	if err := packageListTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", PackageListFileName, err)
	}
	return buf.Bytes(), nil
}
