// Package content holds the canonical on-host file content botzner
// installs. The unit file ships inside the binary; doctor compares
// the installed copy against it to detect drift.
package content

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed systemd/unit.service.tmpl
var files embed.FS

// UnitParams parameterizes the canonical systemd unit.
type UnitParams struct {
	Description     string
	User            string
	EnvironmentFile string
	DataDir         string
	// Exec is the console-script name pip installs into /usr/local/bin.
	Exec string
}

// UnitFile renders the canonical systemd unit.
func UnitFile(p UnitParams) (string, error) {
	raw, err := files.ReadFile("systemd/unit.service.tmpl")
	if err != nil {
		// Embedded at compile time, a read failure here is a build bug.
		panic("embedded unit template missing: " + err.Error())
	}

	tmpl, err := template.New("unit").Option("missingkey=error").Parse(string(raw))
	if err != nil {
		panic("embedded unit template invalid: " + err.Error())
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to render unit file: %w", err)
	}
	return buf.String(), nil
}
