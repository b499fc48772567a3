package diaglog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"
)

// ExportDocument is the serializable snapshot produced by Export
type ExportDocument struct {
	Exported    string      `json:"exported"`
	Environment Environment `json:"environment"`
	Logs        []Entry     `json:"logs"`
}

// Environment describes the process that produced an export.
// Fields that have no meaning for the process hold Unavailable.
type Environment struct {
	UserAgent string `json:"userAgent"`
	URL       string `json:"url"`
	Viewport  string `json:"viewport"`
	Hostname  string `json:"hostname"`
	PID       int    `json:"pid"`
	Session   string `json:"session"`
	GoVersion string `json:"goVersion"`
	Mode      string `json:"mode"`
}

// Export builds a document from the in-memory store. The persistent subset is not included.
func (l *Logger) Export() ExportDocument {
	return ExportDocument{
		Exported:    l.now().UTC().Format(timestampLayout),
		Environment: l.environment(),
		Logs:        l.GetLogs(),
	}
}

// ExportLogs returns Export as indented JSON. It always returns a valid JSON
// document, reporting an encoding failure inside the document itself.
func (l *Logger) ExportLogs() (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = l.fallbackExport(fmt.Errorf("export panic: %v", r))
		}
	}()

	doc := l.Export()
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return l.fallbackExport(err)
	}
	return string(b)
}

func (l *Logger) fallbackExport(cause error) string {
	doc := struct {
		Exported    string      `json:"exported"`
		Environment Environment `json:"environment"`
		Logs        []Entry     `json:"logs"`
		Error       string      `json:"error"`
	}{
		Exported:    time.Now().UTC().Format(timestampLayout),
		Environment: unavailableEnvironment(),
		Logs:        []Entry{},
		Error:       cause.Error(),
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return `{"exported":"","environment":{},"logs":[],"error":"export unavailable"}`
	}
	return string(b)
}

func (l *Logger) environment() Environment {
	env := unavailableEnvironment()
	env.UserAgent = userAgent()
	env.PID = os.Getpid()
	env.Session = l.session
	env.GoVersion = runtime.Version()
	if host, err := os.Hostname(); err == nil && host != "" {
		env.Hostname = host
	}
	switch {
	case l.cfg.ServiceURL != "":
		env.URL = l.cfg.ServiceURL
	case l.development && l.cfg.DebugAddress != "":
		env.URL = "http://" + l.cfg.DebugAddress
	}
	if l.development {
		env.Mode = ModeDevelopment
	} else {
		env.Mode = ModeProduction
	}
	return env
}

func unavailableEnvironment() Environment {
	return Environment{
		UserAgent: Unavailable,
		URL:       Unavailable,
		Viewport:  Unavailable,
		Hostname:  Unavailable,
		Session:   Unavailable,
		GoVersion: Unavailable,
		Mode:      Unavailable,
	}
}

// userAgent identifies the program as "<name>/<version> (<go version>; <os>/<arch>)"
func userAgent() string {
	name := filepath.Base(os.Args[0])
	version := Unavailable
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	return fmt.Sprintf("%s/%s (%s; %s/%s)", name, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
