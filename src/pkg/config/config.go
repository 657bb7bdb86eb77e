// Package config loads the JSON configuration file and hands each package its
// own section. Packages keep their own Config type, defaults and Cfg variable.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"sync"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Sections maps a top-level key of the config file to its raw JSON.
type Sections map[string]json.RawMessage

var (
	mu     sync.RWMutex
	loaded = Sections{}
)

/*
Load reads the config file at path. A missing file is not an error: it yields
no sections and every package keeps its defaults.
*/
func Load(path string) (sections Sections, e *xerr.Error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		tl.Log(tl.Warning, palette.PurpleBright, "Config file '%s' %s, using defaults", path, "not found")
		return Sections{}, nil
	}
	if err != nil {
		return nil, xerr.NewError(err, "read config file", path)
	}

	sections = Sections{}
	err = json.Unmarshal(content, &sections)
	if err != nil {
		return nil, xerr.NewError(err, "parse config file", path)
	}

	return sections, nil
}

// InitializeConfig loads path into the process-wide sections, exiting on a
// malformed file.
func InitializeConfig(path string) {
	sections, e := Load(path)
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}

	mu.Lock()
	loaded = sections
	mu.Unlock()

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	tl.Log(tl.Info, palette.Green, "Loaded config '%s' with sections '%s'", path, strings.Join(names, ", "))
}

/*
Decode unmarshals section name into a new T. It returns nil when the section
is absent, which package InitializeConfig functions treat as "keep defaults".
*/
func Decode[T any](sections Sections, name string) (value *T, e *xerr.Error) {
	raw, exists := sections[name]
	if !exists || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	value = new(T)
	err := json.Unmarshal(raw, value)
	if err != nil {
		return nil, xerr.NewError(err, "parse config section", name)
	}
	return value, nil
}

// Section decodes name from the sections loaded by InitializeConfig,
// exiting when the section is malformed.
func Section[T any](name string) *T {
	mu.RLock()
	sections := loaded
	mu.RUnlock()

	value, e := Decode[T](sections, name)
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	return value
}

// CheckIfEnvVarsPresent warns about every unset variable and returns their names.
func CheckIfEnvVarsPresent(names ...string) (missing []string) {
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			tl.Log(tl.Warning, palette.YellowBold, "Env var '%s' is %s", name, "not set")
			missing = append(missing, name)
		}
	}
	return missing
}

// RequireEnvVars fails when any of names is unset, for programs that cannot
// do their job without them.
func RequireEnvVars(names ...string) (e *xerr.Error) {
	missing := CheckIfEnvVarsPresent(names...)
	if len(missing) > 0 {
		e = xerr.NewError(errors.New("required environment variables are not set"), "check environment", strings.Join(missing, ", "))
	}
	return e
}

/*
GetPackageName returns the short name of the package that called it, e.g.
"reporting" for embroidery-reports/src/pkg/reporting.InitializeConfig.func1.
*/
func GetPackageName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return packageFromFuncName(fn.Name())
}

func packageFromFuncName(name string) string {
	if slash := strings.LastIndex(name, "/"); slash >= 0 {
		name = name[slash+1:]
	}
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[:dot]
	}
	if name == "" {
		return "unknown"
	}
	return name
}
