package plcconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/plzero/cmds"
	"github.com/reusee/plzero/configs"
	"github.com/reusee/plzero/logs"
	"github.com/xyproto/env/v2"
)

//go:embed schema.cue
var schema string

var configFlag = cmds.Var[string]("-config", "config file")

// Paths lists config files in precedence order: the -config flag, the
// PLC_CONFIG variable, then plc.cue or .plc.cue in the working directory,
// the user config directory and /etc.
func Paths() (paths []string) {
	add := func(path string) {
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	add(*configFlag)
	add(env.Str("PLC_CONFIG"))

	filenames := []string{
		"plc.cue",
		".plc.cue",
	}

	// working directory
	if workingDir, err := os.Getwd(); err == nil {
		for _, filename := range filenames {
			add(filepath.Join(workingDir, filename))
		}
	}

	// user config dir
	if configDir, err := os.UserConfigDir(); err == nil {
		for _, filename := range filenames {
			add(filepath.Join(configDir, filename))
		}
	}

	// system wide dir
	for _, filename := range filenames {
		add(filepath.Join("/etc", filename))
	}

	return
}

func NewLoader(paths []string) configs.Loader {
	return configs.NewLoader(paths, schema)
}

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {
	paths := Paths()
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}
	return NewLoader(paths)
}
