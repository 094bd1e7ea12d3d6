package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/banksean/devctr/config"
	"github.com/posener/complete"
)

// containerPredictor completes container names from the containers file named on the
// command line being completed, or the default one.
func containerPredictor() complete.Predictor {
	return complete.PredictFunc(func(args complete.Args) []string {
		f, err := config.Load(configFromArgs(args.All))
		if err != nil {
			return nil
		}
		names := make([]string, 0, len(f.Containers))
		for _, c := range f.Containers {
			names = append(names, c.Name)
		}
		return names
	})
}

func yamlPredictor() complete.Predictor {
	return complete.PredictOr(complete.PredictFiles("*.yaml"), complete.PredictFiles("*.yml"))
}

// configFromArgs finds the -c/--config value in a partial command line.
func configFromArgs(args []string) string {
	path := "containers.yaml"
	for i, a := range args {
		if (a == "-c" || a == "--config") && i+1 < len(args) {
			path = args[i+1]
		} else if v, ok := strings.CutPrefix(a, "--config="); ok {
			path = v
		}
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return path
}
