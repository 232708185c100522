package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/mutate/internal/config"
	"github.com/vango-dev/mutate/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		force  bool
		native bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Long: `Write a default configuration file. The format follows the extension:
.yaml and .yml write YAML, anything else writes JSON. A directory argument
writes mutate.json inside it.

mutatebench run without --config uses the nearest configuration file in the
current directory or its parents.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFileName
			if len(args) == 1 {
				path = args[0]
			}

			exists := false
			if fi, err := os.Stat(path); err == nil && fi.IsDir() {
				exists = config.Exists(path)
				path = filepath.Join(path, config.ConfigFileName)
			} else {
				exists = err == nil
			}
			if exists {
				if !force {
					return errors.New(errors.CodeConfigInvalid).
						WithDetail("A configuration file already exists at " + path).
						WithSuggestion("Pass --force to overwrite it")
				}
				warn("Overwriting the configuration at %s", path)
			}

			cfg := config.New()
			cfg.Capability.Native = native
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			success("Wrote %s", path)
			info("mutatebench run picks it up from %s and the directories below it", cfg.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&native, "native", false, "Enable native observation")

	return cmd
}
