package loader

import (
	"go.uber.org/zap"

	"github.com/kingrea/runfiles/internal/config"
	"github.com/kingrea/runfiles/internal/module"
	"github.com/kingrea/runfiles/internal/moduleroot"
	"github.com/kingrea/runfiles/internal/runfiles"
)

// NewContext builds the process-wide resolution context. In manifest mode the
// manifest is loaded here, once; a read failure is returned as a
// *runfiles.ManifestError and is fatal to the caller.
func NewContext(env config.Env, launcher config.Launcher, logger *zap.Logger) (*module.Context, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	rules, err := launcher.Rules()
	if err != nil {
		return nil, err
	}
	extension := launcher.Extension
	if extension == "" {
		extension = config.DefaultExtension
	}

	var manifest *runfiles.Manifest
	if env.ManifestOnly {
		manifest, err = runfiles.LoadManifest(env.ManifestFile)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded runfiles manifest", zap.String("path", manifest.Path()), zap.Int("entries", manifest.Len()))
	}
	resolver := runfiles.New(runfiles.Options{
		Root:      env.Runfiles,
		Manifest:  manifest,
		Extension: extension,
		Logger:    logger,
	})
	logger.Debug("runfiles backend selected",
		zap.Stringer("mode", resolver.Mode()),
		zap.String("root", env.Runfiles),
		zap.String("target", launcher.Target),
	)

	return &module.Context{
		Runfiles:           resolver,
		Roots:              moduleroot.NewMatcher(rules...),
		Target:             launcher.Target,
		Workspace:          launcher.Workspace,
		LabelPackage:       launcher.LabelPackage,
		SecondaryWorkspace: launcher.SecondaryWorkspace,
		Extension:          extension,
		Bootstrap:          append([]string(nil), launcher.Bootstrap...),
		EntryPoint:         launcher.EntryPoint,
		Logger:             logger,
	}, nil
}
