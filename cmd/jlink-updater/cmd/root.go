package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/jlink-updater/internal/config"
	"github.com/oshokin/jlink-updater/internal/domain/release"
	"github.com/oshokin/jlink-updater/internal/logger"
	"github.com/oshokin/jlink-updater/internal/service/updater"
	"github.com/oshokin/jlink-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// requestedVersion is "latest", a label such as "V8.10g" or an encoded version number.
	requestedVersion string

	// install runs the package manager after the download.
	install bool

	// noInstall only downloads the package.
	noInstall bool

	// logLevel overrides the level from the configuration file.
	logLevel string

	// system, arch, packageType and packageInstallCmd override detection unless "auto".
	system            string
	arch              string
	packageType       string
	packageInstallCmd string

	// rootCmd represents the base command for updating the J-Link software pack.
	rootCmd = &cobra.Command{
		Use:          "jlink-updater",
		Short:        "Download and install the SEGGER J-Link software pack",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ConfigPath: configPath,
				Version:    requestedVersion,
				Install:    install && !noInstall,
				LogLevel:   logLevel,

				System:            system,
				Arch:              arch,
				PackageType:       packageType,
				PackageInstallCmd: packageInstallCmd,
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the jlink-updater CLI and exits with the code the run asked for.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	//nolint:errcheck // Sync on a console writer has nothing useful to report.
	logger.Logger().Sync()

	if err == nil {
		return
	}

	var exitErr *updater.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}

	os.Exit(1)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&requestedVersion, "version", updater.LatestVersion, `version to install: "latest", a label like V8.10g or a version number`)
	flags.BoolVar(&install, "install", true, "install the downloaded package")
	flags.BoolVar(&noInstall, "no-install", false, "only download the package")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&system, "system", release.Auto, "OS type: auto, Linux, MacOSX or Windows")
	flags.StringVar(&arch, "arch", release.Auto, "system architecture: auto, x86_64, i386, arm, arm64 or universal")
	flags.StringVar(&packageType, "package-type", release.Auto, "package type to download: auto, deb, rpm, tgz, pkg or exe")
	flags.StringVar(&packageInstallCmd, "package-install-cmd", release.Auto,
		`command installing the package, run as typed with the file appended; "auto" detects it`)

	rootCmd.MarkFlagsMutuallyExclusive("install", "no-install")
}
