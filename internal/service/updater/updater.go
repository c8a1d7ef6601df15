package updater

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/jlink-updater/internal/config"
	"github.com/oshokin/jlink-updater/internal/domain/release"
	"github.com/oshokin/jlink-updater/internal/logger"
	"github.com/oshokin/jlink-updater/internal/repository/catalog"
	"github.com/oshokin/jlink-updater/internal/service/fetcher"
	"github.com/oshokin/jlink-updater/internal/service/installer"
	"github.com/oshokin/jlink-updater/internal/service/probe"
)

// LatestVersion asks for the newest release on the page.
const LatestVersion = "latest"

var (
	errUnknownLogLevel    = errors.New("unknown log level")
	errUnknownPackageType = errors.New("unknown package type")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Version is "latest", a label such as "V8.10g", or an encoded version number.
	Version string
	// Install runs the package manager after the download.
	Install bool
	// LogLevel overrides the level from the settings file when set.
	LogLevel string
	// System overrides the detected OS: Linux, MacOSX or Windows. Empty or "auto" detects it.
	System string
	// Arch overrides the detected architecture: x86_64, i386, arm, arm64 or universal.
	Arch string
	// PackageType overrides the package format: deb, rpm, tgz, pkg or exe.
	PackageType string
	// PackageInstallCmd replaces the detected install command; it runs as typed.
	PackageInstallCmd string
}

// Collaborators of a run; tests replace them with fakes.
type (
	pageFetcher interface {
		Fetch(ctx context.Context) (*goquery.Document, error)
	}

	installedProber interface {
		Probe(ctx context.Context) (release.Number, error)
	}

	artifactDownloader interface {
		Download(ctx context.Context, fileURL, destination string) error
	}

	packageInstaller interface {
		Install(ctx context.Context, manager installer.PackageManager, filePath string) (int, error)
	}
)

// runner holds everything a single update run needs.
// It is unexported: call Run(ctx, Options) from callers.
type runner struct {
	cfg            *config.Config
	version        string
	install        bool
	platform       release.Platform
	format         string
	packageType    string
	packageManager installer.PackageManager
	pages          pageFetcher
	prober         installedProber
	downloader     artifactDownloader
	installer      packageInstaller
	runningTools   func() ([]string, error)
}

// Run executes one update and is the public entry point for the CLI.
// Outcomes that map to a specific process exit code are returned as *ExitError.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "jlink-updater")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownLogLevel, cfg.LogLevel)
	}

	logger.SetLevel(level)

	r, err := newRunner(ctx, cfg, opts)
	if err != nil {
		return err
	}

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Updater run failed", "error", err)
		return err
	}

	return nil
}

// newRunner wires the production collaborators.
func newRunner(ctx context.Context, cfg *config.Config, opts *Options) (*runner, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	pages, err := catalog.NewClient(cfg.PageURL, catalog.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	platform, err := release.DetectPlatform().Override(opts.System, opts.Arch)
	if err != nil {
		return nil, err
	}

	packageType, err := parsePackageType(opts.PackageType)
	if err != nil {
		return nil, err
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = LatestVersion
	}

	detected := installer.Detect(platform.OS, nil)

	packageManager := detected
	if command := strings.TrimSpace(opts.PackageInstallCmd); command != "" && !strings.EqualFold(command, release.Auto) {
		packageManager = installer.Custom(command)
	}

	return &runner{
		cfg:            cfg,
		version:        version,
		install:        opts.Install,
		platform:       platform,
		format:         detected.Format,
		packageType:    packageType,
		packageManager: packageManager,
		pages:          pages,
		prober:         probe.New(platform.OS),
		downloader:     fetcher.New(downloaderOptions(ctx, cfg, httpClient)...),
		installer:      installer.New(),
		runningTools:   installer.RunningTools,
	}, nil
}

// run walks the steps of an update:
// 1) Read the download page.
// 2) Resolve the requested version.
// 3) Pick the package for this system.
// 4) Compare with the installed version.
// 5) Download and install.
func (r *runner) run(ctx context.Context) error {
	logger.Infof(ctx, "System: %s", r.platform.OS)
	logger.Infof(ctx, "Architecture: %s", r.platform.Arch)

	doc, err := r.pages.Fetch(ctx)
	if err != nil {
		return err
	}

	table := catalog.ParseVersionIndex(doc)

	index, label, err := r.resolveVersion(ctx, table)
	if err != nil {
		return err
	}

	entry, err := r.selectPackage(ctx, doc, index)
	if err != nil {
		return err
	}

	available, err := release.Encode(label)
	if err != nil {
		return fmt.Errorf("version %q of the download page: %w", label, err)
	}

	if r.isLatest() {
		logger.Infof(ctx, "Latest Version: %s (%d)", label, available)
	} else {
		logger.Infof(ctx, "Replacing with Version: %s (%d)", label, available)
	}

	upToDate, err := r.isUpToDate(ctx, available)
	if err != nil {
		return err
	}

	if upToDate {
		logger.Info(ctx, "Already on latest version.")
		return nil
	}

	destination, err := r.download(ctx, entry)
	if err != nil {
		return err
	}

	if err = r.installPackage(ctx, entry, destination); err != nil {
		return err
	}

	logger.Info(ctx, "Success")

	return nil
}

// downloaderOptions configures the downloader from the settings.
// Debug runs also log the download progress in steps of 10%.
func downloaderOptions(ctx context.Context, cfg *config.Config, httpClient *http.Client) []fetcher.Option {
	opts := []fetcher.Option{
		fetcher.WithHTTPClient(httpClient),
		fetcher.WithChunkSize(cfg.ChunkSize),
	}

	if logger.Level() <= zapcore.DebugLevel {
		opts = append(opts, fetcher.WithProgressFunc(logProgress(ctx)))
	}

	return opts
}

// logProgress returns a ProgressFunc logging every 10% of a download of known size.
func logProgress(ctx context.Context) fetcher.ProgressFunc {
	const step = 10

	lastStep := int64(-1)

	return func(written, total int64) {
		if total <= 0 {
			return
		}

		percent := written * 100 / total
		if percent/step == lastStep {
			return
		}

		lastStep = percent / step
		logger.DebugKV(ctx, "Download progress", "percent", percent, "bytes", written)
	}
}

// packageFormat is the format to download: the --package-type override, then
// the preferred format of the settings file, then the detected one.
func (r *runner) packageFormat() string {
	switch {
	case r.packageType != "":
		return r.packageType
	case r.cfg.PreferredFormat != "":
		return r.cfg.PreferredFormat
	default:
		return r.format
	}
}

// parsePackageType validates a --package-type value; "auto" becomes empty.
func parsePackageType(packageType string) (string, error) {
	packageType = strings.ToLower(strings.TrimSpace(packageType))

	switch packageType {
	case "", release.Auto:
		return "", nil
	case release.FormatDeb, release.FormatRPM, release.FormatTgz, installer.FormatPkg, installer.FormatExe:
		return packageType, nil
	default:
		return "", fmt.Errorf("%w: %s", errUnknownPackageType, packageType)
	}
}

func (r *runner) isLatest() bool {
	return strings.EqualFold(r.version, LatestVersion)
}

// resolveVersion maps the requested version to a page index and its label.
func (r *runner) resolveVersion(ctx context.Context, table release.VersionIndexTable) (string, string, error) {
	index := release.LatestIndex

	if !r.isLatest() {
		// Labels are echoed in canonical spelling; numbers and typos stay as typed.
		query := r.version
		if canonical, err := release.Canonical(query); err == nil {
			query = canonical
		}

		found, err := table.Find(r.version)
		if err != nil {
			logger.Errorf(ctx, "Could not find J-Link version: %s", query)

			return "", "", &ExitError{Code: ExitVersionNotFound, Err: fmt.Errorf("version %s: %w", query, err)}
		}

		logger.Infof(ctx, "Found J-Link version: %s at %s", query, found)
		index = found
	}

	label, ok := table.Label(index)
	if !ok {
		logger.Errorf(ctx, "The download page lists no release at index %s", index)

		return "", "", &ExitError{
			Code: ExitVersionNotFound,
			Err:  fmt.Errorf("version index %s: %w", index, release.ErrNotFound),
		}
	}

	return index, label, nil
}

// selectPackage parses the packages of index and picks the one for this host.
func (r *runner) selectPackage(ctx context.Context, doc *goquery.Document, index string) (release.PackageEntry, error) {
	packages := release.Catalog{index: catalog.ParsePackages(doc, index)}

	format := r.packageFormat()

	entry, err := release.Select(packages, index, r.platform, format)
	if err != nil {
		logger.Error(ctx, "No package found for this system.")

		return release.PackageEntry{}, &ExitError{Code: ExitNoPackage, Err: err}
	}

	logger.Infof(ctx, "Package Type: %s", format)
	logger.Infof(ctx, "Package Install Command: %s", r.packageManager)
	logger.DebugKV(ctx, "Selected package", "name", entry.Name, "path", entry.Path)

	return entry, nil
}

// isUpToDate reports whether the installed version already satisfies a "latest" request.
// A named version is always installed, even when it is older.
func (r *runner) isUpToDate(ctx context.Context, available release.Number) (bool, error) {
	installed, err := r.prober.Probe(ctx)
	if errors.Is(err, probe.ErrNotInstalled) {
		logger.Info(ctx, "Installed version: None")
		return false, nil
	}

	if err != nil {
		return false, err
	}

	logger.Infof(ctx, "Installed version: %s (%d)", installed, installed)

	return r.isLatest() && installed >= available, nil
}

// download saves the package under its server file name.
func (r *runner) download(ctx context.Context, entry release.PackageEntry) (string, error) {
	fileName := entry.FileName()

	fileURL, err := url.JoinPath(r.cfg.ArtifactBaseURL(), fileName)
	if err != nil {
		return "", fmt.Errorf("build download URL: %w", err)
	}

	destination := filepath.Join(r.cfg.DownloadDir, fileName)
	if err = r.downloader.Download(ctx, fileURL, destination); err != nil {
		return "", err
	}

	return destination, nil
}

// installPackage hands the package to the package manager when asked to.
func (r *runner) installPackage(ctx context.Context, entry release.PackageEntry, destination string) error {
	if !r.install {
		logger.InfoKV(ctx, "Installation skipped", "file", destination)
		return nil
	}

	if !r.packageManager.CanInstall() {
		logger.WarnKV(ctx, "No package manager found, install the package manually", "file", destination)
		return nil
	}

	if !r.packageManager.Accepts(entry) {
		logger.WarnKV(ctx, "The package manager cannot install this package format, install it manually",
			"file", destination, "manager", r.packageManager.String(), "accepts", r.packageManager.Format)

		return nil
	}

	r.warnAboutRunningTools(ctx)

	code, err := r.installer.Install(ctx, r.packageManager, destination)
	if err != nil {
		return fmt.Errorf("install %s: %w", destination, err)
	}

	if code != 0 {
		logger.Error(ctx, "Failed")

		return &ExitError{Code: code}
	}

	return nil
}

func (r *runner) warnAboutRunningTools(ctx context.Context) {
	if r.runningTools == nil {
		return
	}

	tools, err := r.runningTools()
	if err != nil {
		logger.DebugKV(ctx, "Could not list processes", "error", err)
		return
	}

	if len(tools) > 0 {
		logger.WarnKV(ctx, "J-Link tools are running and may keep the old version loaded", "processes", tools)
	}
}
