package config

const (
	defaultAPIHost         = "https://adsorption.nist.gov"
	defaultUserAgent       = "isodb-tools/dev"
	defaultTimeoutSeconds  = 30
	defaultLibraryDir      = "JSON_Library"
	defaultDOIMappingPath  = "DOI_mapping.csv"
	defaultAdsorbentsDir   = "Adsorbents"
	defaultAdsorbatesDir   = "Adsorbates"
	defaultBibliographyDir = "Bibliography"
	defaultCurationDir     = "."
	defaultManifestPath    = "~/.local/share/isodb/manifest.db"
	defaultLogDir          = ""
	defaultRepoDir         = "."
	defaultPauseEvery      = 10
	defaultPauseSeconds    = 5
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// builtinPressureUnits maps raw pressure unit names to their factor in bar.
var builtinPressureUnits = map[string]float64{
	"bar":   1.0,
	"mbar":  1.0e-3,
	"ATM":   1.01325,
	"atm":   1.01325,
	"Pa":    1.0e-5,
	"kPa":   1.0e-2,
	"MPa":   10.0,
	"Torr":  1.01325 / 760.0,
	"torr":  1.01325 / 760.0,
	"mTorr": 1.01325 / 760.0e3,
	"mmHg":  1.01325 / 760.0,
	"psi":   0.0689475729,
	"psia":  0.0689475729,
}

// DefaultCanonicalKeys lists the top-level fields permitted in an accepted
// isotherm record.
var DefaultCanonicalKeys = []string{
	"DOI",
	"adsorbates",
	"adsorbent",
	"adsorptionUnits",
	"articleSource",
	"category",
	"compositionType",
	"concentrationUnits",
	"date",
	"digitizer",
	"filename",
	"isotherm_data",
	"isotherm_type",
	"pressureUnits",
	"tabular_data",
	"temperature",
}

// DefaultDOIStubRules shortens DOIs into folder-safe names.
var DefaultDOIStubRules = []StubRule{
	{Old: "10.1021/", New: ""},
	{Old: "10.1016/j.", New: ""},
	{Old: "10.1016/", New: ""},
	{Old: "10.1039/", New: ""},
	{Old: "10.1002/", New: ""},
	{Old: "10.1007/", New: ""},
	{Old: "/", New: ""},
	{Old: ".", New: ""},
	{Old: ":", New: ""},
	{Old: ";", New: ""},
	{Old: "(", New: ""},
	{Old: ")", New: ""},
	{Old: "<", New: ""},
	{Old: ">", New: ""},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			Host:           defaultAPIHost,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Paths: Paths{
			LibraryDir:      defaultLibraryDir,
			DOIMappingPath:  defaultDOIMappingPath,
			AdsorbentsDir:   defaultAdsorbentsDir,
			AdsorbatesDir:   defaultAdsorbatesDir,
			BibliographyDir: defaultBibliographyDir,
			CurationDir:     defaultCurationDir,
			ManifestPath:    defaultManifestPath,
			LogDir:          defaultLogDir,
			RepoDir:         defaultRepoDir,
		},
		Library: Library{
			PauseEvery:   defaultPauseEvery,
			PauseSeconds: defaultPauseSeconds,
			DOIStubRules: append([]StubRule(nil), DefaultDOIStubRules...),
		},
		Records: Records{
			CanonicalKeys: append([]string(nil), DefaultCanonicalKeys...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
