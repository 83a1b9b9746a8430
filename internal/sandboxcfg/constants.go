package sandboxcfg

// DefaultSandboxImage is pulled and tagged automatically when missing; any
// other configured image that's missing is a hard error (§4.J).
const DefaultSandboxImage = "wopr-sandbox:latest"

const (
	DefaultContainerPrefix = "wopr-sandbox-"
	DefaultWorkdir          = "/workspace"
	DefaultIdleHours        = 24
	DefaultMaxAgeDays       = 7
	DefaultNetwork          = "none"
	DefaultPidsLimit        = 100
	DefaultMemory           = "512m"
	DefaultMemorySwap       = "512m"
	DefaultCPUs             = 0.5
	DefaultReadOnlyRoot     = true
)

// DefaultAllowTools and DefaultDenyTools seed the tool policy when neither
// session nor global config supplies a list.
var (
	DefaultAllowTools = []string{"*"}
	DefaultDenyTools  = []string{}
)

// DefaultTmpfsMounts are mounted as tmpfs in every container unless a
// session or global config overrides tmpfs explicitly.
var DefaultTmpfsMounts = []string{"/tmp", "/var/tmp", "/run"}

// DefaultCapDrop is dropped from every container's Linux capability set.
var DefaultCapDrop = []string{"ALL"}

// DefaultEnv seeds the container environment when neither global nor
// session config supplies one.
var DefaultEnv = map[string]string{"LANG": "C.UTF-8"}
