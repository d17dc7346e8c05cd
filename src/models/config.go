package models

// MConfig Structure
type MConfig struct {
	Name      string         `yaml:"name" env:"DASHBOARD_NAME"`
	Host      string         `yaml:"host" env:"DASHBOARD_HOST"`
	Port      int            `yaml:"port" env:"DASHBOARD_PORT"`
	LogLevel  string         `yaml:"log_level" env:"DASHBOARD_LOG_LEVEL"`
	Timezone  string         `yaml:"timezone" env:"DASHBOARD_TIMEZONE"`
	Calendar  string         `yaml:"calendar" env:"DASHBOARD_CALENDAR"` // MIC code, e.g. "xnys"
	GrpcHost  string         `yaml:"grpc_host" env:"DASHBOARD_GRPC_HOST"`
	GrpcPort  int            `yaml:"grpc_port" env:"DASHBOARD_GRPC_PORT"`
	Backend   MBackendConfig `yaml:"backend"`
	Storage   MStorageConfig `yaml:"storage"`
	Network   MNetworkConfig `yaml:"network"`
	Session   MSessionConfig `yaml:"session"`
	Grid      MGridConfig    `yaml:"grid"`
	RateLimit MRateConfig    `yaml:"rate_limit"`
}

// MBackendConfig describes the trade service the dashboard queries.
type MBackendConfig struct {
	BaseURL          string   `yaml:"base_url" env:"DASHBOARD_BACKEND_URL"`
	SourceAppID      string   `yaml:"source_app_id" env:"DASHBOARD_SOURCE_APP_ID"`
	Authorization    string   `yaml:"authorization" env:"DASHBOARD_BACKEND_AUTHORIZATION"`
	ForwardCookies   []string `yaml:"forward_cookies"`
	LoginURL         string   `yaml:"login_url" env:"DASHBOARD_LOGIN_URL"`
	ProbeIntervalSec int      `yaml:"probe_interval_seconds"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" env:"DASHBOARD_DB_TYPE"`
	DBPath             string `yaml:"db_path" env:"DASHBOARD_DB_PATH"`
	DBConnectionString string `yaml:"db_connection_string" env:"DASHBOARD_DB_DSN"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNetworkConfig struct {
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	UserAgent      string   `yaml:"user_agent"`
	InsecureTLS    bool     `yaml:"insecure_tls"`
}

type MSessionConfig struct {
	CookieName    string `yaml:"cookie_name"`
	TTLMinutes    int    `yaml:"ttl_minutes"`
	SecureCookie  bool   `yaml:"secure_cookie"`
	HistorySize   int    `yaml:"history_size"`
	NoticeSeconds int    `yaml:"notice_seconds"`
}

type MGridConfig struct {
	DefaultPageSize int   `yaml:"default_page_size"`
	PageSizes       []int `yaml:"page_sizes"`
}

type MRateConfig struct {
	EveryMillis int `yaml:"every_ms"`
	Burst       int `yaml:"burst"`
}
