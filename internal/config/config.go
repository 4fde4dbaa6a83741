package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Jobs      JobsConfig      `mapstructure:"jobs"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// UploadDir is where completion images are written.
	UploadDir   string `mapstructure:"upload_dir"    validate:"required"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" validate:"gt=0,lte=100"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=1440"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// BootstrapConfig describes the administrator created on first start.
// All fields empty disables bootstrapping.
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username" validate:"required_with=AdminPassword AdminPhone"`
	AdminPassword string `mapstructure:"admin_password" validate:"required_with=AdminUsername,max=72"`
	AdminPhone    string `mapstructure:"admin_phone"    validate:"required_with=AdminUsername"`
}

// Enabled reports whether a bootstrap administrator is configured.
func (b BootstrapConfig) Enabled() bool {
	return b.AdminUsername != ""
}

// NotifyConfig holds the messaging provider settings. Credentials live only here.
type NotifyConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	BaseURL          string `mapstructure:"base_url"          validate:"required_if=Enabled true"`
	APIVersion       string `mapstructure:"api_version"       validate:"required_if=Enabled true"`
	PhoneNumberID    string `mapstructure:"phone_number_id"   validate:"required_if=Enabled true"`
	AccessToken      string `mapstructure:"access_token"      validate:"required_if=Enabled true"`
	TemplateName     string `mapstructure:"template_name"`
	TemplateLanguage string `mapstructure:"template_language"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"   validate:"gt=0,lte=60"`
}

// JobsConfig sizes the background worker pool.
type JobsConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0,lte=64"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`
}
