package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		WorkDir      string
		RollbarToken string

		Server     ServerConfig
		Database   DatabaseConfig
		Attendance AttendanceConfig
		Scanner    ScannerConfig
		Evidence   EvidenceConfig
		Mail       MailConfig
		Telemetry  TelemetryConfig
		Schedule   ScheduleConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// AttendanceConfig locates the remote attendance service check-in tokens are submitted to.
	AttendanceConfig struct {
		BaseURL  string
		APIToken string
		Timeout  time.Duration
	}

	ScannerConfig struct {
		Device    string // "-" reads stdin
		TorchPath string // sysfs LED brightness file, optional
	}

	EvidenceConfig struct {
		Backend         string // local | oss
		Dir             string
		OSSEndpoint     string
		OSSAccessKey    string
		OSSSecretKey    string
		OSSBucket       string
		OSSPrefix       string
		MaxUploadMBytes int64
	}

	MailConfig struct {
		FromName        string
		FromAddress     string
		SendgridAPIKey  string
		LeaveRecipients []string
	}

	TelemetryConfig struct {
		OTLPEndpoint string
		Insecure     bool
	}

	ScheduleConfig struct {
		SessionPurgeCron string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c MailConfig) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.FromName, Address: c.FromAddress}
}

// NewConfig reads the configuration from the environment.
// ENV selects both the variables prefix and the optional config/.env.<env> file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "QR Absence")
	v.SetDefault("secretKey", "7f$c2-9qz+ab!e0)k1m@x8w=hn4^t(0s3v#yd5&jr6p")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "absence")
	v.SetDefault("dbUser", "absence")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("attendanceBaseURL", "http://localhost:8080/api")
	v.SetDefault("attendanceAPIToken", "")
	v.SetDefault("attendanceTimeout", 10*time.Second)

	v.SetDefault("scannerDevice", "-")
	v.SetDefault("scannerTorchPath", "")

	v.SetDefault("evidenceBackend", "local")
	v.SetDefault("evidenceDir", filepath.Join(os.TempDir(), "absence-evidence"))
	v.SetDefault("evidenceOSSEndpoint", "")
	v.SetDefault("evidenceOSSAccessKey", "")
	v.SetDefault("evidenceOSSSecretKey", "")
	v.SetDefault("evidenceOSSBucket", "")
	v.SetDefault("evidenceOSSPrefix", "evidence/")
	v.SetDefault("evidenceMaxUploadMBytes", 10)

	v.SetDefault("mailFromName", "QR Absence")
	v.SetDefault("mailFromAddress", "noreply@localhost")
	v.SetDefault("sendgridAPIKey", "")
	v.SetDefault("leaveRecipients", "")

	v.SetDefault("otlpEndpoint", "")
	v.SetDefault("otlpInsecure", false)

	v.SetDefault("sessionPurgeCron", "0 3 * * *")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		WorkDir:      workDir,
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Attendance: AttendanceConfig{
			BaseURL:  strings.TrimRight(v.GetString("attendanceBaseURL"), "/"),
			APIToken: v.GetString("attendanceAPIToken"),
			Timeout:  v.GetDuration("attendanceTimeout"),
		},
		Scanner: ScannerConfig{
			Device:    v.GetString("scannerDevice"),
			TorchPath: v.GetString("scannerTorchPath"),
		},
		Evidence: EvidenceConfig{
			Backend:         v.GetString("evidenceBackend"),
			Dir:             v.GetString("evidenceDir"),
			OSSEndpoint:     v.GetString("evidenceOSSEndpoint"),
			OSSAccessKey:    v.GetString("evidenceOSSAccessKey"),
			OSSSecretKey:    v.GetString("evidenceOSSSecretKey"),
			OSSBucket:       v.GetString("evidenceOSSBucket"),
			OSSPrefix:       v.GetString("evidenceOSSPrefix"),
			MaxUploadMBytes: v.GetInt64("evidenceMaxUploadMBytes"),
		},
		Mail: MailConfig{
			FromName:        v.GetString("mailFromName"),
			FromAddress:     v.GetString("mailFromAddress"),
			SendgridAPIKey:  v.GetString("sendgridAPIKey"),
			LeaveRecipients: splitList(v.GetString("leaveRecipients")),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: v.GetString("otlpEndpoint"),
			Insecure:     v.GetBool("otlpInsecure"),
		},
		Schedule: ScheduleConfig{
			SessionPurgeCron: v.GetString("sessionPurgeCron"),
		},
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = CleanString(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
