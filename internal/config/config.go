package config

import (
	"os"
	"strconv"
	"time"

	"banditlab/domain/trial"
	"banditlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Task     TaskConfig
	Audio    AudioConfig
	Paths    PathConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// TaskConfig holds the trial loop parameters
type TaskConfig struct {
	PracticeTrials int
	MainTrials     int
	ITIMean        float64 // seconds
	ITISD          float64 // seconds
	ITIMin         float64 // seconds
	MaxResponse    time.Duration
	FeedbackFor    time.Duration
	MissedFor      time.Duration
	FinalFor       time.Duration
	BonusMaxEUR    float64
	Policy         trial.SaliencePolicy
	ForceAfter     int
	Seed           int64 // 0 selects a time-based seed
}

// AudioConfig holds the background/cue mixing parameters
type AudioConfig struct {
	BackgroundVolume float64
	SalientVolume    float64
	FadeDuration     time.Duration
	FadeSteps        int
	CueDuration      time.Duration
}

// PathConfig holds file system paths for artifacts and collected data
type PathConfig struct {
	DataDir      string
	ScheduleFile string
	WalkMain     string
	WalkPractice string
}

// ServerConfig holds questionnaire web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional archive connection. An empty URL
// disables archival entirely.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Task:     loadTaskConfig(),
		Audio:    loadAudioConfig(),
		Paths:    loadPathConfig(),
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadTaskConfig() TaskConfig {
	policy := trial.SaliencePolicy(getEnvOrDefault("SALIENCE_POLICY", string(trial.PolicyScheduleDriven)))

	return TaskConfig{
		PracticeTrials: getEnvIntOrDefault("PRACTICE_TRIALS", 15),
		MainTrials:     getEnvIntOrDefault("MAIN_TRIALS", 200),
		ITIMean:        getEnvFloatOrDefault("ITI_MEAN", 1.0),
		ITISD:          getEnvFloatOrDefault("ITI_SD", 0.5),
		ITIMin:         getEnvFloatOrDefault("ITI_MIN", 0.5),
		MaxResponse:    getEnvDurationOrDefault("MAX_RESPONSE_TIME", 5*time.Second),
		FeedbackFor:    getEnvDurationOrDefault("FEEDBACK_DURATION", 3*time.Second),
		MissedFor:      getEnvDurationOrDefault("MISSED_DURATION", 2*time.Second),
		FinalFor:       getEnvDurationOrDefault("FINAL_SCREEN_DURATION", 10*time.Second),
		BonusMaxEUR:    getEnvFloatOrDefault("BONUS_MAX_EUR", trial.DefaultBonusMaxEUR),
		Policy:         policy,
		ForceAfter:     getEnvIntOrDefault("SALIENCE_FORCE_AFTER", trial.DefaultForceThreshold),
		Seed:           int64(getEnvIntOrDefault("TASK_SEED", 0)),
	}
}

func loadAudioConfig() AudioConfig {
	return AudioConfig{
		BackgroundVolume: getEnvFloatOrDefault("VOLUME_BACKGROUND", 0.8),
		SalientVolume:    getEnvFloatOrDefault("VOLUME_SALIENT", 0.2),
		FadeDuration:     getEnvDurationOrDefault("VOLUME_FADE_DURATION", 500*time.Millisecond),
		FadeSteps:        getEnvIntOrDefault("VOLUME_FADE_STEPS", 20),
		CueDuration:      getEnvDurationOrDefault("CUE_DURATION", time.Second),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		DataDir:      getEnvOrDefault("DATA_DIR", "collected_data"),
		ScheduleFile: getEnvOrDefault("SCHEDULE_FILE", "task_data/variable_ratio_schedule/vr_schedule.csv"),
		WalkMain:     getEnvOrDefault("WALK_MAIN_FILE", "task_data/random_walk/csv/main_random_walk.csv"),
		WalkPractice: getEnvOrDefault("WALK_PRACTICE_FILE", "task_data/random_walk/csv/prac_random_walk.csv"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func validateConfig(config *Config) error {
	if !config.Task.Policy.Valid() {
		return errors.ConfigInvalid("SALIENCE_POLICY must be schedule_driven or forced_after_n")
	}
	if config.Task.PracticeTrials < 0 || config.Task.MainTrials <= 0 {
		return errors.ConfigInvalid("trial counts must be positive")
	}
	if config.Task.ITIMin < 0 || config.Task.ITISD < 0 {
		return errors.ConfigInvalid("inter-trial interval parameters must be non-negative")
	}
	if config.Audio.FadeSteps <= 0 {
		return errors.ConfigInvalid("VOLUME_FADE_STEPS must be positive")
	}
	if config.Paths.DataDir == "" {
		return errors.ConfigInvalid("DATA_DIR must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
