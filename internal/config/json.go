package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		UserID string `json:"user_id"`
		RPID   string `json:"rp_id"`
		RPName string `json:"rp_name"`
	} `json:"app,omitempty"`

	Storage struct {
		DSN           string `json:"dsn"`
		LegacyBackend string `json:"legacy_backend"`
		LegacyPath    string `json:"legacy_path"`
	} `json:"storage,omitempty"`

	Crypto struct {
		PBKDF2Iterations int `json:"pbkdf2_iterations"`
	} `json:"crypto,omitempty"`

	Session struct {
		IdleTimeout   Duration `json:"idle_timeout"`
		CheckInterval Duration `json:"check_interval"`
	} `json:"session,omitempty"`

	Ceremony struct {
		Timeout      Duration `json:"timeout"`
		ChallengeTTL Duration `json:"challenge_ttl"`
	} `json:"ceremony,omitempty"`

	Log struct {
		File  string `json:"file"`
		Level string `json:"level"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			UserID: jsonCfg.App.UserID,
			RPID:   jsonCfg.App.RPID,
			RPName: jsonCfg.App.RPName,
		},
		Storage: Storage{
			DSN:           jsonCfg.Storage.DSN,
			LegacyBackend: jsonCfg.Storage.LegacyBackend,
			LegacyPath:    jsonCfg.Storage.LegacyPath,
		},
		Crypto: Crypto{
			PBKDF2Iterations: jsonCfg.Crypto.PBKDF2Iterations,
		},
		Session: Session{
			IdleTimeout:   time.Duration(jsonCfg.Session.IdleTimeout),
			CheckInterval: time.Duration(jsonCfg.Session.CheckInterval),
		},
		Ceremony: Ceremony{
			Timeout:      time.Duration(jsonCfg.Ceremony.Timeout),
			ChallengeTTL: time.Duration(jsonCfg.Ceremony.ChallengeTTL),
		},
		Log: Log{
			File:  jsonCfg.Log.File,
			Level: jsonCfg.Log.Level,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
