package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

type AppConfigIntermediary struct {
	Logger    LoggerConfig `yaml:"logger"`
	Server    ServerConfig `yaml:"server"`
	Api       ApiConfig    `yaml:"api"`
	Cache     CacheConfig  `yaml:"cache"`
	Providers Providers    `yaml:"providers"`
	Layers    []Layer      `yaml:"layers"`
}

// applyDefaults заполняет необязательные поля, которые не указаны в yaml.
func (c *AppConfigIntermediary) applyDefaults() {
	if c.Logger.Mode == "" {
		c.Logger.Mode = LoggerModeDevelopment
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = DefaultMetricsPort
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Api.BaseURL == "" {
		c.Api.BaseURL = DefaultBaseURL
	}
	if c.Api.Timeout == 0 {
		c.Api.Timeout = DefaultApiTimeout
	}
	if c.Api.MaxFilterPages == 0 {
		c.Api.MaxFilterPages = DefaultMaxFilterPages
	}
}

func (c *AppConfigIntermediary) Validate() error {
	if err := c.validateLogger(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateApi(); err != nil {
		return err
	}

	if err := c.validateProviders(); err != nil {
		return err
	}

	if err := c.validateLayers(); err != nil {
		return err
	}
	return nil
}

func (c *AppConfigIntermediary) validateLogger() error {
	switch c.Logger.Mode {
	case LoggerModeDevelopment, LoggerModeProduction:
		return nil
	default:
		return fmt.Errorf("logger: unknown mode '%s'", c.Logger.Mode)
	}
}

func (c *AppConfigIntermediary) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port must be 1..65535")
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("server: metricsPort must be 1..65535")
	}
	if c.Server.Port == c.Server.MetricsPort {
		return fmt.Errorf("server: port and metricsPort must differ")
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server: requestTimeout must be >= 0")
	}
	return nil
}

func (c *AppConfigIntermediary) validateApi() error {
	u, err := url.Parse(c.Api.BaseURL)
	if err != nil {
		return fmt.Errorf("api: invalid baseUrl '%s': %v", c.Api.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api: unsupported scheme '%s' in baseUrl", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api: missing host in baseUrl '%s'", c.Api.BaseURL)
	}
	if c.Api.Timeout < 0 {
		return fmt.Errorf("api: timeout must be >= 0")
	}
	if c.Api.MaxFilterPages < 1 {
		return fmt.Errorf("api: maxFilterPages must be >= 1")
	}
	return nil
}

func (c *AppConfigIntermediary) validateProviders() error {
	providerNames := make(map[string]bool)
	for i, p := range c.Providers {
		if p.GetType() == ProviderTypeUnknown {
			return fmt.Errorf("provider[%d]: unknown type '%s'", i, p.GetType())
		}
		if p.GetName() == "" {
			return fmt.Errorf("provider[%d]: name is required", i)
		}
		if providerNames[p.GetName()] {
			return fmt.Errorf("provider[%d]: duplicate name '%s'", i, p.GetName())
		}
		providerNames[p.GetName()] = true

		switch v := p.(type) {

		case *Ristretto:
			if err := c.validateRistretto(i, v); err != nil {
				return err
			}

		case *Redis:
			if err := c.validateRedis(i, v); err != nil {
				return err
			}

		default:
			// новый тип без case
			return fmt.Errorf("provider[%d] (%s): validation not implemented for type %T",
				i, p.GetName(), p)
		}
	}
	return nil
}

func (c *AppConfigIntermediary) validateRistretto(idx int, r *Ristretto) error {
	if r.NumCounters <= 0 {
		return fmt.Errorf("provider[%d] (%s): numCounters must be > 0", idx, r.Name)
	}
	if r.BufferItems <= 0 {
		return fmt.Errorf("provider[%d] (%s): bufferItems must be > 0", idx, r.Name)
	}
	// maxCost должен конвертироваться и быть >0
	if bytes, err := ParseByteSize(r.MaxCost); err != nil || bytes == 0 {
		return fmt.Errorf("provider[%d] (%s): invalid maxCost '%s'", idx, r.Name, r.MaxCost)
	}
	return nil
}

func (c *AppConfigIntermediary) validateRedis(idx int, r *Redis) error {
	if r.Host == "" {
		return fmt.Errorf("provider[%d] (%s): host is required", idx, r.Name)
	}
	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("provider[%d] (%s): port must be 1..65535", idx, r.Name)
	}
	if r.PoolSize <= 0 {
		return fmt.Errorf("provider[%d] (%s): poolSize must be > 0", idx, r.Name)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("provider[%d] (%s): timeout must be > 0", idx, r.Name)
	}
	return nil
}

func (c *AppConfigIntermediary) validateLayers() error {
	if len(c.Layers) == 0 {
		return fmt.Errorf("layers: at least one layer is required")
	}

	layerNames := make(map[string]bool)

	providerNames := make(map[string]bool)
	for _, p := range c.Providers {
		providerNames[p.GetName()] = true
	}

	for i, l := range c.Layers {
		if l.Name == "" {
			return fmt.Errorf("layer[%d]: name is required", i)
		}

		if l.Mode == LayerModeUnknown {
			return fmt.Errorf("layer[%d]: invalid mode '%s'", i, l.Mode)
		}

		if layerNames[l.Name] {
			return fmt.Errorf("layer[%d]: duplicate name '%s'", i, l.Name)
		}
		if !providerNames[l.Name] {
			return fmt.Errorf("layer[%d]: no matching provider found for name '%s'", i, l.Name)
		}
		layerNames[l.Name] = true
	}
	return nil
}

///////////////////////////////////////////////////////////
/// Service structs
///////////////////////////////////////////////////////////

const (
	DefaultPort           = 8080
	DefaultMetricsPort    = 9080
	DefaultRequestTimeout = 30 * time.Second
	DefaultBaseURL        = "https://rickandmortyapi.com/api"
	DefaultApiTimeout     = 15 * time.Second
	DefaultMaxFilterPages = 5
)

type LoggerMode string

const (
	LoggerModeDevelopment LoggerMode = "development"
	LoggerModeProduction  LoggerMode = "production"
)

type LoggerConfig struct {
	Mode LoggerMode `yaml:"mode"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	MetricsPort    int           `yaml:"metricsPort"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// ApiConfig описывает удалённый REST API, который агрегирует сервис.
type ApiConfig struct {
	BaseURL        string            `yaml:"baseUrl"`
	Timeout        time.Duration     `yaml:"timeout"`
	MaxFilterPages int               `yaml:"maxFilterPages"`
	Headers        map[string]string `yaml:"headers"`
}

type CacheConfig struct {
	Prefix string `yaml:"prefix"`
}

///////////////////////////////////////////////////////////
/// Providers structs
///////////////////////////////////////////////////////////

type ProviderType string

const (
	ProviderTypeRistretto ProviderType = "ristretto"
	ProviderTypeRedis     ProviderType = "redis"
	ProviderTypeUnknown   ProviderType = "unknown"
)

/* ---------- общее ядро ---------- */

type ProviderMeta struct {
	Name string       `yaml:"name"`
	Type ProviderType `yaml:"type"`
}

func (m ProviderMeta) GetName() string       { return m.Name }
func (m ProviderMeta) GetType() ProviderType { return m.Type }

/* ---------- интерфейс ---------- */

type Provider interface {
	GetName() string
	GetType() ProviderType
}

/* ---------- конкретные типы ---------- */

type Ristretto struct {
	ProviderMeta `yaml:",inline"`

	NumCounters int64  `yaml:"numCounters"`
	BufferItems int64  `yaml:"bufferItems"`
	MaxCost     string `yaml:"maxCost"`
}

func (r *Ristretto) MaxCostBytes() (uint64, error) {
	return ParseBytesStr(r.MaxCost, r.Name+" -> maxCost")
}

type Redis struct {
	ProviderMeta `yaml:",inline"`

	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Unknown struct {
	ProviderMeta `yaml:",inline"`
}

/* ---------- кастомный Unmarshal ---------- */

func (pt *ProviderType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	switch s {
	case string(ProviderTypeRistretto), string(ProviderTypeRedis):
		*pt = ProviderType(s)
	default:
		*pt = ProviderTypeUnknown
	}
	return nil
}

type Providers []Provider

func (p *Providers) UnmarshalYAML(value *yaml.Node) error {
	var raw []yaml.Node
	if err := value.Decode(&raw); err != nil {
		return err
	}

	for _, n := range raw {
		var meta ProviderMeta
		if err := n.Decode(&meta); err != nil {
			return err
		}

		var prov Provider
		switch meta.Type {
		case ProviderTypeRistretto:
			prov = &Ristretto{}
		case ProviderTypeRedis:
			prov = &Redis{}
		default:
			prov = &Unknown{}
		}

		if err := n.Decode(prov); err != nil {
			return err
		}
		*p = append(*p, prov)
	}
	return nil
}

///////////////////////////////////////////////////////////
/// Layers structs
///////////////////////////////////////////////////////////

type LayerMode string

const (
	LayerModeDisabled LayerMode = "disabled"
	LayerModeEnabled  LayerMode = "enabled"
	LayerModeUnknown  LayerMode = "unknown"
)

type Layer struct {
	Name string    `yaml:"name"`
	Mode LayerMode `yaml:"mode"`
}

func (m *LayerMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case string(LayerModeDisabled), string(LayerModeEnabled):
		*m = LayerMode(s)
	default:
		*m = LayerModeUnknown
	}
	return nil
}

///////////////////////////////////////////////////////////
/// UTILS
///////////////////////////////////////////////////////////

func ParseByteSize(s string) (uint64, error) {
	return humanize.ParseBytes(strings.TrimSpace(s))
}

func ParseBytesStr(bytesString string, errorPath string) (uint64, error) {
	bytes, err := ParseByteSize(bytesString)
	if err != nil {
		return 0, fmt.Errorf("invalid config -> %v: %v has wrong value (%v)", errorPath, bytesString, err)
	}
	return bytes, nil
}
