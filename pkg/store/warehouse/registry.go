package warehouse

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

const (
	KindSnowflake  = "snowflake"
	KindDatabricks = "databricks"
	KindDuckDB     = "duckdb"
)

// Profile describes one warehouse connection read from the profiles file.
type Profile struct {
	Name      string
	Kind      string
	Table     string
	Host      string
	Token     string
	HTTPPath  string
	Catalog   string
	Account   string
	User      string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string
	Path      string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load warehouse profiles: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	profile := &Profile{
		Name:      name,
		Kind:      section.Key("type").MustString(KindDuckDB),
		Table:     section.Key("table").String(),
		Host:      section.Key("host").String(),
		Token:     section.Key("token").String(),
		HTTPPath:  section.Key("http_path").String(),
		Catalog:   section.Key("catalog").String(),
		Account:   section.Key("account").String(),
		User:      section.Key("user").String(),
		Password:  section.Key("password").String(),
		Database:  section.Key("database").String(),
		Schema:    section.Key("schema").String(),
		Warehouse: section.Key("warehouse").String(),
		Role:      section.Key("role").String(),
		Path:      section.Key("path").String(),
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *Profile) Validate() error {
	switch p.Kind {
	case KindSnowflake:
		if p.Account == "" || p.User == "" {
			return fmt.Errorf("profile %s: snowflake requires account and user", p.Name)
		}
	case KindDatabricks:
		if p.Host == "" || p.Token == "" || p.HTTPPath == "" {
			return fmt.Errorf("profile %s: databricks requires host, token and http_path", p.Name)
		}
	case KindDuckDB:
		if p.Path == "" {
			return fmt.Errorf("profile %s: duckdb requires path", p.Name)
		}
	default:
		return fmt.Errorf("profile %s: unsupported warehouse type %q", p.Name, p.Kind)
	}
	return nil
}
