package query

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile holds the fixed clauses AND'd onto every keyword.
type Profile struct {
	DomainTerms []string `yaml:"domain_terms"`
	Sites       []string `yaml:"sites"`
	Exclusions  []string `yaml:"exclusions"`
}

// DefaultProfile targets federal research funding news on government,
// university and non-profit sites, without job or admissions pages.
func DefaultProfile() Profile {
	return Profile{
		DomainTerms: []string{
			"university research funding",
			"federal grant",
			"innovation ecosystem",
			"R&D policy",
		},
		Sites:      []string{".gov", ".edu", ".org"},
		Exclusions: []string{"jobs", "admissions", "curriculum"},
	}
}

// LoadProfile reads a YAML profile. Missing sections keep their defaults; an
// empty path or a missing file yields DefaultProfile.
func LoadProfile(path string) (Profile, error) {
	def := DefaultProfile()
	if strings.TrimSpace(path) == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return def, nil
		}
		return Profile{}, fmt.Errorf("read query profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse query profile: %w", err)
	}
	p.DomainTerms = cleanList(p.DomainTerms)
	p.Sites = cleanList(p.Sites)
	p.Exclusions = cleanList(p.Exclusions)
	if len(p.DomainTerms) == 0 {
		p.DomainTerms = def.DomainTerms
	}
	if len(p.Sites) == 0 {
		p.Sites = def.Sites
	}
	if p.Exclusions == nil {
		p.Exclusions = def.Exclusions
	}
	return p, nil
}

func cleanList(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
