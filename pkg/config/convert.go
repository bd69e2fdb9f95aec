package config

import (
	"fmt"

	"golang.org/x/text/language"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/catalog/storage"
	"checkered/cartgate/pkg/remediation"
)

// Taxonomy returns the configured category identifiers.
func (c *Config) Taxonomy() admission.Taxonomy {
	cats := c.Admission.Categories
	return admission.Taxonomy{
		Licensed: admission.CategoryRef{ID: cats.Licensed.ID, Label: cats.Licensed.Label},
		Fantasy:  admission.CategoryRef{ID: cats.Fantasy.ID, Label: cats.Fantasy.Label},
		Premium:  admission.CategoryRef{ID: cats.Premium.ID, Label: cats.Premium.Label},
	}
}

// Rules converts the admission section into an engine rule set.
func (c *Config) Rules() (admission.Rules, error) {
	tag, err := language.Parse(c.Admission.Locale)
	if err != nil {
		return admission.Rules{}, fmt.Errorf("invalid locale %q: %w", c.Admission.Locale, err)
	}

	rules := admission.Rules{
		Taxonomy:               c.Taxonomy(),
		MaxTotalItems:          c.Admission.MaxTotalItems,
		PremiumToFantasyRatio:  c.Admission.PremiumToFantasyRatio,
		LicensedToFantasyRatio: c.Admission.LicensedToFantasyRatio,
		NonFantasyQuantityCap:  c.Admission.NonFantasyQuantityCap,
		UnknownAvailability:    admission.UnknownAvailabilityPolicy(c.Admission.UnknownAvailability),
		Locale:                 tag,
	}
	if err := rules.Validate(); err != nil {
		return admission.Rules{}, err
	}
	return rules, nil
}

// RecommenderConfig converts the remediation section.
func (c *Config) RecommenderConfig() remediation.Config {
	return remediation.Config{
		BatchSize:     c.Remediation.BatchSize,
		DisplayCap:    c.Remediation.DisplayCap,
		LookupTimeout: c.Remediation.LookupTimeout,
	}
}

// StorageOptions converts the catalog section.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:            c.Catalog.Backend,
		Path:               c.Catalog.SQLite.Path,
		Driver:             c.Catalog.SQLite.Driver,
		BusyTimeout:        c.Catalog.SQLite.BusyTimeout,
		CheckpointInterval: c.Catalog.SQLite.CheckpointInterval,
	}
}
