// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package i18n renders translatable message keys into locale-specific text.

Catalogs are YAML files embedded under locales/, one per locale:

	locale: fr
	messages:
	  bingo.not_found: "Bingo introuvable"

The core never renders text itself; it only selects an error kind and a key.
Rendering happens at the transport boundary using the locale negotiated from
the request's Accept-Language header.
*/
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// catalogFile mirrors the on-disk YAML layout of a locale file.
type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds every loaded locale and negotiates between them.
//
// # Concurrency
//
// A Catalog is immutable after loading and safe for concurrent use.
type Catalog struct {
	fallback string
	tags     []language.Tag
	matcher  language.Matcher
	messages map[string]map[string]string
}

// Load reads the embedded locale catalogs with fallbackLocale as the default.
func Load(fallbackLocale string) (*Catalog, error) {
	return LoadFromFS(embeddedLocales, fallbackLocale)
}

// LoadFromFS reads every locales/*.yaml file from catalogFS.
func LoadFromFS(catalogFS fs.FS, fallbackLocale string) (*Catalog, error) {
	paths, err := fs.Glob(catalogFS, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("i18n: glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("i18n: no catalog files found")
	}
	sort.Strings(paths)

	catalog := &Catalog{messages: map[string]map[string]string{}}

	for _, path := range paths {
		data, err := fs.ReadFile(catalogFS, path)
		if err != nil {
			return nil, fmt.Errorf("i18n: read catalog %s: %w", path, err)
		}

		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("i18n: parse catalog %s: %w", path, err)
		}

		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("i18n: catalog %s: invalid locale %q: %w", path, file.Locale, err)
		}

		locale := tag.String()
		if _, exists := catalog.messages[locale]; exists {
			return nil, fmt.Errorf("i18n: catalog %s: locale %q defined twice", path, locale)
		}

		catalog.messages[locale] = file.Messages
		catalog.tags = append(catalog.tags, tag)
	}

	fallbackTag, err := language.Parse(fallbackLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: invalid fallback locale %q: %w", fallbackLocale, err)
	}
	catalog.fallback = fallbackTag.String()
	if _, ok := catalog.messages[catalog.fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %q has no catalog", catalog.fallback)
	}

	// The matcher prefers its first tag on ties, so the fallback goes first.
	ordered := []language.Tag{fallbackTag}
	for _, tag := range catalog.tags {
		if tag.String() != catalog.fallback {
			ordered = append(ordered, tag)
		}
	}
	catalog.tags = ordered
	catalog.matcher = language.NewMatcher(ordered)

	return catalog, nil
}

// Locales returns the loaded locale identifiers, fallback first.
func (catalog *Catalog) Locales() []string {
	locales := make([]string, len(catalog.tags))
	for i, tag := range catalog.tags {
		locales[i] = tag.String()
	}
	return locales
}

// Negotiate picks the best supported locale for an Accept-Language header value.
func (catalog *Catalog) Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return catalog.fallback
	}

	_, index := language.MatchStrings(catalog.matcher, acceptLanguage)
	if index < 0 || index >= len(catalog.tags) {
		return catalog.fallback
	}
	return catalog.tags[index].String()
}

// Translate renders key for locale, substituting params into the template.
//
// Missing keys fall back to the fallback locale and finally to the key itself.
func (catalog *Catalog) Translate(locale, key string, params map[string]string) string {
	tmpl, ok := catalog.lookup(locale, key)
	if !ok {
		return key
	}
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	if params == nil {
		params = map[string]string{}
	}

	parsed, err := template.New(key).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buffer bytes.Buffer
	if err := parsed.Execute(&buffer, params); err != nil {
		return tmpl
	}
	return buffer.String()
}

// Has reports whether key is defined for locale (without fallback).
func (catalog *Catalog) Has(locale, key string) bool {
	messages, ok := catalog.messages[locale]
	if !ok {
		return false
	}
	_, ok = messages[key]
	return ok
}

// Keys returns every key defined for locale, sorted.
func (catalog *Catalog) Keys(locale string) []string {
	messages := catalog.messages[locale]
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (catalog *Catalog) lookup(locale, key string) (string, bool) {
	if messages, ok := catalog.messages[locale]; ok {
		if tmpl, ok := messages[key]; ok {
			return tmpl, true
		}
	}
	tmpl, ok := catalog.messages[catalog.fallback][key]
	return tmpl, ok
}
