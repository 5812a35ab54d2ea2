package valueobjects

import "strings"

// CatalogDomain is the kind of entity a slice describes.
type CatalogDomain string

const (
	DomainEvent          CatalogDomain = "EVENT"
	DomainEventParameter CatalogDomain = "EVENT_PARAMETER"
	DomainUserAttribute  CatalogDomain = "USER_ATTRIBUTE"
)

// AllDomains lists the domains in processing order.
var AllDomains = []CatalogDomain{DomainEventParameter, DomainEvent, DomainUserAttribute}

func (d CatalogDomain) String() string { return string(d) }

func (d CatalogDomain) Valid() bool {
	switch d {
	case DomainEvent, DomainEventParameter, DomainUserAttribute:
		return true
	}
	return false
}

const idSeparator = "#"

// EventEntityID builds "project#app#eventName".
func EventEntityID(projectID, appID, eventName string) string {
	return strings.Join([]string{projectID, appID, eventName}, idSeparator)
}

// PropertyEntityID builds "project#app#category#name#valueType" for event
// parameters and user attributes.
func PropertyEntityID(projectID, appID, category, name, valueType string) string {
	return strings.Join([]string{projectID, appID, category, name, valueType}, idSeparator)
}

// VersionedPrefix appends "#version" to prefix unless it already ends with it.
func VersionedPrefix(prefix, version string) string {
	if version == "" {
		return prefix
	}
	suffix := idSeparator + version
	if strings.HasSuffix(prefix, suffix) {
		return prefix
	}
	return prefix + suffix
}

// CatalogPrefix builds "DOMAIN#project#app#version".
func CatalogPrefix(domain CatalogDomain, projectID, appID, version string) string {
	return VersionedPrefix(strings.Join([]string{string(domain), projectID, appID}, idSeparator), version)
}

// DomainOfPrefix returns the domain named by the first prefix segment.
func DomainOfPrefix(prefix string) (CatalogDomain, bool) {
	head, _, _ := strings.Cut(prefix, idSeparator)
	d := CatalogDomain(head)
	return d, d.Valid()
}
