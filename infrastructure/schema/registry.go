package schema

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"go.uber.org/zap"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/pkg/utils"
)

//go:embed templates/*.sql
var templates embed.FS

const annotationMarker = "-- METADATA "

// Category placeholders used by the table templates.
var categories = strings.NewReplacer(
	"{{category_device}}", "device",
	"{{category_geo}}", "geo",
	"{{category_traffic_source}}", "traffic_source",
	"{{category_app_info}}", "app_info",
	"{{category_event_outer}}", "event_outer",
	"{{category_user_outer}}", "user_outer",
	"{{category_screen_view}}", "screen_view",
	"{{category_page_view}}", "page_view",
	"{{category_upgrade}}", "upgrade",
	"{{category_search}}", "search",
	"{{category_outbound}}", "outbound",
	"{{category_session}}", "session",
	"{{category_sdk}}", "sdk",
)

// domainTemplates lists the template files declaring each catalog domain.
var domainTemplates = map[vo.CatalogDomain][]string{
	vo.DomainEventParameter: {"templates/session.sql", "templates/event-v2.sql"},
	vo.DomainUserAttribute:  {"templates/user-v2.sql"},
}

// annotation is the JSON payload of one METADATA comment.
type annotation struct {
	Name      string          `json:"name"`
	DataType  string          `json:"dataType"`
	Category  string          `json:"category"`
	ScanValue json.RawMessage `json:"scanValue"`
}

// Registry reads declared properties from the annotated warehouse table
// templates. Results are parsed once per domain and cached.
type Registry struct {
	fsys   fs.FS
	files  map[vo.CatalogDomain][]string
	logger *zap.Logger

	mu    sync.Mutex
	cache map[vo.CatalogDomain][]entities.DeclaredProperty
}

// NewRegistry returns a registry over the bundled templates.
func NewRegistry(logger *zap.Logger) *Registry {
	return NewRegistryFS(templates, domainTemplates, logger)
}

// NewRegistryFS returns a registry over arbitrary template files.
func NewRegistryFS(fsys fs.FS, files map[vo.CatalogDomain][]string, logger *zap.Logger) *Registry {
	return &Registry{
		fsys:   fsys,
		files:  files,
		logger: logger,
		cache:  make(map[vo.CatalogDomain][]entities.DeclaredProperty),
	}
}

// ListDeclaredProperties returns the properties declared for domain in
// template order. Domains without templates declare nothing.
func (r *Registry) ListDeclaredProperties(domain vo.CatalogDomain) ([]entities.DeclaredProperty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if props, ok := r.cache[domain]; ok {
		return props, nil
	}

	var props []entities.DeclaredProperty
	for _, name := range r.files[domain] {
		content, err := fs.ReadFile(r.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema template %s: %w", name, err)
		}
		parsed, err := r.parse(name, content)
		if err != nil {
			return nil, err
		}
		props = append(props, parsed...)
	}

	r.cache[domain] = props
	return props, nil
}

func (r *Registry) parse(name string, content []byte) ([]entities.DeclaredProperty, error) {
	rendered := categories.Replace(string(content))

	var props []entities.DeclaredProperty
	scanner := bufio.NewScanner(strings.NewReader(rendered))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		idx := strings.Index(scanner.Text(), annotationMarker)
		if idx < 0 {
			continue
		}
		payload := strings.TrimSpace(scanner.Text()[idx+len(annotationMarker):])

		prop, err := decodeAnnotation([]byte(payload))
		if err != nil {
			r.logger.Warn("Skipping malformed schema annotation",
				zap.String("template", name),
				zap.Int("line", line),
				zap.Error(err))
			continue
		}
		props = append(props, prop)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan schema template %s: %w", name, err)
	}
	return props, nil
}

func decodeAnnotation(payload []byte) (entities.DeclaredProperty, error) {
	var a annotation
	if err := json.Unmarshal(payload, &a); err != nil {
		return entities.DeclaredProperty{}, err
	}
	prop := entities.DeclaredProperty{
		Name:      a.Name,
		Category:  a.Category,
		DataType:  a.DataType,
		ScanValue: scanValue(a.ScanValue),
	}
	if err := utils.ValidateStruct(prop); err != nil {
		return entities.DeclaredProperty{}, err
	}
	return prop, nil
}

// scanValue reports whether values of a property are scanned. Only the
// string "false" turns scanning off; anything else, including a missing
// field, leaves it on.
func scanValue(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(bytes.TrimSpace(raw), &s); err != nil {
		return true
	}
	return s != "false"
}
